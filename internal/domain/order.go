package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа на стороне сервиса заказов.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusReady          OrderStatus = "READY"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCompleted      OrderStatus = "COMPLETED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// OrderItemRequest — позиция в запросе на создание заказа.
type OrderItemRequest struct {
	SweetID  int64  `json:"sweetId"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// Customer — контактные данные покупателя для доставки.
type Customer struct {
	Name            string `json:"customerName"`
	Email           string `json:"customerEmail"`
	Phone           string `json:"customerPhone"`
	DeliveryAddress string `json:"deliveryAddress"`
}

// OrderCreateRequest — тело POST /api/v1/orders.
type OrderCreateRequest struct {
	Customer
	Items        []OrderItemRequest `json:"items"`
	Notes        string             `json:"notes,omitempty"`
	DeliveryDate string             `json:"deliveryDate,omitempty"`
}

// OrderItem — позиция созданного заказа в ответе сервиса.
type OrderItem struct {
	ID            int64           `json:"id"`
	SweetID       int64           `json:"sweetId"`
	SweetName     string          `json:"sweetName"`
	SweetCategory string          `json:"sweetCategory,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
}

// Order — заказ, созданный сервисом заказов. ID и статус назначает сервер.
type Order struct {
	ID            int64           `json:"id"`
	Customer
	Status        OrderStatus     `json:"status"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalQuantity int             `json:"totalQuantity,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Items         []OrderItem     `json:"items"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
	CompletedAt   string          `json:"completedAt,omitempty"`
}

// ValidateInvariants проверяет, что заполнены все поля, нужные для доставки.
func (c Customer) ValidateInvariants() []error {
	var errs []error

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if strings.TrimSpace(c.Email) == "" {
		errs = append(errs, ErrCustomerEmailRequired)
	}
	if strings.TrimSpace(c.Phone) == "" {
		errs = append(errs, ErrCustomerPhoneRequired)
	}
	if strings.TrimSpace(c.DeliveryAddress) == "" {
		errs = append(errs, ErrDeliveryAddressRequired)
	}

	return errs
}
