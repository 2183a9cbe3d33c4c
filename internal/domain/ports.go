package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// KVStore — долговечное key-value хранилище клиента (аналог localStorage).
// Реализации сами ограничивают время операции и не принимают context.
type KVStore interface {
	// Get возвращает значение ключа или ErrKeyNotFound.
	Get(key string) ([]byte, error)
	// Set перезаписывает значение ключа целиком.
	Set(key string, value []byte) error
	// Delete удаляет ключ; отсутствие ключа ошибкой не считается.
	Delete(key string) error
}

// CatalogService — источник актуальных данных о сладостях.
type CatalogService interface {
	ListSweets(ctx context.Context) ([]Sweet, error)
	GetSweet(ctx context.Context, id int64) (Sweet, error)
}

// OrderService — сервис, принимающий заказы.
type OrderService interface {
	CreateOrder(ctx context.Context, req OrderCreateRequest) (Order, error)
}

// EventPublisher публикует события оформления заказа; должен быть идемпотентным по ключу.
type EventPublisher interface {
	PublishCheckoutEvent(event CheckoutEvent) error
}

// CheckoutEventType — тип события оформления.
type CheckoutEventType string

const (
	CheckoutEventOrderPlaced CheckoutEventType = "order.placed"
	CheckoutEventFailed      CheckoutEventType = "checkout.failed"
)

// CheckoutEvent описывает результат попытки оформить корзину.
type CheckoutEvent struct {
	EventType     CheckoutEventType `json:"event_type"`
	OrderID       int64             `json:"order_id,omitempty"`
	CustomerEmail string            `json:"customer_email"`
	TotalItems    int               `json:"total_items"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	Reason        string            `json:"reason,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}
