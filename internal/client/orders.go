package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
)

// IdempotencyKeyHeader защищает от двойного создания заказа при повторе запроса.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderClient создаёт и читает заказы.
type OrderClient struct {
	c     *Client
	newID func() string
}

// NewOrderClient создаёт клиента заказов.
func NewOrderClient(c *Client) *OrderClient {
	return &OrderClient{c: c, newID: uuid.NewString}
}

// CreateOrder отправляет заказ. Каждая попытка получает свой Idempotency-Key.
func (oc *OrderClient) CreateOrder(ctx context.Context, req domain.OrderCreateRequest) (domain.Order, error) {
	headers := http.Header{}
	headers.Set(IdempotencyKeyHeader, oc.newID())

	var order domain.Order
	if err := oc.c.do(ctx, http.MethodPost, "/api/v1/orders", req, &order, headers); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// GetOrder возвращает заказ по id.
func (oc *OrderClient) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	var order domain.Order
	path := "/api/v1/orders/" + strconv.FormatInt(id, 10)
	if err := oc.c.do(ctx, http.MethodGet, path, nil, &order, nil); err != nil {
		return domain.Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return order, nil
}

// ListByCustomer возвращает заказы покупателя по email.
func (oc *OrderClient) ListByCustomer(ctx context.Context, email string) ([]domain.Order, error) {
	var orders []domain.Order
	path := "/api/v1/orders/customer/" + url.PathEscape(email)
	if err := oc.c.do(ctx, http.MethodGet, path, nil, &orders, nil); err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", email, err)
	}
	return orders, nil
}

var _ domain.OrderService = (*OrderClient)(nil)
