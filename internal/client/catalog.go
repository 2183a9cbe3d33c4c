package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
)

// CatalogClient читает каталог сладостей.
type CatalogClient struct {
	c *Client
}

// NewCatalogClient создаёт клиента каталога.
func NewCatalogClient(c *Client) *CatalogClient {
	return &CatalogClient{c: c}
}

// ListSweets возвращает весь каталог, включая недоступные позиции.
func (cc *CatalogClient) ListSweets(ctx context.Context) ([]domain.Sweet, error) {
	var sweets []domain.Sweet
	if err := cc.c.do(ctx, http.MethodGet, "/api/v1/sweets", nil, &sweets, nil); err != nil {
		return nil, fmt.Errorf("list sweets: %w", err)
	}
	return sweets, nil
}

// ListAvailable возвращает только доступные к заказу сладости.
func (cc *CatalogClient) ListAvailable(ctx context.Context) ([]domain.Sweet, error) {
	var sweets []domain.Sweet
	if err := cc.c.do(ctx, http.MethodGet, "/api/v1/sweets/available", nil, &sweets, nil); err != nil {
		return nil, fmt.Errorf("list available sweets: %w", err)
	}
	return sweets, nil
}

// GetSweet возвращает одну сладость. Отсутствие даёт ошибку, обёрнутую в domain.ErrNotFound.
func (cc *CatalogClient) GetSweet(ctx context.Context, id int64) (domain.Sweet, error) {
	var sweet domain.Sweet
	path := "/api/v1/sweets/" + strconv.FormatInt(id, 10)
	if err := cc.c.do(ctx, http.MethodGet, path, nil, &sweet, nil); err != nil {
		return domain.Sweet{}, fmt.Errorf("get sweet %d: %w", id, err)
	}
	return sweet, nil
}

// Health проверяет доступность каталога.
func (cc *CatalogClient) Health(ctx context.Context) error {
	var probe []domain.Sweet
	if err := cc.c.do(ctx, http.MethodGet, "/api/v1/sweets/available", nil, &probe, nil); err != nil {
		return fmt.Errorf("catalog health: %w", err)
	}
	return nil
}

var _ domain.CatalogService = (*CatalogClient)(nil)
