// Package checkout оформляет корзину сессии в заказ.
//
// Корзина очищается только после подтверждённого создания заказа; любая
// ошибка до этого момента оставляет позиции покупателя на месте.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sweetcart/internal/cart"
	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
	"github.com/vladislavdragonenkov/sweetcart/internal/metrics"
)

// ValidationError — корзина не прошла проверку перед оформлением.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "cart is not valid: " + strings.Join(e.Errors, "; ")
}

// Unwrap позволяет проверять ошибку через errors.Is(err, domain.ErrCartInvalid).
func (e *ValidationError) Unwrap() error {
	return domain.ErrCartInvalid
}

// Service проводит корзину через синхронизацию, проверку и создание заказа.
type Service struct {
	store     *cart.Store
	catalog   domain.CatalogService
	orders    domain.OrderService
	publisher domain.EventPublisher
	logger    *log.Entry
	metrics   *metrics.CartMetrics
	now       func() time.Time
}

// NewService создаёт сервис оформления. publisher и m могут быть nil.
func NewService(
	store *cart.Store,
	catalog domain.CatalogService,
	orders domain.OrderService,
	publisher domain.EventPublisher,
	logger *log.Entry,
	m *metrics.CartMetrics,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "checkout")
	}
	return &Service{
		store:     store,
		catalog:   catalog,
		orders:    orders,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Place оформляет текущую корзину на покупателя customer.
func (s *Service) Place(ctx context.Context, customer domain.Customer, notes string) (domain.Order, error) {
	sweets, err := s.catalog.ListSweets(ctx)
	if err != nil {
		s.metrics.RecordCheckout(metrics.CheckoutResultFailed)
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}
	s.store.SyncWithCatalog(sweets)

	if res := s.store.Validate(); !res.IsValid {
		s.metrics.RecordCheckout(metrics.CheckoutResultInvalid)
		return domain.Order{}, &ValidationError{Errors: res.Errors}
	}

	customer = normalizeCustomer(customer)
	if errs := customer.ValidateInvariants(); len(errs) > 0 {
		s.metrics.RecordCheckout(metrics.CheckoutResultInvalid)
		return domain.Order{}, errors.Join(errs...)
	}

	snapshot := s.store.Cart()
	req := domain.OrderCreateRequest{
		Customer: customer,
		Items:    snapshot.OrderItems(),
		Notes:    strings.TrimSpace(notes),
	}

	logger := s.logger.WithFields(log.Fields{
		"customer_email": customer.Email,
		"total_items":    snapshot.TotalItems,
		"total_amount":   snapshot.TotalAmount.StringFixed(2),
	})

	order, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		logger.WithError(err).Warn("order creation failed, cart kept")
		s.metrics.RecordCheckout(metrics.CheckoutResultFailed)
		s.publish(domain.CheckoutEvent{
			EventType:     domain.CheckoutEventFailed,
			CustomerEmail: customer.Email,
			TotalItems:    snapshot.TotalItems,
			TotalAmount:   snapshot.TotalAmount,
			Reason:        err.Error(),
		})
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrOrderRejected, err)
	}

	s.store.Clear()
	s.metrics.RecordCheckout(metrics.CheckoutResultPlaced)
	logger.WithField("order_id", order.ID).Info("order placed")

	s.publish(domain.CheckoutEvent{
		EventType:     domain.CheckoutEventOrderPlaced,
		OrderID:       order.ID,
		CustomerEmail: customer.Email,
		TotalItems:    snapshot.TotalItems,
		TotalAmount:   snapshot.TotalAmount,
	})

	return order, nil
}

func (s *Service) publish(event domain.CheckoutEvent) {
	if s.publisher == nil {
		return
	}
	event.Timestamp = s.now()
	if err := s.publisher.PublishCheckoutEvent(event); err != nil {
		s.logger.WithError(err).WithField("event_type", event.EventType).Warn("failed to publish checkout event")
	}
}

func normalizeCustomer(c domain.Customer) domain.Customer {
	return domain.Customer{
		Name:            strings.TrimSpace(c.Name),
		Email:           strings.TrimSpace(c.Email),
		Phone:           strings.TrimSpace(c.Phone),
		DeliveryAddress: strings.TrimSpace(c.DeliveryAddress),
	}
}
