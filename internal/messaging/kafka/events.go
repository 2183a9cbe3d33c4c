package kafka

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
	"github.com/vladislavdragonenkov/sweetcart/internal/version"
)

// TopicCheckoutEvents — топик событий оформления заказа.
const TopicCheckoutEvents = "sweetshop.checkout.events"

// Kafka headers
const (
	HeaderEventType     = "x-event-type"
	HeaderClientVersion = "x-client-version"
)

// CheckoutMessage — формат сообщения в топике TopicCheckoutEvents.
type CheckoutMessage struct {
	EventType     domain.CheckoutEventType `json:"event_type"`
	OrderID       int64                    `json:"order_id,omitempty"`
	CustomerEmail string                   `json:"customer_email"`
	TotalItems    int                      `json:"total_items"`
	TotalAmount   decimal.Decimal          `json:"total_amount"`
	Timestamp     time.Time                `json:"timestamp"`
	Metadata      map[string]string        `json:"metadata,omitempty"`
}

// NewCheckoutMessage собирает сообщение из доменного события.
func NewCheckoutMessage(event domain.CheckoutEvent) *CheckoutMessage {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	metadata := map[string]string{"client_version": version.GetVersion()}
	if event.Reason != "" {
		metadata["reason"] = event.Reason
	}

	return &CheckoutMessage{
		EventType:     event.EventType,
		OrderID:       event.OrderID,
		CustomerEmail: event.CustomerEmail,
		TotalItems:    event.TotalItems,
		TotalAmount:   event.TotalAmount,
		Timestamp:     ts,
		Metadata:      metadata,
	}
}

// PartitionKey держит события одного заказа (или покупателя) в одной партиции.
func (m *CheckoutMessage) PartitionKey() string {
	if m.OrderID != 0 {
		return strconv.FormatInt(m.OrderID, 10)
	}
	return m.CustomerEmail
}
