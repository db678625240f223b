package interfaces

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/YelzhanWeb/canteen/internal/domain"
)

type EventType string

const (
	EventOrderCreated   EventType = "order.created"
	EventOrderCancelled EventType = "order.cancelled"
	EventOrderConfirmed EventType = "order.confirmed"
)

// Сообщения RabbitMQ
type OrderEvent struct {
	EventID     string          `json:"event_id"`
	Type        EventType       `json:"type"`
	OrderID     int64           `json:"order_id"`
	UserID      int64           `json:"user_id"`
	Status      domain.Status   `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	BillID      *int64          `json:"bill_id,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// Интерфейсы Messaging (Adapter/RabbitMQ)
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

type EventConsumer interface {
	ConsumeOrderEvents(ctx context.Context, handler EventHandler) error
}

type EventHandler func(ctx context.Context, body []byte) error

// NewOrderEvent snapshots the order state that subscribers care about.
func NewOrderEvent(eventType EventType, order *domain.Order, billID *int64) OrderEvent {
	return OrderEvent{
		EventID:     ulid.Make().String(),
		Type:        eventType,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		BillID:      billID,
		OccurredAt:  time.Now().UTC(),
	}
}
