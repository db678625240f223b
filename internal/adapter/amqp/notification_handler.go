package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

type NotificationHandler struct {
	out    io.Writer
	logger logger.Logger
}

// NewNotificationHandler prints one line per order event to out.
func NewNotificationHandler(out io.Writer, logger logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		out:    out,
		logger: logger,
	}
}

func (h *NotificationHandler) HandleOrderEvent(ctx context.Context, body []byte) error {
	var event interfaces.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse order event", "", nil, err)
		return err
	}
	if event.EventID == "" || event.OrderID == 0 {
		err := fmt.Errorf("order event is missing identifiers")
		h.logger.Error("message_parse_failed", "Failed to parse order event", "", nil, err)
		return err
	}

	h.logger.Debug("notification_received", fmt.Sprintf("Received %s for order %d", event.Type, event.OrderID),
		event.EventID, map[string]interface{}{
			"order_id": event.OrderID,
			"user_id":  event.UserID,
			"status":   event.Status,
		})

	line := fmt.Sprintf("Order %d for user %d is now %s (total %s)", event.OrderID, event.UserID, event.Status, event.TotalAmount.StringFixed(2))
	if event.BillID != nil {
		line += fmt.Sprintf(", bill %d", *event.BillID)
	}
	_, err := fmt.Fprintln(h.out, line)
	return err
}
