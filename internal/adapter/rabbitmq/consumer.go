package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

const (
	orderEventsBinding = "order.#"
	defaultRetryDelay  = 5 * time.Second
)

type consumer struct {
	conn       Connection
	prefetch   int
	retryDelay time.Duration
	logger     logger.Logger
}

func NewConsumer(conn Connection, prefetch int, logger logger.Logger) interfaces.EventConsumer {
	return &consumer{conn: conn, prefetch: prefetch, retryDelay: defaultRetryDelay, logger: logger}
}

// ConsumeOrderEvents blocks until ctx is done, reconnecting whenever the channel drops.
func (c *consumer) ConsumeOrderEvents(ctx context.Context, handler interfaces.EventHandler) error {
	for {
		err := c.consume(ctx, handler)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil || errors.Is(err, ErrConnectionClosed) {
			return err
		}

		c.logger.Error("consumer_disconnected", fmt.Sprintf("Order events consumer disconnected, retrying in %s", c.retryDelay), "", nil, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}

		if err := c.conn.Reconnect(); err != nil {
			c.logger.Error("consumer_reconnect_failed", "Failed to reconnect to RabbitMQ", "", nil, err)
		}
	}
}

func (c *consumer) consume(ctx context.Context, handler interfaces.EventHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	if err := declareOrdersExchange(ch); err != nil {
		return err
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, orderEventsBinding, OrdersExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("consumer_started", "Listening for order events", "", map[string]interface{}{
		"queue":   q.Name,
		"binding": orderEventsBinding,
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}

			if err := handler(ctx, msg.Body); err != nil {
				// malformed events are dropped, not redelivered
				_ = msg.Nack(false, false)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}
