package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	exchanges  []string
	bindings   []string
	published  []published
	deliveries chan amqp.Delivery
	closed     chan *amqp.Error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{deliveries: make(chan amqp.Delivery, 4), closed: make(chan *amqp.Error, 1)}
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanges = append(f.exchanges, name+":"+kind)
	return nil
}

func (f *fakeChannel) QueueDeclare(string, bool, bool, bool, bool, amqp.Table) (Queue, error) {
	return Queue{Name: "amq.gen-test"}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindings = append(f.bindings, name+"->"+exchange+":"+key)
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) Qos(int, int, bool) error { return nil }
func (f *fakeChannel) Close() error             { return nil }

func (f *fakeChannel) NotifyClose() <-chan *amqp.Error { return f.closed }

type fakeConnection struct {
	ch *fakeChannel
}

func (c *fakeConnection) Channel() (Channel, error) { return c.ch, nil }
func (c *fakeConnection) Reconnect() error          { return nil }
func (c *fakeConnection) Close() error              { return nil }
func (c *fakeConnection) IsClosed() bool            { return false }

type ackRecorder struct {
	mu     sync.Mutex
	acked  []uint64
	nacked []uint64
}

func (a *ackRecorder) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *ackRecorder) Nack(tag uint64, _, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)
	return nil
}

func (a *ackRecorder) Reject(tag uint64, _ bool) error { return a.Nack(tag, false, false) }

func (a *ackRecorder) counts() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.acked), len(a.nacked)
}

func sampleEvent() interfaces.OrderEvent {
	order := &domain.Order{ID: 12, UserID: 7, Status: domain.StatusPending, TotalAmount: decimal.RequireFromString("600.00")}
	return interfaces.NewOrderEvent(interfaces.EventOrderCreated, order, nil)
}

func TestPublishOrderEvent(t *testing.T) {
	ch := newFakeChannel()
	pub := NewPublisher(&fakeConnection{ch: ch})
	event := sampleEvent()

	require.NoError(t, pub.PublishOrderEvent(context.Background(), event))

	require.Equal(t, []string{OrdersExchange + ":topic"}, ch.exchanges)
	require.Len(t, ch.published, 1)
	got := ch.published[0]
	require.Equal(t, OrdersExchange, got.exchange)
	require.Equal(t, "order.created", got.key)
	require.Equal(t, event.EventID, got.msg.MessageId)
	require.Equal(t, amqp.Persistent, got.msg.DeliveryMode)

	var decoded interfaces.OrderEvent
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	require.Equal(t, int64(12), decoded.OrderID)
	require.True(t, decoded.TotalAmount.Equal(decimal.RequireFromString("600.00")))
}

func TestConsumeOrderEventsAcksAndDrops(t *testing.T) {
	ch := newFakeChannel()
	acks := &ackRecorder{}
	cons := NewConsumer(&fakeConnection{ch: ch}, 10, logger.NewNop())

	ch.deliveries <- amqp.Delivery{Acknowledger: acks, DeliveryTag: 1, Body: []byte(`{"ok":true}`)}
	ch.deliveries <- amqp.Delivery{Acknowledger: acks, DeliveryTag: 2, Body: []byte(`broken`)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- cons.ConsumeOrderEvents(ctx, func(_ context.Context, body []byte) error {
			if !json.Valid(body) {
				return errors.New("invalid json")
			}
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		acked, nacked := acks.counts()
		return acked == 1 && nacked == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	ch.mu.Lock()
	defer ch.mu.Unlock()
	require.Contains(t, ch.bindings, "amq.gen-test->"+OrdersExchange+":order.#")
}
