package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

const maxInstructionsLength = 500

var (
	tracer             = otel.Tracer("github.com/YelzhanWeb/canteen/internal/app/order")
	instructionsPolicy = bluemonday.StrictPolicy()
)

type Service struct {
	builder   *Builder
	uow       interfaces.UnitOfWork
	orders    interfaces.OrderReader
	publisher interfaces.EventPublisher
	logger    logger.Logger
}

// NewService wires the order flow. publisher may be nil when events are disabled.
func NewService(
	catalog interfaces.CatalogReader,
	uow interfaces.UnitOfWork,
	orders interfaces.OrderReader,
	publisher interfaces.EventPublisher,
	logger logger.Logger,
) *Service {
	return &Service{
		builder:   NewBuilder(catalog),
		uow:       uow,
		orders:    orders,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "order.create", trace.WithAttributes(
		attribute.Int64("user_id", cmd.UserID),
		attribute.Int("lines", len(cmd.Items)),
	))
	defer span.End()
	requestID := logger.RequestID(ctx)

	if cmd.UserID <= 0 {
		return nil, s.reject(span, requestID, cmd.UserID, &domain.ValidationError{Field: "user_id", Message: "authenticated user is required"})
	}

	instructions, err := sanitizeInstructions(cmd.Instructions)
	if err != nil {
		return nil, s.reject(span, requestID, cmd.UserID, err)
	}

	// 1. Advisory pass against the catalog, no locks held
	build, err := s.builder.Build(ctx, cmd.Items)
	if err != nil {
		return nil, s.reject(span, requestID, cmd.UserID, err)
	}

	order, err := domain.NewOrder(cmd.UserID, build.Items, instructions)
	if err != nil {
		return nil, s.reject(span, requestID, cmd.UserID, err)
	}

	// 2. Authoritative pass: re-check, reserve stock and persist as one unit
	err = s.uow.Serializable(ctx, func(ctx context.Context, tx interfaces.TxStore) error {
		return placeOrder(ctx, tx, order)
	})
	if err != nil {
		return nil, s.reject(span, requestID, cmd.UserID, err)
	}

	span.SetAttributes(attribute.Int64("order_id", order.ID))
	s.logger.Info("order_created", fmt.Sprintf("Order %d created", order.ID), requestID, map[string]interface{}{
		"order_id":     order.ID,
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount.StringFixed(2),
		"lines":        len(order.Items),
	})

	s.publish(ctx, interfaces.EventOrderCreated, order)
	return order, nil
}

// placeOrder runs inside the serializable transaction.
func placeOrder(ctx context.Context, tx interfaces.TxStore, order *domain.Order) error {
	current := make(map[int64]*domain.MenuItem, len(order.Items))
	for i := range order.Items {
		line := &order.Items[i]
		item, ok := current[line.ItemID]
		if !ok {
			var err error
			item, err = tx.GetMenuItem(ctx, line.ItemID)
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewItemUnavailable(line.ItemID)
			}
			if err != nil {
				return err
			}
			current[line.ItemID] = item
		}
		// the snapshot price is the one seen inside the transaction
		line.Reprice(item.Price)
	}
	order.CalculateTotal()
	if err := order.CheckAmounts(); err != nil {
		return err
	}

	// ascending item id keeps lock order stable across concurrent orders
	quantities, err := order.QuantityByItem()
	if err != nil {
		return err
	}
	for _, itemID := range sortedKeys(quantities) {
		qty := quantities[itemID]
		if err := current[itemID].CheckFulfil(qty); err != nil {
			return err
		}
		ok, err := tx.DecrementStock(ctx, itemID, qty)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewInsufficientStock(itemID)
		}
	}

	if err := tx.InsertOrder(ctx, order); err != nil {
		return err
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if err := tx.InsertOrderItem(ctx, &order.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) GetOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", orderID, err)
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// CancelOrder moves a pending order owned by userID to cancelled and releases its stock.
func (s *Service) CancelOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "order.cancel", trace.WithAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("order_id", orderID),
	))
	defer span.End()
	requestID := logger.RequestID(ctx)

	var cancelled *domain.Order
	err := s.uow.Serializable(ctx, func(ctx context.Context, tx interfaces.TxStore) error {
		order, err := tx.GetOrderForUpdate(ctx, userID, orderID)
		if err != nil {
			return fmt.Errorf("order %d: %w", orderID, err)
		}
		if err := order.TransitionTo(domain.StatusCancelled); err != nil {
			return err
		}

		ok, err := tx.UpdateOrderStatus(ctx, order.ID, domain.StatusPending, domain.StatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("order %d changed while cancelling: %w", order.ID, domain.ErrConflict)
		}

		quantities, err := order.QuantityByItem()
		if err != nil {
			return err
		}
		for _, itemID := range sortedKeys(quantities) {
			if err := tx.RestoreStock(ctx, itemID, quantities[itemID]); err != nil {
				return err
			}
		}

		cancelled = order
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("order_cancel_failed", fmt.Sprintf("Failed to cancel order %d", orderID), requestID, map[string]interface{}{
			"order_id": orderID,
			"user_id":  userID,
		}, err)
		return nil, err
	}

	s.logger.Info("order_cancelled", fmt.Sprintf("Order %d cancelled", orderID), requestID, map[string]interface{}{
		"order_id": orderID,
		"user_id":  userID,
	})

	s.publish(ctx, interfaces.EventOrderCancelled, cancelled)
	return cancelled, nil
}

func (s *Service) reject(span trace.Span, requestID string, userID int64, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	details := map[string]interface{}{"user_id": userID}
	var itemErr *domain.ItemError
	if errors.As(err, &itemErr) {
		details["item_id"] = itemErr.ItemID
	}
	s.logger.Error("order_rejected", "Order was not created", requestID, details, err)
	return err
}

func (s *Service) publish(ctx context.Context, eventType interfaces.EventType, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	// the order is already committed; publishing must not depend on the caller staying around
	event := interfaces.NewOrderEvent(eventType, order, nil)
	if err := s.publisher.PublishOrderEvent(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish order event", logger.RequestID(ctx), map[string]interface{}{
			"order_id": order.ID,
			"type":     eventType,
		}, err)
	}
}

func sanitizeInstructions(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	clean := strings.TrimSpace(instructionsPolicy.Sanitize(*raw))
	if clean == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(clean) > maxInstructionsLength {
		return nil, &domain.ValidationError{
			Field:   "instructions",
			Message: fmt.Sprintf("instructions must not exceed %d characters", maxInstructionsLength),
		}
	}
	return &clean, nil
}

func sortedKeys(m map[int64]int) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
