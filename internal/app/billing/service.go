package billing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

var tracer = otel.Tracer("github.com/YelzhanWeb/canteen/internal/app/billing")

type Service struct {
	uow       interfaces.UnitOfWork
	bills     interfaces.BillingReader
	publisher interfaces.EventPublisher
	logger    logger.Logger
}

func NewService(uow interfaces.UnitOfWork, bills interfaces.BillingReader, publisher interfaces.EventPublisher, logger logger.Logger) *Service {
	return &Service{
		uow:       uow,
		bills:     bills,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBilling pays for a pending order and confirms it in the same unit of work.
func (s *Service) CreateBilling(ctx context.Context, cmd interfaces.CreateBillingCommand) (*domain.Billing, error) {
	ctx, span := tracer.Start(ctx, "billing.create", trace.WithAttributes(
		attribute.Int64("user_id", cmd.UserID),
		attribute.Int64("order_id", cmd.OrderID),
	))
	defer span.End()
	requestID := logger.RequestID(ctx)

	method, err := domain.ParsePaymentMethod(cmd.PaymentMethod)
	if err != nil {
		return nil, s.fail(span, requestID, cmd, err)
	}

	var (
		bill  *domain.Billing
		order *domain.Order
	)
	err = s.uow.Serializable(ctx, func(ctx context.Context, tx interfaces.TxStore) error {
		var err error
		order, err = tx.GetOrderForUpdate(ctx, cmd.UserID, cmd.OrderID)
		if err != nil {
			return fmt.Errorf("order %d: %w", cmd.OrderID, err)
		}

		bill, err = domain.NewBilling(order, method, cmd.TransactionID)
		if err != nil {
			return err
		}
		if err := tx.InsertBilling(ctx, bill); err != nil {
			return err
		}

		if err := order.TransitionTo(domain.StatusConfirmed); err != nil {
			return err
		}
		ok, err := tx.UpdateOrderStatus(ctx, order.ID, domain.StatusPending, domain.StatusConfirmed)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("order %d changed while billing: %w", order.ID, domain.ErrConflict)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(span, requestID, cmd, err)
	}

	span.SetAttributes(attribute.Int64("bill_id", bill.ID))
	s.logger.Info("billing_created", fmt.Sprintf("Order %d paid and confirmed", order.ID), requestID, map[string]interface{}{
		"bill_id":        bill.ID,
		"order_id":       order.ID,
		"user_id":        bill.UserID,
		"amount":         bill.Amount.StringFixed(2),
		"payment_method": bill.PaymentMethod,
	})

	if s.publisher != nil {
		event := interfaces.NewOrderEvent(interfaces.EventOrderConfirmed, order, &bill.ID)
		if err := s.publisher.PublishOrderEvent(context.WithoutCancel(ctx), event); err != nil {
			s.logger.Error("event_publish_failed", "Failed to publish order event", requestID, map[string]interface{}{
				"order_id": order.ID,
				"type":     event.Type,
			}, err)
		}
	}

	return bill, nil
}

func (s *Service) GetBilling(ctx context.Context, userID, billID int64) (*domain.Billing, error) {
	bill, err := s.bills.FindByID(ctx, userID, billID)
	if err != nil {
		return nil, fmt.Errorf("bill %d: %w", billID, err)
	}
	return bill, nil
}

func (s *Service) ListBillings(ctx context.Context, userID int64) ([]*domain.Billing, error) {
	return s.bills.ListByUser(ctx, userID)
}

func (s *Service) fail(span trace.Span, requestID string, cmd interfaces.CreateBillingCommand, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Error("billing_rejected", fmt.Sprintf("Billing for order %d was not created", cmd.OrderID), requestID, map[string]interface{}{
		"order_id":       cmd.OrderID,
		"user_id":        cmd.UserID,
		"payment_method": cmd.PaymentMethod,
	}, err)
	return err
}
