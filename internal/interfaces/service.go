package interfaces

import (
	"context"

	"github.com/YelzhanWeb/canteen/internal/domain"
)

// Команды для сервисов
type CreateOrderCommand struct {
	UserID       int64
	Items        []CreateOrderItemCommand
	Instructions *string
}

type CreateOrderItemCommand struct {
	ItemID   int64
	Quantity int
}

type CreateBillingCommand struct {
	UserID        int64
	OrderID       int64
	PaymentMethod string
	TransactionID *string
}

// Интерфейсы Сервисов (Business Logic)
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	ListOrders(ctx context.Context, userID int64) ([]*domain.Order, error)
	CancelOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error)
}

type BillingService interface {
	CreateBilling(ctx context.Context, cmd CreateBillingCommand) (*domain.Billing, error)
	GetBilling(ctx context.Context, userID, billID int64) (*domain.Billing, error)
	ListBillings(ctx context.Context, userID int64) ([]*domain.Billing, error)
}

type CatalogService interface {
	ListMenu(ctx context.Context) ([]*domain.MenuItem, error)
	GetMenuItem(ctx context.Context, itemID int64) (*domain.MenuItem, error)
	ListMenuByCategory(ctx context.Context, category string) ([]*domain.MenuItem, error)
}
