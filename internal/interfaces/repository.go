package interfaces

import (
	"context"

	"github.com/YelzhanWeb/canteen/internal/domain"
)

// Read side (Adapter/Postgres, Adapter/Memory). No locking, no transactions.
type CatalogReader interface {
	GetItem(ctx context.Context, itemID int64) (*domain.MenuItem, error)
	ListAvailable(ctx context.Context) ([]*domain.MenuItem, error)
	ListByCategory(ctx context.Context, category string) ([]*domain.MenuItem, error)
}

type OrderReader interface {
	// FindByID loads the order with its items. Orders owned by someone else are NotFound.
	FindByID(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
}

type BillingReader interface {
	FindByID(ctx context.Context, userID, billID int64) (*domain.Billing, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Billing, error)
}

// TxStore is the set of writes and locked reads available inside one unit of work.
type TxStore interface {
	GetMenuItem(ctx context.Context, itemID int64) (*domain.MenuItem, error)
	// DecrementStock lowers available_quantity by qty only when enough remains.
	DecrementStock(ctx context.Context, itemID int64, qty int) (bool, error)
	RestoreStock(ctx context.Context, itemID int64, qty int) error

	InsertOrder(ctx context.Context, order *domain.Order) error
	InsertOrderItem(ctx context.Context, item *domain.OrderItem) error
	GetOrderForUpdate(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	// UpdateOrderStatus changes the status only while it still equals from.
	UpdateOrderStatus(ctx context.Context, orderID int64, from, to domain.Status) (bool, error)

	InsertBilling(ctx context.Context, bill *domain.Billing) error
}

// UnitOfWork runs fn inside a single serializable transaction.
// A nil return commits; any error rolls everything back and is returned.
type UnitOfWork interface {
	Serializable(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error
}
