// Package memory is an in-process implementation of the persistence boundary.
// It serialises every unit of work behind one lock and stages writes on a copy,
// so a failed unit of work leaves nothing behind.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

type state struct {
	menu   map[int64]domain.MenuItem
	orders map[int64]domain.Order
	bills  map[int64]domain.Billing

	nextOrderID     int64
	nextOrderItemID int64
	nextBillID      int64
}

func (s *state) clone() *state {
	c := &state{
		menu:            make(map[int64]domain.MenuItem, len(s.menu)),
		orders:          make(map[int64]domain.Order, len(s.orders)),
		bills:           make(map[int64]domain.Billing, len(s.bills)),
		nextOrderID:     s.nextOrderID,
		nextOrderItemID: s.nextOrderItemID,
		nextBillID:      s.nextBillID,
	}
	for id, m := range s.menu {
		c.menu[id] = m
	}
	for id, o := range s.orders {
		c.orders[id] = copyOrder(o)
	}
	for id, b := range s.bills {
		c.bills[id] = b
	}
	return c
}

type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		state: &state{
			menu:   make(map[int64]domain.MenuItem),
			orders: make(map[int64]domain.Order),
			bills:  make(map[int64]domain.Billing),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// PutMenuItem inserts or replaces a catalog entry. Used for seeding and price changes.
func (s *Store) PutMenuItem(item domain.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.menu[item.ID] = item
}

// Counts reports how many orders, order lines and bills are stored.
func (s *Store) Counts() (orders, lines, bills int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.state.orders {
		lines += len(o.Items)
	}
	return len(s.state.orders), lines, len(s.state.bills)
}

func (s *Store) Serializable(ctx context.Context, fn func(ctx context.Context, tx interfaces.TxStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(context.WithoutCancel(ctx), &txStore{state: staged, now: s.now}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

// --- Catalog ---

func (s *Store) GetItem(_ context.Context, itemID int64) (*domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.state.menu[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

func (s *Store) ListAvailable(_ context.Context) ([]*domain.MenuItem, error) {
	return s.listMenu(func(m domain.MenuItem) bool { return m.IsAvailable }), nil
}

func (s *Store) ListByCategory(_ context.Context, category string) ([]*domain.MenuItem, error) {
	return s.listMenu(func(m domain.MenuItem) bool { return m.IsAvailable && m.Category == category }), nil
}

func (s *Store) listMenu(keep func(domain.MenuItem) bool) []*domain.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []*domain.MenuItem
	for _, m := range s.state.menu {
		if keep(m) {
			m := m
			items = append(items, &m)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})
	return items
}

// --- Orders ---

// Orders is the OrderReader view of the store.
func (s *Store) Orders() interfaces.OrderReader { return orderReader{s} }

// Billings is the BillingReader view of the store.
func (s *Store) Billings() interfaces.BillingReader { return billingReader{s} }

type orderReader struct{ s *Store }

func (r orderReader) FindByID(_ context.Context, userID, orderID int64) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.state.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	o = copyOrder(o)
	return &o, nil
}

func (r orderReader) ListByUser(_ context.Context, userID int64) ([]*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var orders []*domain.Order
	for _, o := range r.s.state.orders {
		if o.UserID == userID {
			o := copyOrder(o)
			o.Items = nil
			orders = append(orders, &o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

type billingReader struct{ s *Store }

func (r billingReader) FindByID(_ context.Context, userID, billID int64) (*domain.Billing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.state.bills[billID]
	if !ok || b.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r billingReader) ListByUser(_ context.Context, userID int64) ([]*domain.Billing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var bills []*domain.Billing
	for _, b := range r.s.state.bills {
		if b.UserID == userID {
			b := b
			bills = append(bills, &b)
		}
	}
	sort.Slice(bills, func(i, j int) bool { return bills[i].ID > bills[j].ID })
	return bills, nil
}

// --- Unit of work ---

type txStore struct {
	state *state
	now   func() time.Time
}

func (t *txStore) GetMenuItem(_ context.Context, itemID int64) (*domain.MenuItem, error) {
	item, ok := t.state.menu[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

func (t *txStore) DecrementStock(_ context.Context, itemID int64, qty int) (bool, error) {
	item, ok := t.state.menu[itemID]
	if !ok || item.AvailableQuantity < qty {
		return false, nil
	}
	item.AvailableQuantity -= qty
	t.state.menu[itemID] = item
	return true, nil
}

func (t *txStore) RestoreStock(_ context.Context, itemID int64, qty int) error {
	item, ok := t.state.menu[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	item.AvailableQuantity += qty
	t.state.menu[itemID] = item
	return nil
}

func (t *txStore) InsertOrder(_ context.Context, order *domain.Order) error {
	t.state.nextOrderID++
	order.ID = t.state.nextOrderID
	order.CreatedAt = t.now()
	order.UpdatedAt = order.CreatedAt

	stored := copyOrder(*order)
	stored.Items = nil
	t.state.orders[order.ID] = stored
	return nil
}

func (t *txStore) InsertOrderItem(_ context.Context, item *domain.OrderItem) error {
	o, ok := t.state.orders[item.OrderID]
	if !ok {
		return domain.ErrNotFound
	}
	t.state.nextOrderItemID++
	item.ID = t.state.nextOrderItemID
	o.Items = append(o.Items, *item)
	t.state.orders[o.ID] = o
	return nil
}

func (t *txStore) GetOrderForUpdate(_ context.Context, userID, orderID int64) (*domain.Order, error) {
	o, ok := t.state.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	o = copyOrder(o)
	return &o, nil
}

func (t *txStore) UpdateOrderStatus(_ context.Context, orderID int64, from, to domain.Status) (bool, error) {
	o, ok := t.state.orders[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = t.now()
	t.state.orders[orderID] = o
	return true, nil
}

func (t *txStore) InsertBilling(_ context.Context, bill *domain.Billing) error {
	for _, b := range t.state.bills {
		if b.OrderID == bill.OrderID {
			return domain.ErrConflict
		}
	}
	t.state.nextBillID++
	bill.ID = t.state.nextBillID
	t.state.bills[bill.ID] = *bill
	return nil
}

func copyOrder(o domain.Order) domain.Order {
	if o.Items != nil {
		items := make([]domain.OrderItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}

// Seed is a small canteen menu for local runs.
func Seed(s *Store) {
	for _, item := range []domain.MenuItem{
		{ID: 1, Name: "Masala Dosa", Category: "breakfast", Price: decimal.RequireFromString("60.00"), AvailableQuantity: 40, IsAvailable: true},
		{ID: 2, Name: "Veg Thali", Category: "lunch", Price: decimal.RequireFromString("150.00"), AvailableQuantity: 25, IsAvailable: true},
		{ID: 3, Name: "Paneer Biryani", Category: "lunch", Price: decimal.RequireFromString("300.00"), AvailableQuantity: 15, IsAvailable: true},
		{ID: 4, Name: "Filter Coffee", Category: "beverages", Price: decimal.RequireFromString("20.00"), AvailableQuantity: 100, IsAvailable: true},
	} {
		s.PutMenuItem(item)
	}
}
