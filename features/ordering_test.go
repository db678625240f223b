package features

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/adapter/memory"
	"github.com/YelzhanWeb/canteen/internal/app/billing"
	"github.com/YelzhanWeb/canteen/internal/app/order"
	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

var errorKinds = map[string]error{
	"validation failed":  domain.ErrValidation,
	"not found":          domain.ErrNotFound,
	"invalid transition": domain.ErrInvalidTransition,
	"item unavailable":   domain.ErrItemUnavailable,
	"insufficient stock": domain.ErrInsufficientStock,
}

type orderingContext struct {
	store   *memory.Store
	orders  *order.Service
	billing *billing.Service

	orderID int64
	ownerID int64
	bill    *domain.Billing
	err     error
}

func (c *orderingContext) reset() {
	c.store = memory.NewStore()
	log := logger.NewNop()
	c.orders = order.NewService(c.store, c.store, c.store.Orders(), nil, log)
	c.billing = billing.NewService(c.store, c.store.Billings(), nil, log)
	c.orderID, c.ownerID = 0, 0
	c.bill = nil
	c.err = nil
}

func (c *orderingContext) theMenuHasTheFollowingItems(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		id, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		price, err := decimal.NewFromString(row.Cells[3].Value)
		if err != nil {
			return err
		}
		stock, err := strconv.Atoi(row.Cells[4].Value)
		if err != nil {
			return err
		}
		c.store.PutMenuItem(domain.MenuItem{
			ID:                id,
			Name:              row.Cells[1].Value,
			Category:          row.Cells[2].Value,
			Price:             price,
			AvailableQuantity: stock,
			IsAvailable:       true,
		})
	}
	return nil
}

func (c *orderingContext) userPlacesAnOrder(userID int, table *godog.Table) error {
	cmd := interfaces.CreateOrderCommand{UserID: int64(userID)}
	for _, row := range table.Rows[1:] {
		itemID, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return err
		}
		cmd.Items = append(cmd.Items, interfaces.CreateOrderItemCommand{ItemID: itemID, Quantity: qty})
	}

	placed, err := c.orders.CreateOrder(context.Background(), cmd)
	c.err = err
	if err == nil {
		c.orderID = placed.ID
		c.ownerID = placed.UserID
	}
	return nil
}

func (c *orderingContext) userPaysForTheOrder(userID int, method string) error {
	bill, err := c.billing.CreateBilling(context.Background(), interfaces.CreateBillingCommand{
		UserID:        int64(userID),
		OrderID:       c.orderID,
		PaymentMethod: method,
	})
	c.err = err
	if err == nil {
		c.bill = bill
	}
	return nil
}

func (c *orderingContext) userCancelsTheOrder(userID int) error {
	_, c.err = c.orders.CancelOrder(context.Background(), int64(userID), c.orderID)
	return nil
}

func (c *orderingContext) thePriceOfItemChangesTo(itemID int, price string) error {
	item, err := c.store.GetItem(context.Background(), int64(itemID))
	if err != nil {
		return err
	}
	item.Price, err = decimal.NewFromString(price)
	if err != nil {
		return err
	}
	c.store.PutMenuItem(*item)
	return nil
}

func (c *orderingContext) currentOrder() (*domain.Order, error) {
	if c.orderID == 0 {
		return nil, fmt.Errorf("no order was placed: %v", c.err)
	}
	return c.orders.GetOrder(context.Background(), c.ownerID, c.orderID)
}

func (c *orderingContext) theOrderIs(status string) error {
	o, err := c.currentOrder()
	if err != nil {
		return err
	}
	if string(o.Status) != status {
		return fmt.Errorf("expected order to be %s, got %s", status, o.Status)
	}
	return nil
}

func (c *orderingContext) theOrderTotalIs(total string) error {
	o, err := c.currentOrder()
	if err != nil {
		return err
	}
	if got := o.TotalAmount.StringFixed(2); got != total {
		return fmt.Errorf("expected total %s, got %s", total, got)
	}
	return nil
}

func (c *orderingContext) theBillAmountIs(amount string) error {
	if c.bill == nil {
		return fmt.Errorf("no bill was created: %v", c.err)
	}
	if got := c.bill.Amount.StringFixed(2); got != amount {
		return fmt.Errorf("expected bill amount %s, got %s", amount, got)
	}
	return nil
}

func (c *orderingContext) theStoredUnitPriceOfItemIs(itemID int, price string) error {
	o, err := c.currentOrder()
	if err != nil {
		return err
	}
	for _, line := range o.Items {
		if line.ItemID == int64(itemID) {
			if got := line.UnitPrice.StringFixed(2); got != price {
				return fmt.Errorf("expected unit price %s, got %s", price, got)
			}
			return nil
		}
	}
	return fmt.Errorf("order has no line for item %d", itemID)
}

func (c *orderingContext) theRequestFailsWith(kind string) error {
	want, ok := errorKinds[kind]
	if !ok {
		return fmt.Errorf("unknown error kind %q", kind)
	}
	if !errors.Is(c.err, want) {
		return fmt.Errorf("expected %q, got %v", kind, c.err)
	}
	return nil
}

func (c *orderingContext) theRequestFailsWithForItem(kind string, itemID int) error {
	if err := c.theRequestFailsWith(kind); err != nil {
		return err
	}
	var itemErr *domain.ItemError
	if !errors.As(c.err, &itemErr) || itemErr.ItemID != int64(itemID) {
		return fmt.Errorf("expected failure for item %d, got %v", itemID, c.err)
	}
	return nil
}

func (c *orderingContext) itemHasInStock(itemID, stock int) error {
	item, err := c.store.GetItem(context.Background(), int64(itemID))
	if err != nil {
		return err
	}
	if item.AvailableQuantity != stock {
		return fmt.Errorf("expected %d in stock for item %d, got %d", stock, itemID, item.AvailableQuantity)
	}
	return nil
}

func (c *orderingContext) noOrdersAreStored() error {
	if orders, lines, _ := c.store.Counts(); orders != 0 || lines != 0 {
		return fmt.Errorf("expected no orders, got %d orders with %d lines", orders, lines)
	}
	return nil
}

func (c *orderingContext) billsAreStored(count int) error {
	if _, _, bills := c.store.Counts(); bills != count {
		return fmt.Errorf("expected %d bills, got %d", count, bills)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &orderingContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the menu has the following items:$`, tc.theMenuHasTheFollowingItems)

	// When steps
	ctx.Step(`^user (\d+) places an order:$`, tc.userPlacesAnOrder)
	ctx.Step(`^user (\d+) pays for the order with "([^"]*)"$`, tc.userPaysForTheOrder)
	ctx.Step(`^user (\d+) cancels the order$`, tc.userCancelsTheOrder)
	ctx.Step(`^the price of item (\d+) changes to "([^"]*)"$`, tc.thePriceOfItemChangesTo)

	// Then steps
	ctx.Step(`^the order is (pending|confirmed|cancelled)$`, tc.theOrderIs)
	ctx.Step(`^the order total is "([^"]*)"$`, tc.theOrderTotalIs)
	ctx.Step(`^the bill amount is "([^"]*)"$`, tc.theBillAmountIs)
	ctx.Step(`^the stored unit price of item (\d+) is "([^"]*)"$`, tc.theStoredUnitPriceOfItemIs)
	ctx.Step(`^the request fails with "([^"]*)"$`, tc.theRequestFailsWith)
	ctx.Step(`^the request fails with "([^"]*)" for item (\d+)$`, tc.theRequestFailsWithForItem)
	ctx.Step(`^item (\d+) has (\d+) in stock$`, tc.itemHasInStock)
	ctx.Step(`^no orders are stored$`, tc.noOrdersAreStored)
	ctx.Step(`^(\d+) bills? (?:is|are) stored$`, tc.billsAreStored)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"ordering.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
