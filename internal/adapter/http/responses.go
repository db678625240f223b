package http

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/YelzhanWeb/canteen/internal/domain"
)

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type menuItemResponse struct {
	ItemID            int64       `json:"item_id"`
	Name              string      `json:"name"`
	Description       *string     `json:"description"`
	Category          string      `json:"category"`
	Price             json.Number `json:"price"`
	AvailableQuantity int         `json:"available_quantity"`
	IsAvailable       bool        `json:"is_available"`
	ImageURL          *string     `json:"image_url"`
}

func newMenuItemResponse(m *domain.MenuItem) menuItemResponse {
	return menuItemResponse{
		ItemID:            m.ID,
		Name:              m.Name,
		Description:       m.Description,
		Category:          m.Category,
		Price:             money(m.Price),
		AvailableQuantity: m.AvailableQuantity,
		IsAvailable:       m.IsAvailable,
		ImageURL:          m.ImageURL,
	}
}

type orderItemResponse struct {
	OrderItemID int64       `json:"order_item_id"`
	ItemID      int64       `json:"item_id"`
	Quantity    int         `json:"quantity"`
	UnitPrice   json.Number `json:"unit_price"`
	Subtotal    json.Number `json:"subtotal"`
}

type orderResponse struct {
	OrderID      int64               `json:"order_id"`
	Status       domain.Status       `json:"status"`
	TotalAmount  json.Number         `json:"total_amount"`
	Instructions *string             `json:"special_instructions"`
	OrderDate    time.Time           `json:"order_date"`
	DeliveryDate *time.Time          `json:"delivery_date"`
	Items        []orderItemResponse `json:"items,omitempty"`
}

func newOrderResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		OrderID:      o.ID,
		Status:       o.Status,
		TotalAmount:  money(o.TotalAmount),
		Instructions: o.Instructions,
		OrderDate:    o.CreatedAt,
		DeliveryDate: o.DeliveryAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			OrderItemID: item.ID,
			ItemID:      item.ItemID,
			Quantity:    item.Quantity,
			UnitPrice:   money(item.UnitPrice),
			Subtotal:    money(item.Subtotal),
		})
	}
	return resp
}

type billingResponse struct {
	BillID        int64                `json:"bill_id"`
	OrderID       int64                `json:"order_id"`
	Amount        json.Number          `json:"amount"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	TransactionID *string              `json:"transaction_id"`
	PaidAt        time.Time            `json:"paid_at"`
	CreatedAt     time.Time            `json:"created_at"`
}

func newBillingResponse(b *domain.Billing) billingResponse {
	return billingResponse{
		BillID:        b.ID,
		OrderID:       b.OrderID,
		Amount:        money(b.Amount),
		PaymentMethod: b.PaymentMethod,
		PaymentStatus: b.PaymentStatus,
		TransactionID: b.TransactionID,
		PaidAt:        b.PaidAt,
		CreatedAt:     b.CreatedAt,
	}
}
