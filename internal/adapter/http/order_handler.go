package http

import (
	"encoding/json"
	"net/http"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

type OrderHandler struct {
	service interfaces.OrderService
	logger  logger.Logger
}

func NewOrderHandler(service interfaces.OrderService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

type CreateOrderRequest struct {
	Items        []OrderItemRequest `json:"items"`
	Instructions *string            `json:"special_instructions"`
}

type OrderItemRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type CreateOrderResponse struct {
	OrderID     int64       `json:"order_id"`
	Status      string      `json:"status"`
	TotalAmount json.Number `json:"total_amount"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	cmd := interfaces.CreateOrderCommand{
		UserID:       currentUser(r),
		Instructions: req.Instructions,
		Items:        make([]interfaces.CreateOrderItemCommand, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, interfaces.CreateOrderItemCommand{ItemID: item.ItemID, Quantity: item.Quantity})
	}

	order, err := h.service.CreateOrder(r.Context(), cmd)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateOrderResponse{
		OrderID:     order.ID,
		Status:      string(order.Status),
		TotalAmount: money(order.TotalAmount),
	})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context(), currentUser(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, newOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	order, err := h.service.GetOrder(r.Context(), currentUser(r), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	order, err := h.service.CancelOrder(r.Context(), currentUser(r), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
		"message":  "order cancelled",
	})
}
