package http

import (
	"net/http"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

type BillingHandler struct {
	service interfaces.BillingService
	logger  logger.Logger
}

func NewBillingHandler(service interfaces.BillingService, logger logger.Logger) *BillingHandler {
	return &BillingHandler{
		service: service,
		logger:  logger,
	}
}

type CreateBillingRequest struct {
	OrderID       int64   `json:"order_id"`
	PaymentMethod string  `json:"payment_method"`
	TransactionID *string `json:"transaction_id"`
}

func (h *BillingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBillingRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	bill, err := h.service.CreateBilling(r.Context(), interfaces.CreateBillingCommand{
		UserID:        currentUser(r),
		OrderID:       req.OrderID,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"bill_id": bill.ID,
		"amount":  money(bill.Amount),
		"status":  bill.PaymentStatus,
	})
}

func (h *BillingHandler) List(w http.ResponseWriter, r *http.Request) {
	bills, err := h.service.ListBillings(r.Context(), currentUser(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp := make([]billingResponse, 0, len(bills))
	for _, b := range bills {
		resp = append(resp, newBillingResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BillingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	bill, err := h.service.GetBilling(r.Context(), currentUser(r), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newBillingResponse(bill))
}
