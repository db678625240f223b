package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/domain"
)

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Field     string `json:"field,omitempty"`
	ItemID    *int64 `json:"item_id,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// errorStatus maps a domain error kind to its HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrItemUnavailable):
		return http.StatusConflict, "item_unavailable"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrResourceUnavailable):
		return http.StatusServiceUnavailable, "resource_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func respondError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, code := errorStatus(err)
	requestID := logger.RequestID(r.Context())

	resp := errorResponse{
		Error:     code,
		Message:   err.Error(),
		RequestID: requestID,
		Retryable: domain.IsRetryable(err),
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
		resp.Message = verr.Message
	}
	var itemErr *domain.ItemError
	if errors.As(err, &itemErr) {
		resp.ItemID = &itemErr.ItemID
	}

	if status == http.StatusInternalServerError {
		log.Error("request_failed", "Request failed", requestID, map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		}, err)
		resp.Message = "an error occurred while processing your request"
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
