package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

type MenuHandler struct {
	service interfaces.CatalogService
	logger  logger.Logger
}

func NewMenuHandler(service interfaces.CatalogService, logger logger.Logger) *MenuHandler {
	return &MenuHandler{
		service: service,
		logger:  logger,
	}
}

func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMenu(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, menuList(items))
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	item, err := h.service.GetMenuItem(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newMenuItemResponse(item))
}

func (h *MenuHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMenuByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, menuList(items))
}

func menuList(items []*domain.MenuItem) []menuItemResponse {
	resp := make([]menuItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, newMenuItemResponse(item))
	}
	return resp
}
