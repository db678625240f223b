package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

type RouterConfig struct {
	Orders    interfaces.OrderService
	Billing   interfaces.BillingService
	Menu      interfaces.CatalogService
	JWTSecret string
	Logger    logger.Logger
	// Health is optional; a failing check turns /healthz into 503.
	Health func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig) http.Handler {
	orders := NewOrderHandler(cfg.Orders, cfg.Logger)
	bills := NewBillingHandler(cfg.Billing, cfg.Logger)
	menu := NewMenuHandler(cfg.Menu, cfg.Logger)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(RecoveryMiddleware(cfg.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/menu", func(r chi.Router) {
			r.Get("/", menu.List)
			r.Get("/{id}", menu.Get)
			r.Get("/category/{category}", menu.ListByCategory)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireUser([]byte(cfg.JWTSecret), cfg.Logger))

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", orders.Create)
				r.Get("/", orders.List)
				r.Get("/{id}", orders.Get)
				r.Put("/{id}/cancel", orders.Cancel)
			})

			r.Route("/billing", func(r chi.Router) {
				r.Post("/", bills.Create)
				r.Get("/", bills.List)
				r.Get("/{id}", bills.Get)
			})
		})
	})

	return r
}
