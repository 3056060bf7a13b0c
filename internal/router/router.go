package router

import (
	"schoolhub-warehouse-api/internal/handler"
	"schoolhub-warehouse-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler          *handler.Handler
	WarehouseHandler *handler.WarehouseHandler
	DashboardHandler *handler.DashboardHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.WarehouseHandler != nil {
			r.Route("/items", func(r chi.Router) {
				r.Get("/", cfg.WarehouseHandler.ListItems)
				r.Post("/", cfg.WarehouseHandler.CreateItem)
				r.Get("/categories", cfg.WarehouseHandler.Categories)
				r.Put("/{id}", cfg.WarehouseHandler.UpdateItem)
				r.Delete("/{id}", cfg.WarehouseHandler.DeleteItem)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", cfg.WarehouseHandler.ListTransactions)
				r.Post("/", cfg.WarehouseHandler.CreateTransaction)
				r.Post("/{id}/approve", cfg.WarehouseHandler.ApproveTransaction)
				r.Post("/{id}/reject", cfg.WarehouseHandler.RejectTransaction)
			})
		}

		if cfg.DashboardHandler != nil {
			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/summary", cfg.DashboardHandler.Summary)
				r.Get("/flow", cfg.DashboardHandler.Flow)
			})
		}
	})

	return r
}
