package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/fernlea/loanledger/internal/adapter/http/handler"
	"github.com/fernlea/loanledger/internal/adapter/http/middleware"
	"github.com/fernlea/loanledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	EntryHandler     *handler.EntryHandler
	RewardHandler    *handler.RewardHandler
	AccrualHandler   *handler.AccrualHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/metrics", cfg.AccountHandler.Metrics)
			r.Get("/{id}/repayment-options", cfg.AccountHandler.RepaymentOptions)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByAccount)
			r.Post("/{id}/purchases", cfg.EntryHandler.PostPurchase)
			r.Post("/{id}/fees", cfg.EntryHandler.PostFee)
			r.Post("/{id}/repayments", cfg.EntryHandler.PostRepayment)
			r.Get("/{id}/rewards", cfg.RewardHandler.Progress)
			r.Get("/{id}/rewards/history", cfg.RewardHandler.History)
		})

		// Entries
		r.Get("/entries/{id}", cfg.EntryHandler.Get)

		// Operations
		r.Post("/accruals/run", cfg.AccrualHandler.Run)
	})

	return r
}
