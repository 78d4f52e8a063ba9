package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fernlea/loanledger/internal/adapter/http/handler"
	"github.com/fernlea/loanledger/internal/adapter/http/middleware"
	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/usecase"
)

type routerAccountStub struct{}

func (routerAccountStub) CreateAccount(context.Context, usecase.CreateAccountInput) (*domain.LoanAccount, error) {
	return &domain.LoanAccount{ID: "acc-1"}, nil
}

func (routerAccountStub) GetAccount(context.Context, string) (*domain.LoanAccount, error) {
	return &domain.LoanAccount{ID: "acc-1"}, nil
}

func (routerAccountStub) ListAccountsByOwner(context.Context, usecase.ListAccountsByOwnerInput) ([]*domain.LoanAccount, error) {
	return nil, nil
}

func (routerAccountStub) GetDerivedMetrics(context.Context, string) (*usecase.DerivedMetrics, error) {
	return &usecase.DerivedMetrics{}, nil
}

func (routerAccountStub) GetRepaymentOptions(context.Context, string) ([]usecase.RepaymentOption, error) {
	return nil, nil
}

type routerPostingStub struct{}

func (routerPostingStub) Post(context.Context, usecase.PostEntryInput) (*usecase.PostingResult, error) {
	return &usecase.PostingResult{Entry: &domain.LedgerEntry{ID: "ent-1"}}, nil
}

func (routerPostingStub) GetEntry(context.Context, string) (*domain.LedgerEntry, error) {
	return &domain.LedgerEntry{ID: "ent-1"}, nil
}

func (routerPostingStub) ListEntries(context.Context, usecase.ListEntriesInput) ([]*domain.LedgerEntry, error) {
	return nil, nil
}

type routerRewardStub struct{}

func (routerRewardStub) GetProgress(context.Context, string) (*usecase.Progress, error) {
	return &usecase.Progress{}, nil
}

func (routerRewardStub) History(context.Context, usecase.ListAdjustmentsInput) ([]*domain.RewardAdjustment, error) {
	return nil, nil
}

type routerAccrualStub struct{}

func (routerAccrualStub) RunForDate(_ context.Context, date time.Time) (*usecase.RunSummary, error) {
	return &usecase.RunSummary{Date: date}, nil
}

type routerIdempotencyStore struct {
	checked bool
}

func (s *routerIdempotencyStore) CheckAndSet(context.Context, string, []byte, time.Duration) (bool, []byte, error) {
	s.checked = true
	return false, nil, nil
}

func (s *routerIdempotencyStore) Update(context.Context, string, []byte, time.Duration) error {
	return nil
}

func newRouterConfig() RouterConfig {
	return RouterConfig{
		AccountHandler: handler.NewAccountHandler(routerAccountStub{}),
		EntryHandler:   handler.NewEntryHandler(routerPostingStub{}),
		RewardHandler:  handler.NewRewardHandler(routerRewardStub{}),
		AccrualHandler: handler.NewAccrualHandler(routerAccrualStub{}),
		HealthHandler:  handler.NewHealthHandler(nil, nil),
		Logger:         zerolog.Nop(),
	}
}

func TestNewRouter_RegistersRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRouter, ok := router.(chi.Router)
	if !ok {
		t.Fatal("expected chi.Router")
	}

	registered := make(map[string]bool)
	err := chi.Walk(chiRouter, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk routes: %v", err)
	}

	expected := []string{
		"GET /health",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/",
		"GET /api/v1/accounts/{id}",
		"GET /api/v1/accounts/{id}/metrics",
		"GET /api/v1/accounts/{id}/repayment-options",
		"GET /api/v1/accounts/{id}/entries",
		"POST /api/v1/accounts/{id}/purchases",
		"POST /api/v1/accounts/{id}/fees",
		"POST /api/v1/accounts/{id}/repayments",
		"GET /api/v1/accounts/{id}/rewards",
		"GET /api/v1/accounts/{id}/rewards/history",
		"GET /api/v1/entries/{id}",
		"POST /api/v1/accruals/run",
	}

	for _, route := range expected {
		if !registered[route] {
			t.Errorf("route %s not registered", route)
		}
	}
}

func TestNewRouter_Liveness(t *testing.T) {
	router := NewRouter(newRouterConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	router := NewRouter(newRouterConfig())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestNewRouter_IdempotencyStoreConsulted(t *testing.T) {
	store := &routerIdempotencyStore{}
	cfg := newRouterConfig()
	cfg.IdempotencyStore = store
	router := NewRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/acc-1/repayments", nil)
	req.Header.Set(middleware.IdempotencyKeyHeader, "key-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checked {
		t.Fatal("expected idempotency store to be consulted")
	}
}

func TestNewRouter_RateLimiter(t *testing.T) {
	cfg := newRouterConfig()
	cfg.RateLimiter = middleware.NewRateLimiter(0.001, 1)
	router := NewRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.9:1234"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
}
