package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fernlea/loanledger/internal/adapter/http/dto"
	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.LoanAccount, error)
	GetAccount(ctx context.Context, id string) (*domain.LoanAccount, error)
	ListAccountsByOwner(ctx context.Context, input usecase.ListAccountsByOwnerInput) ([]*domain.LoanAccount, error)
	GetDerivedMetrics(ctx context.Context, accountID string) (*usecase.DerivedMetrics, error)
	GetRepaymentOptions(ctx context.Context, accountID string) ([]usecase.RepaymentOption, error)
}

// AccountHandler handles loan account HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new loan account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves a loan account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts for the owner given in the owner_id query parameter.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "missing owner_id", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.accountUC.ListAccountsByOwner(r.Context(), usecase.ListAccountsByOwnerInput{
		OwnerID: ownerID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Metrics returns the derived dashboard figures for an account.
func (h *AccountHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	metrics, err := h.accountUC.GetDerivedMetrics(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get metrics", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

// RepaymentOptions returns the suggested repayment amounts for an account.
func (h *AccountHandler) RepaymentOptions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	options, err := h.accountUC.GetRepaymentOptions(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get repayment options", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"options": options})
}
