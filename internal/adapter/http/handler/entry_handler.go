package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fernlea/loanledger/internal/adapter/http/dto"
	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/usecase"
)

// PostingService defines the behavior needed by EntryHandler.
type PostingService interface {
	Post(ctx context.Context, input usecase.PostEntryInput) (*usecase.PostingResult, error)
	GetEntry(ctx context.Context, id string) (*domain.LedgerEntry, error)
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, error)
}

// EntryHandler handles ledger entry HTTP requests.
type EntryHandler struct {
	postingUC PostingService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(postingUC PostingService) *EntryHandler {
	return &EntryHandler{postingUC: postingUC}
}

// PostPurchase posts a purchase entry.
func (h *EntryHandler) PostPurchase(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, domain.EntryKindPurchase)
}

// PostFee posts a fee entry.
func (h *EntryHandler) PostFee(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, domain.EntryKindFee)
}

// PostRepayment posts a repayment entry.
func (h *EntryHandler) PostRepayment(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, domain.EntryKindRepayment)
}

func (h *EntryHandler) post(w http.ResponseWriter, r *http.Request, kind domain.EntryKind) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.PostEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.postingUC.Post(r.Context(), req.ToUseCaseInput(accountID, kind))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post entry", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PostingResponse{
		Entry:      dto.EntryFromDomain(result.Entry),
		Balance:    result.Balance,
		Adjustment: dto.AdjustmentFromDomain(result.Adjustment),
	})
}

// Get retrieves a ledger entry by ID.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.postingUC.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// ListByAccount lists an account's entries in posting order. The optional
// since query parameter (YYYY-MM-DD) filters by occurrence date.
func (h *EntryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	input := usecase.ListEntriesInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	}

	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		since, err := time.Parse(time.DateOnly, sinceStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since date", err.Error())
			return
		}
		input.Since = &since
	}

	entries, err := h.postingUC.ListEntries(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntriesResponse{
		Entries: dto.EntriesFromDomain(entries),
		Total:   int64(len(entries)),
	})
}
