package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fernlea/loanledger/internal/adapter/http/dto"
	"github.com/fernlea/loanledger/internal/usecase"
)

// AccrualService defines the behavior needed by AccrualHandler.
type AccrualService interface {
	RunForDate(ctx context.Context, date time.Time) (*usecase.RunSummary, error)
}

// AccrualHandler triggers interest accrual runs on demand. The scheduler is
// the usual caller; this endpoint exists for operations and backfills.
type AccrualHandler struct {
	accrualUC AccrualService
}

// NewAccrualHandler creates a new AccrualHandler.
func NewAccrualHandler(accrualUC AccrualService) *AccrualHandler {
	return &AccrualHandler{accrualUC: accrualUC}
}

// Run runs interest accrual for the requested date, defaulting to today.
func (h *AccrualHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.RunAccrualRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date", err.Error())
			return
		}
		date = parsed
	}

	summary, err := h.accrualUC.RunForDate(r.Context(), date)
	if err != nil {
		writeError(w, mapDomainError(err), "accrual run failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccrualRunResponse{
		Date:          summary.Date.Format(time.DateOnly),
		Accounts:      summary.Accounts,
		Posted:        summary.Posted,
		Skipped:       summary.Skipped,
		Failed:        summary.Failed,
		TotalInterest: summary.TotalInterest,
	})
}
