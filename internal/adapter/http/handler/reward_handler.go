package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fernlea/loanledger/internal/adapter/http/dto"
	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/usecase"
)

// RewardService defines the behavior needed by RewardHandler.
type RewardService interface {
	GetProgress(ctx context.Context, accountID string) (*usecase.Progress, error)
	History(ctx context.Context, input usecase.ListAdjustmentsInput) ([]*domain.RewardAdjustment, error)
}

// RewardHandler handles reward progress and APR history requests.
type RewardHandler struct {
	rewardUC RewardService
}

// NewRewardHandler creates a new RewardHandler.
func NewRewardHandler(rewardUC RewardService) *RewardHandler {
	return &RewardHandler{rewardUC: rewardUC}
}

// Progress reports how close an account is to its next APR step-down.
func (h *RewardHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	progress, err := h.rewardUC.GetProgress(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get reward progress", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

// History lists an account's APR adjustments, oldest first.
func (h *RewardHandler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	adjustments, err := h.rewardUC.History(r.Context(), usecase.ListAdjustmentsInput{
		AccountID: id,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get adjustment history", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"adjustments": dto.AdjustmentsFromDomain(adjustments),
	})
}
