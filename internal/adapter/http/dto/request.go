package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/usecase"
)

// CreateAccountRequest represents a request to create a loan account.
type CreateAccountRequest struct {
	OwnerID        string          `json:"owner_id"`
	Currency       string          `json:"currency"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		OwnerID:        r.OwnerID,
		Currency:       r.Currency,
		CreditLimit:    r.CreditLimit,
		OpeningBalance: r.OpeningBalance,
	}
}

// PostEntryRequest represents a request to post a ledger entry. Kind is set
// by the route, not the body, for the purchase/fee/repayment endpoints.
type PostEntryRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	IsLateFee   bool            `json:"is_late_fee,omitempty"`
	OccurredOn  *time.Time      `json:"occurred_on,omitempty"`
}

// ToUseCaseInput converts to use case input for the given account and kind.
func (r *PostEntryRequest) ToUseCaseInput(accountID string, kind domain.EntryKind) usecase.PostEntryInput {
	input := usecase.PostEntryInput{
		AccountID:   accountID,
		Kind:        kind,
		Amount:      r.Amount,
		Description: r.Description,
		IsLateFee:   r.IsLateFee,
	}
	if r.OccurredOn != nil {
		input.OccurredOn = *r.OccurredOn
	}
	return input
}

// RunAccrualRequest represents a request to run interest accrual for a date.
// An empty date means today.
type RunAccrualRequest struct {
	Date string `json:"date,omitempty"` // YYYY-MM-DD
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
