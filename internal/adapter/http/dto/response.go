package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fernlea/loanledger/internal/domain"
)

// AccountResponse represents a loan account in API responses.
type AccountResponse struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Currency    string          `json:"currency"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Balance     decimal.Decimal `json:"balance"`
	APR         decimal.Decimal `json:"apr"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.LoanAccount) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		OwnerID:     a.OwnerID,
		Currency:    a.Currency,
		CreditLimit: a.CreditLimit,
		Balance:     a.Balance,
		APR:         a.APR,
		Version:     a.Version,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.LoanAccount) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID            string          `json:"id"`
	LoanAccountID string          `json:"loan_account_id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	IsLateFee     bool            `json:"is_late_fee"`
	OccurredOn    string          `json:"occurred_on"`
	PostedAt      time.Time       `json:"posted_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:            e.ID,
		LoanAccountID: e.LoanAccountID,
		Kind:          string(e.Kind),
		Amount:        e.Amount,
		Description:   e.Description,
		IsLateFee:     e.IsLateFee,
		OccurredOn:    e.OccurredOn.Format(time.DateOnly),
		PostedAt:      e.PostedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ListEntriesResponse wraps a page of entries.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Total   int64            `json:"total"`
}

// PostingResponse is the outcome of posting an entry. Adjustment is present
// only when a repayment completed a reward step.
type PostingResponse struct {
	Entry      *EntryResponse      `json:"entry"`
	Balance    decimal.Decimal     `json:"balance"`
	Adjustment *AdjustmentResponse `json:"adjustment,omitempty"`
}

// AdjustmentResponse represents an APR step-down in API responses.
type AdjustmentResponse struct {
	ID            string          `json:"id"`
	LoanAccountID string          `json:"loan_account_id"`
	OldAPR        decimal.Decimal `json:"old_apr"`
	NewAPR        decimal.Decimal `json:"new_apr"`
	AdjustedOn    string          `json:"adjusted_on"`
	Reason        string          `json:"reason"`
}

// AdjustmentFromDomain converts a domain adjustment to a response.
func AdjustmentFromDomain(a *domain.RewardAdjustment) *AdjustmentResponse {
	if a == nil {
		return nil
	}
	return &AdjustmentResponse{
		ID:            a.ID,
		LoanAccountID: a.LoanAccountID,
		OldAPR:        a.OldAPR,
		NewAPR:        a.NewAPR,
		AdjustedOn:    a.AdjustedOn.Format(time.DateOnly),
		Reason:        a.Reason,
	}
}

// AdjustmentsFromDomain converts domain adjustments to responses.
func AdjustmentsFromDomain(adjustments []*domain.RewardAdjustment) []*AdjustmentResponse {
	result := make([]*AdjustmentResponse, len(adjustments))
	for i, a := range adjustments {
		result[i] = AdjustmentFromDomain(a)
	}
	return result
}

// AccrualRunResponse summarises one interest accrual run.
type AccrualRunResponse struct {
	Date          string          `json:"date"`
	Accounts      int             `json:"accounts"`
	Posted        int             `json:"posted"`
	Skipped       int             `json:"skipped"`
	Failed        int             `json:"failed"`
	TotalInterest decimal.Decimal `json:"total_interest"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
