package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RepaymentCounter tracks qualifying repayments since the last APR
// adjustment, one row per account. Only the reward evaluation path writes it.
type RepaymentCounter struct {
	LoanAccountID  string
	GoodRepayments int
	UpdatedAt      time.Time
}

// RewardAdjustment records one APR step-down. Append-only; produced exactly
// once per reduction.
type RewardAdjustment struct {
	ID            string
	LoanAccountID string
	OldAPR        decimal.Decimal
	NewAPR        decimal.Decimal
	AdjustedOn    time.Time
	Reason        string
	CreatedAt     time.Time
}

// IsQualifyingRepayment reports whether a repayment of amount against
// balanceBefore counts towards a reward step. Exactly 10% qualifies.
func IsQualifyingRepayment(amount, balanceBefore decimal.Decimal) bool {
	if !balanceBefore.IsPositive() {
		return false
	}
	return amount.GreaterThanOrEqual(balanceBefore.Mul(QualifyingRepaymentRate))
}
