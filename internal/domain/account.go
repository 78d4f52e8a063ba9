package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// APR bounds and reward progression constants for revolving credit accounts.
var (
	// InitialAPR is the rate every account starts at.
	InitialAPR = decimal.RequireFromString("25.0")
	// MinAPR is the floor below which an APR never drops.
	MinAPR = decimal.RequireFromString("10.0")
	// APRStep is the reduction applied per reward step.
	APRStep = decimal.RequireFromString("2.0")
	// QualifyingRepaymentRate is the fraction of the pre-repayment balance a
	// repayment must reach to count towards a reward step.
	QualifyingRepaymentRate = decimal.RequireFromString("0.1")
)

// RequiredGoodRepayments is the number of qualifying repayments that trigger
// one APR reduction.
const RequiredGoodRepayments = 3

// LoanAccount represents a revolving credit account. Balance is a cached fold
// over the account's ledger entries and is only ever written together with an
// entry, inside the same transaction.
type LoanAccount struct {
	ID          string
	OwnerID     string
	Currency    string
	CreditLimit decimal.Decimal
	Balance     decimal.Decimal
	APR         decimal.Decimal
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidatePurchase checks if a purchase of amount fits under the credit
// limit. Fees, interest and repayments are never limit-checked.
func (a *LoanAccount) ValidatePurchase(amount decimal.Decimal) error {
	if a.Balance.Add(amount).GreaterThan(a.CreditLimit) {
		return ErrCreditLimitExceeded
	}
	return nil
}

// AvailableCredit returns the remaining spendable credit.
func (a *LoanAccount) AvailableCredit() decimal.Decimal {
	return a.CreditLimit.Sub(a.Balance)
}

// UtilizationRate returns balance/credit_limit as a percentage rounded to two
// decimal places. Zero-limit accounts report zero utilization.
func (a *LoanAccount) UtilizationRate() decimal.Decimal {
	if a.CreditLimit.IsZero() {
		return decimal.Zero
	}
	return a.Balance.Div(a.CreditLimit).Mul(decimal.NewFromInt(100)).Round(2)
}

// AtMinAPR reports whether the account has reached the APR floor.
func (a *LoanAccount) AtMinAPR() bool {
	return !a.APR.GreaterThan(MinAPR)
}

// NextAPR returns the rate one reward step below current, clamped at MinAPR.
func NextAPR(current decimal.Decimal) decimal.Decimal {
	next := current.Sub(APRStep)
	if next.LessThan(MinAPR) {
		return MinAPR
	}
	return next
}
