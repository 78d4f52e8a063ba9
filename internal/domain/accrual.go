package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred     = decimal.NewFromInt(100)
	daysPerYear = decimal.NewFromInt(365)
	// estimateDays is only used for display estimates, never for posting.
	estimateDays = decimal.NewFromInt(30)
)

// InterestAccrual is the dedup record for one interest posting. The unique
// (loan_account_id, accrual_date) pair guarantees at most one accrual per
// account per day.
type InterestAccrual struct {
	LoanAccountID string
	AccrualDate   time.Time
	EntryID       string
	CreatedAt     time.Time
}

// DailyInterest computes balance * apr/100/365 rounded half-up to the minor
// currency unit.
func DailyInterest(balance, apr decimal.Decimal) decimal.Decimal {
	return balance.Mul(apr).Div(hundred).Div(daysPerYear).Round(2)
}

// EstimatedMonthlyInterest is a display-only figure (daily * 30). It must
// never be posted as a ledger entry; only daily accrual is authoritative.
func EstimatedMonthlyInterest(dailyInterest decimal.Decimal) decimal.Decimal {
	return dailyInterest.Mul(estimateDays).Round(2)
}
