package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind identifies the type of a ledger entry.
type EntryKind string

const (
	EntryKindPurchase  EntryKind = "purchase"
	EntryKindFee       EntryKind = "fee"
	EntryKindRepayment EntryKind = "repayment"
	EntryKindInterest  EntryKind = "interest"
)

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	switch k {
	case EntryKindPurchase, EntryKindFee, EntryKindRepayment, EntryKindInterest:
		return true
	}
	return false
}

// LedgerEntry represents one immutable, dated monetary posting against a loan
// account. Amounts are always positive; repayments reduce the balance, all
// other kinds increase it. Balance computation orders entries by PostedAt
// (insertion order), not OccurredOn.
type LedgerEntry struct {
	ID            string
	LoanAccountID string
	Kind          EntryKind
	Amount        decimal.Decimal
	Description   string
	IsLateFee     bool
	OccurredOn    time.Time
	PostedAt      time.Time
}

// SignedAmount returns the entry's contribution to the account balance.
func (e *LedgerEntry) SignedAmount() decimal.Decimal {
	if e.Kind == EntryKindRepayment {
		return e.Amount.Neg()
	}
	return e.Amount
}

// FoldBalance recomputes a balance from an entry log. The result must always
// equal the account's cached balance.
func FoldBalance(entries []*LedgerEntry) decimal.Decimal {
	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.SignedAmount())
	}
	return balance
}
