package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound    = errors.New("loan account not found")
	ErrInvalidCreditLimit = errors.New("credit limit must be positive")
	ErrNegativeBalance    = errors.New("balance cannot be negative")

	// Posting errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidEntryKind    = errors.New("unknown entry kind")
	ErrCreditLimitExceeded = errors.New("purchase would exceed credit limit")
	ErrEntryNotFound       = errors.New("ledger entry not found")

	// Accrual errors
	ErrAlreadyAccrued = errors.New("interest already accrued for this date")

	// Concurrency errors
	ErrConcurrencyConflict = errors.New("concurrent update conflict, retry the operation")
)
