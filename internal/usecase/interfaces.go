package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fernlea/loanledger/internal/domain"
)

// AccountRepository defines data access for loan accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.LoanAccount) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.LoanAccount) error
	GetByID(ctx context.Context, id string) (*domain.LoanAccount, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LoanAccount, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdateAPR(ctx context.Context, tx Transaction, id string, apr decimal.Decimal, updatedAt time.Time) error
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.LoanAccount, error)
	ListWithPositiveBalance(ctx context.Context, limit, offset int) ([]*domain.LoanAccount, error)
	List(ctx context.Context, limit, offset int) ([]*domain.LoanAccount, error)
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error)
	ListByAccount(ctx context.Context, accountID string, since *time.Time, limit, offset int) ([]*domain.LedgerEntry, error)
	SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// RewardRepository defines data access for repayment counters and APR
// adjustments.
type RewardRepository interface {
	GetCounter(ctx context.Context, accountID string) (*domain.RepaymentCounter, error)
	GetCounterForUpdate(ctx context.Context, tx Transaction, accountID string) (*domain.RepaymentCounter, error)
	UpsertCounter(ctx context.Context, tx Transaction, counter *domain.RepaymentCounter) error
	CreateAdjustment(ctx context.Context, tx Transaction, adjustment *domain.RewardAdjustment) error
	ListAdjustments(ctx context.Context, accountID string, limit, offset int) ([]*domain.RewardAdjustment, error)
}

// AccrualRepository defines data access for interest accrual dedup records.
type AccrualRepository interface {
	// Create inserts the dedup record and returns domain.ErrAlreadyAccrued if
	// an accrual already exists for (accountID, accrualDate).
	Create(ctx context.Context, tx Transaction, accrual *domain.InterestAccrual) error
	Exists(ctx context.Context, accountID string, accrualDate time.Time) (bool, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation that may fail transiently, e.g. on a lost
// row-lock race. Non-retryable errors pass through unchanged.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
