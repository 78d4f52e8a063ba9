package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/infrastructure/metrics"
)

// AccrualUseCase converts standing balances into daily interest entries. It
// reuses the serialized posting path (account row lock) and dedups on
// (account, date) so a run can be repeated safely.
type AccrualUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	accrualRepo AccrualRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     Retrier
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewAccrualUseCase creates a new AccrualUseCase. m may be nil.
func NewAccrualUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	accrualRepo AccrualRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *AccrualUseCase {
	return &AccrualUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		accrualRepo: accrualRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		retrier:     retrier,
		logger:      logger,
		metrics:     m,
	}
}

// AccrueForDate posts one day's interest for one account. Returns the posted
// entry, or nil when the account carries no balance or the daily interest
// rounds to zero. A repeat call for the same (account, date) returns
// domain.ErrAlreadyAccrued.
func (uc *AccrualUseCase) AccrueForDate(ctx context.Context, accountID string, date time.Time) (*domain.LedgerEntry, error) {
	var entry *domain.LedgerEntry

	operation := func() error {
		var err error
		entry, err = uc.accrue(ctx, accountID, date)
		return err
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, operation)
	} else {
		err = operation()
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (uc *AccrualUseCase) accrue(ctx context.Context, accountID string, date time.Time) (*domain.LedgerEntry, error) {
	date = truncateToDate(date)
	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	if !account.Balance.IsPositive() {
		return nil, nil
	}

	interest := domain.DailyInterest(account.Balance, account.APR)
	if interest.IsZero() {
		return nil, nil
	}

	entry := &domain.LedgerEntry{
		ID:            uc.idGen.Generate(),
		LoanAccountID: account.ID,
		Kind:          domain.EntryKindInterest,
		Amount:        interest,
		Description:   "Daily interest",
		OccurredOn:    date,
		PostedAt:      now,
	}

	// The entry must exist before the dedup row: interest_accruals.entry_id
	// references ledger_entries and the check runs per statement. A duplicate
	// day still aborts the whole transaction before anything commits.
	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	accrual := &domain.InterestAccrual{
		LoanAccountID: account.ID,
		AccrualDate:   date,
		EntryID:       entry.ID,
		CreatedAt:     now,
	}

	if err := uc.accrualRepo.Create(ctx, tx, accrual); err != nil {
		return nil, err
	}

	newBalance := account.Balance.Add(interest)

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeEntry,
		EventType:     domain.EventTypeEntryPosted,
		Payload: domain.EntryPostedEvent{
			EntryID:    entry.ID,
			AccountID:  account.ID,
			Kind:       string(entry.Kind),
			Amount:     entry.Amount.String(),
			Balance:    newBalance.String(),
			OccurredOn: date.Format(time.DateOnly),
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// RunSummary reports the outcome of one daily accrual run.
type RunSummary struct {
	Date          time.Time       `json:"date"`
	Accounts      int             `json:"accounts"`
	Posted        int             `json:"posted"`
	Skipped       int             `json:"skipped"`
	Failed        int             `json:"failed"`
	TotalInterest decimal.Decimal `json:"total_interest"`
}

// RunForDate accrues interest for every account with a positive balance.
// Per-account failures are logged and do not abort the run; an account that
// already accrued for the date counts as skipped.
func (uc *AccrualUseCase) RunForDate(ctx context.Context, date time.Time) (*RunSummary, error) {
	summary := &RunSummary{
		Date:          truncateToDate(date),
		TotalInterest: decimal.Zero,
	}
	start := time.Now()

	offset := 0
	for {
		accounts, err := uc.accountRepo.ListWithPositiveBalance(ctx, AccrualPageSize, offset)
		if err != nil {
			if uc.metrics != nil {
				uc.metrics.AccrualRunErrors.Inc()
			}
			return summary, err
		}

		if len(accounts) == 0 {
			break
		}

		for _, account := range accounts {
			summary.Accounts++

			entry, err := uc.AccrueForDate(ctx, account.ID, date)
			switch {
			case errors.Is(err, domain.ErrAlreadyAccrued):
				summary.Skipped++
			case err != nil:
				summary.Failed++
				uc.logger.Error().
					Err(err).
					Str("account_id", account.ID).
					Time("date", summary.Date).
					Msg("interest accrual failed")
			case entry == nil:
				summary.Skipped++
			default:
				summary.Posted++
				summary.TotalInterest = summary.TotalInterest.Add(entry.Amount)
			}
		}

		if len(accounts) < AccrualPageSize {
			break
		}
		offset += AccrualPageSize
	}

	if uc.metrics != nil {
		uc.metrics.AccrualsPosted.Add(float64(summary.Posted))
		uc.metrics.AccrualsSkipped.Add(float64(summary.Skipped))
		uc.metrics.AccrualsFailed.Add(float64(summary.Failed))
		uc.metrics.InterestAccrued.Add(summary.TotalInterest.InexactFloat64())
		uc.metrics.AccrualRunTime.Observe(time.Since(start).Seconds())
	}

	uc.logger.Info().
		Time("date", summary.Date).
		Int("accounts", summary.Accounts).
		Int("posted", summary.Posted).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Str("total_interest", summary.TotalInterest.String()).
		Msg("daily accrual run completed")

	return summary, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
