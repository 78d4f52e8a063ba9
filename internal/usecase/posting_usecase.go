package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/infrastructure/metrics"
)

// PostingUseCase is the single write path for ledger entries. Every mutation
// locks the account row, so all postings against one account apply in a
// strict sequence while distinct accounts proceed independently.
type PostingUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	rewards     *RewardUseCase
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     Retrier
	cache       Cache
	metrics     *metrics.Metrics
}

// NewPostingUseCase creates a new PostingUseCase. retrier, cache, and m may
// be nil.
func NewPostingUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	rewards *RewardUseCase,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	cache Cache,
	m *metrics.Metrics,
) *PostingUseCase {
	return &PostingUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		rewards:     rewards,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		retrier:     retrier,
		cache:       cache,
		metrics:     m,
	}
}

// PostEntryInput represents input for posting a ledger entry.
type PostEntryInput struct {
	AccountID   string
	Kind        domain.EntryKind
	Amount      decimal.Decimal
	Description string
	IsLateFee   bool
	OccurredOn  time.Time
}

// PostingResult is the outcome of a posting: the persisted entry, the
// resulting balance, and the APR adjustment if a repayment completed a
// reward step.
type PostingResult struct {
	Entry      *domain.LedgerEntry
	Balance    decimal.Decimal
	Adjustment *domain.RewardAdjustment
}

// PostPurchase posts a purchase entry, enforcing the credit limit.
func (uc *PostingUseCase) PostPurchase(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*PostingResult, error) {
	return uc.Post(ctx, PostEntryInput{
		AccountID:   accountID,
		Kind:        domain.EntryKindPurchase,
		Amount:      amount,
		Description: description,
	})
}

// PostFee posts a fee entry. Fees are never limit-checked.
func (uc *PostingUseCase) PostFee(ctx context.Context, accountID string, amount decimal.Decimal, description string, isLateFee bool) (*PostingResult, error) {
	return uc.Post(ctx, PostEntryInput{
		AccountID:   accountID,
		Kind:        domain.EntryKindFee,
		Amount:      amount,
		Description: description,
		IsLateFee:   isLateFee,
	})
}

// PostRepayment posts a repayment entry and evaluates it against the reward
// state machine using the balance immediately before the repayment.
func (uc *PostingUseCase) PostRepayment(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*PostingResult, error) {
	return uc.Post(ctx, PostEntryInput{
		AccountID:   accountID,
		Kind:        domain.EntryKindRepayment,
		Amount:      amount,
		Description: description,
	})
}

// Post validates and applies one posting. Validation failures leave state
// untouched; retryable lock races are retried and surface as
// domain.ErrConcurrencyConflict only once retries are exhausted.
func (uc *PostingUseCase) Post(ctx context.Context, input PostEntryInput) (*PostingResult, error) {
	if !input.Kind.Valid() {
		return nil, domain.ErrInvalidEntryKind
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	var result *PostingResult
	start := time.Now()

	operation := func() error {
		var err error
		result, err = uc.post(ctx, input)
		return err
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, operation)
	} else {
		err = operation()
	}
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.PostingErrors.WithLabelValues(postingErrorType(err)).Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		kind := string(input.Kind)
		uc.metrics.EntriesPosted.WithLabelValues(kind).Inc()
		uc.metrics.EntryAmount.WithLabelValues(kind).Observe(input.Amount.InexactFloat64())
		uc.metrics.PostingDuration.Observe(time.Since(start).Seconds())
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, metricsCacheKey(input.AccountID))
	}

	return result, nil
}

func postingErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrCreditLimitExceeded):
		return "credit_limit"
	case errors.Is(err, domain.ErrNegativeBalance):
		return "overpayment"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	default:
		return "other"
	}
}

func (uc *PostingUseCase) post(ctx context.Context, input PostEntryInput) (*PostingResult, error) {
	now := time.Now().UTC()

	occurredOn := input.OccurredOn
	if occurredOn.IsZero() {
		occurredOn = now
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if input.Kind == domain.EntryKindPurchase {
		if err := account.ValidatePurchase(input.Amount); err != nil {
			return nil, err
		}
	}

	// The cached balance never goes below zero; repaying more than is owed is
	// rejected against the locked balance.
	if input.Kind == domain.EntryKindRepayment && input.Amount.GreaterThan(account.Balance) {
		return nil, domain.ErrNegativeBalance
	}

	balanceBefore := account.Balance

	entry := &domain.LedgerEntry{
		ID:            uc.idGen.Generate(),
		LoanAccountID: account.ID,
		Kind:          input.Kind,
		Amount:        input.Amount,
		Description:   input.Description,
		IsLateFee:     input.IsLateFee,
		OccurredOn:    occurredOn,
		PostedAt:      now,
	}

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	newBalance := balanceBefore.Add(entry.SignedAmount())

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return nil, err
	}

	account.Balance = newBalance
	account.Version++

	var adjustment *domain.RewardAdjustment
	if input.Kind == domain.EntryKindRepayment {
		adjustment, err = uc.rewards.EvaluateRepayment(ctx, tx, account, input.Amount, balanceBefore, now)
		if err != nil {
			return nil, err
		}
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
			OccurredOn: occurredOn.Format(time.DateOnly),
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &PostingResult{
		Entry:      entry,
		Balance:    newBalance,
		Adjustment: adjustment,
	}, nil
}

// GetEntry retrieves a single ledger entry by ID.
func (uc *PostingUseCase) GetEntry(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	AccountID string
	Since     *time.Time
	Limit     int
	Offset    int
}

// ListEntries lists an account's entries in posting order.
func (uc *PostingUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.LedgerEntry, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.entryRepo.ListByAccount(ctx, input.AccountID, input.Since, limit, offset)
}
