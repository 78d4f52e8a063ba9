package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fernlea/loanledger/internal/domain"
)

// DefaultCurrency is used when account creation omits a currency.
const DefaultCurrency = "GBP"

// AccountUseCase handles loan account lifecycle and read-side queries.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	cache       Cache
}

// NewAccountUseCase creates a new AccountUseCase. cache may be nil to disable
// metrics caching.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		cache:       cache,
	}
}

// CreateAccountInput represents input for creating a loan account.
type CreateAccountInput struct {
	OwnerID        string
	Currency       string
	CreditLimit    decimal.Decimal
	OpeningBalance decimal.Decimal
}

// CreateAccount creates a new loan account at InitialAPR. A positive opening
// balance is posted as an opening purchase entry in the same transaction so
// the balance stays a pure fold over the entry log.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.LoanAccount, error) {
	if input.Currency == "" {
		input.Currency = DefaultCurrency
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	if err := domain.ValidateCreditLimit(input.CreditLimit); err != nil {
		return nil, err
	}

	if input.OpeningBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	if input.OpeningBalance.GreaterThan(input.CreditLimit) {
		return nil, domain.ErrCreditLimitExceeded
	}

	now := time.Now().UTC()

	account := &domain.LoanAccount{
		ID:          uc.idGen.Generate(),
		OwnerID:     input.OwnerID,
		Currency:    input.Currency,
		CreditLimit: input.CreditLimit,
		Balance:     input.OpeningBalance,
		APR:         domain.InitialAPR,
		Version:     0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, err
	}

	if input.OpeningBalance.IsPositive() {
		entry := &domain.LedgerEntry{
			ID:            uc.idGen.Generate(),
			LoanAccountID: account.ID,
			Kind:          domain.EntryKindPurchase,
			Amount:        input.OpeningBalance,
			Description:   "Opening balance",
			OccurredOn:    now,
			PostedAt:      now,
		}

		if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountCreated,
		Payload: domain.AccountCreatedEvent{
			AccountID:   account.ID,
			OwnerID:     account.OwnerID,
			Currency:    account.Currency,
			CreditLimit: account.CreditLimit.String(),
			APR:         account.APR.String(),
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves a loan account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.LoanAccount, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsByOwnerInput represents input for listing an owner's accounts.
type ListAccountsByOwnerInput struct {
	OwnerID string
	Limit   int
	Offset  int
}

// ListAccountsByOwner lists accounts belonging to an owner.
func (uc *AccountUseCase) ListAccountsByOwner(ctx context.Context, input ListAccountsByOwnerInput) ([]*domain.LoanAccount, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.ListByOwner(ctx, input.OwnerID, limit, offset)
}

// DerivedMetrics is a read-side projection for dashboard display. Monthly
// interest is an estimate (daily * 30) and is never posted.
type DerivedMetrics struct {
	AccountID                string          `json:"account_id"`
	Balance                  decimal.Decimal `json:"balance"`
	CreditLimit              decimal.Decimal `json:"credit_limit"`
	AvailableCredit          decimal.Decimal `json:"available_credit"`
	UtilizationRate          decimal.Decimal `json:"utilization_rate"`
	APR                      decimal.Decimal `json:"apr"`
	EstimatedDailyInterest   decimal.Decimal `json:"estimated_daily_interest"`
	EstimatedMonthlyInterest decimal.Decimal `json:"estimated_monthly_interest"`
}

// GetDerivedMetrics computes display metrics for an account. Results are
// cached briefly; postings invalidate the cache.
func (uc *AccountUseCase) GetDerivedMetrics(ctx context.Context, accountID string) (*DerivedMetrics, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, metricsCacheKey(accountID)); err == nil && cached != "" {
			var metrics DerivedMetrics
			if err := json.Unmarshal([]byte(cached), &metrics); err == nil {
				return &metrics, nil
			}
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	daily := domain.DailyInterest(account.Balance, account.APR)
	metrics := &DerivedMetrics{
		AccountID:                account.ID,
		Balance:                  account.Balance,
		CreditLimit:              account.CreditLimit,
		AvailableCredit:          account.AvailableCredit(),
		UtilizationRate:          account.UtilizationRate(),
		APR:                      account.APR,
		EstimatedDailyInterest:   daily,
		EstimatedMonthlyInterest: domain.EstimatedMonthlyInterest(daily),
	}

	if uc.cache != nil {
		if encoded, err := json.Marshal(metrics); err == nil {
			_ = uc.cache.Set(ctx, metricsCacheKey(accountID), string(encoded), MetricsCacheTTL)
		}
	}

	return metrics, nil
}

// RepaymentOption is a suggested repayment amount for an account's balance.
type RepaymentOption struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// GetRepaymentOptions returns the suggested repayment amounts: the minimum
// payment, the smallest amount that still counts towards a reward step, half
// the balance, and the full balance.
func (uc *AccountUseCase) GetRepaymentOptions(ctx context.Context, accountID string) ([]RepaymentOption, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	balance := account.Balance
	return []RepaymentOption{
		{Label: "minimum", Amount: balance.Mul(decimal.RequireFromString("0.025")).Round(2)},
		{Label: "qualifying", Amount: balance.Mul(domain.QualifyingRepaymentRate).Round(2)},
		{Label: "half", Amount: balance.Mul(decimal.RequireFromString("0.5")).Round(2)},
		{Label: "full", Amount: balance},
	}, nil
}

// VerifyBalance recomputes the balance fold over the full entry log and
// compares it with the cached balance. Used by reconciliation and tests.
func (uc *AccountUseCase) VerifyBalance(ctx context.Context, accountID string) (bool, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}

	folded, err := uc.entryRepo.SumByAccount(ctx, accountID)
	if err != nil {
		return false, err
	}

	return account.Balance.Equal(folded), nil
}

func metricsCacheKey(accountID string) string {
	return "metrics:" + accountID
}

// InvalidateMetrics drops the cached metrics for an account. Best effort.
func (uc *AccountUseCase) InvalidateMetrics(ctx context.Context, accountID string) {
	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, metricsCacheKey(accountID))
	}
}
