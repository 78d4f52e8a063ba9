package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/usecase"
	"github.com/fernlea/loanledger/internal/usecase/mocks"
)

type accrualFixture struct {
	accountRepo *mocks.MockAccountRepository
	entryRepo   *mocks.MockEntryRepository
	accrualRepo *mocks.MockAccrualRepository
	accrual     *usecase.AccrualUseCase
}

func newAccrualFixture() *accrualFixture {
	accountRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()
	accrualRepo := mocks.NewMockAccrualRepository()

	accrual := usecase.NewAccrualUseCase(
		mocks.NewMockTransactionManager(),
		accountRepo,
		entryRepo,
		accrualRepo,
		mocks.NewMockOutboxRepository(),
		mocks.NewMockIDGenerator(),
		mocks.NewMockRetrier(),
		zerolog.Nop(),
		nil,
	)

	return &accrualFixture{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		accrualRepo: accrualRepo,
		accrual:     accrual,
	}
}

func (f *accrualFixture) seed(id string, balance, apr string) *domain.LoanAccount {
	account := &domain.LoanAccount{
		ID:          id,
		Currency:    "GBP",
		Balance:     decimal.RequireFromString(balance),
		CreditLimit: decimal.NewFromInt(10000),
		APR:         decimal.RequireFromString(apr),
	}
	f.accountRepo.Seed(account)
	return account
}

func TestAccrualUseCase_AccrueForDate(t *testing.T) {
	f := newAccrualFixture()
	account := f.seed("acc-1", "1000", "24.0")
	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	entry, err := f.accrual.AccrueForDate(context.Background(), "acc-1", date)
	if err != nil {
		t.Fatalf("accrue: %v", err)
	}

	// 1000 * 0.24 / 365 rounds to 0.66.
	want := decimal.RequireFromString("0.66")
	if !entry.Amount.Equal(want) {
		t.Errorf("interest = %s, want %s", entry.Amount, want)
	}
	if entry.Kind != domain.EntryKindInterest {
		t.Errorf("kind = %s, want interest", entry.Kind)
	}
	if !entry.OccurredOn.Equal(date) {
		t.Errorf("occurred_on = %s, want %s", entry.OccurredOn, date)
	}
	if !account.Balance.Equal(decimal.RequireFromString("1000.66")) {
		t.Errorf("balance = %s, want 1000.66", account.Balance)
	}
}

func TestAccrualUseCase_Idempotent(t *testing.T) {
	f := newAccrualFixture()
	f.seed("acc-1", "1000", "24.0")
	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	if _, err := f.accrual.AccrueForDate(ctx, "acc-1", date); err != nil {
		t.Fatalf("first accrual: %v", err)
	}

	_, err := f.accrual.AccrueForDate(ctx, "acc-1", date)
	if !errors.Is(err, domain.ErrAlreadyAccrued) {
		t.Fatalf("expected ErrAlreadyAccrued, got %v", err)
	}

	entries, err := f.entryRepo.ListByAccount(ctx, "acc-1", nil, 100, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d, want exactly 1", len(entries))
	}
}

func TestAccrualUseCase_SkipsZeroRoundingInterest(t *testing.T) {
	f := newAccrualFixture()
	// 5 * 0.25 / 365 = 0.0034, rounds to zero.
	f.seed("acc-1", "5", "25.0")
	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	entry, err := f.accrual.AccrueForDate(context.Background(), "acc-1", date)
	if err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if entry != nil {
		t.Errorf("expected no entry, got %s", entry.Amount)
	}
}

func TestAccrualUseCase_SkipsZeroBalance(t *testing.T) {
	f := newAccrualFixture()
	f.seed("acc-1", "0", "25.0")
	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	entry, err := f.accrual.AccrueForDate(context.Background(), "acc-1", date)
	if err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if entry != nil {
		t.Error("expected no entry for zero balance")
	}
}

func TestAccrualUseCase_RunForDate(t *testing.T) {
	f := newAccrualFixture()
	f.seed("acc-1", "1000", "24.0")
	f.seed("acc-2", "2000", "25.0")
	f.seed("acc-3", "0", "25.0")
	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	summary, err := f.accrual.RunForDate(context.Background(), date)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Posted != 2 {
		t.Errorf("posted = %d, want 2", summary.Posted)
	}
	if summary.Failed != 0 {
		t.Errorf("failed = %d, want 0", summary.Failed)
	}

	// 0.66 + 2000*0.25/365 = 0.66 + 1.37
	want := decimal.RequireFromString("2.03")
	if !summary.TotalInterest.Equal(want) {
		t.Errorf("total interest = %s, want %s", summary.TotalInterest, want)
	}
}

func TestAccrualUseCase_RunIsolatesFailures(t *testing.T) {
	f := newAccrualFixture()
	f.seed("acc-1", "1000", "24.0")
	f.seed("acc-2", "2000", "25.0")
	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	broken := errors.New("storage offline")
	f.entryRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
		if entry.LoanAccountID == "acc-1" {
			return broken
		}
		return nil
	}

	summary, err := f.accrual.RunForDate(context.Background(), date)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Failed != 1 {
		t.Errorf("failed = %d, want 1", summary.Failed)
	}
	if summary.Posted != 1 {
		t.Errorf("posted = %d, want 1", summary.Posted)
	}
}
