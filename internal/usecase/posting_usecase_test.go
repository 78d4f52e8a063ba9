package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/usecase"
	"github.com/fernlea/loanledger/internal/usecase/mocks"
)

type postingFixture struct {
	accountRepo *mocks.MockAccountRepository
	entryRepo   *mocks.MockEntryRepository
	rewardRepo  *mocks.MockRewardRepository
	outboxRepo  *mocks.MockOutboxRepository
	posting     *usecase.PostingUseCase
	rewards     *usecase.RewardUseCase
}

func newPostingFixture(freezeAtMinAPR bool) *postingFixture {
	accountRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()
	rewardRepo := mocks.NewMockRewardRepository()
	outboxRepo := mocks.NewMockOutboxRepository()
	txMgr := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()

	rewards := usecase.NewRewardUseCase(accountRepo, rewardRepo, outboxRepo, idGen, freezeAtMinAPR)
	posting := usecase.NewPostingUseCase(txMgr, accountRepo, entryRepo, rewards, outboxRepo, idGen, mocks.NewMockRetrier(), mocks.NewMockCache(), nil)

	return &postingFixture{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		rewardRepo:  rewardRepo,
		outboxRepo:  outboxRepo,
		posting:     posting,
		rewards:     rewards,
	}
}

func seedAccount(f *postingFixture, id string, balance, limit, apr string) *domain.LoanAccount {
	account := &domain.LoanAccount{
		ID:          id,
		OwnerID:     "owner-1",
		Currency:    "GBP",
		Balance:     decimal.RequireFromString(balance),
		CreditLimit: decimal.RequireFromString(limit),
		APR:         decimal.RequireFromString(apr),
	}
	f.accountRepo.Seed(account)
	return account
}

func TestPostingUseCase_PostPurchase(t *testing.T) {
	tests := []struct {
		name        string
		balance     string
		limit       string
		amount      string
		expectError error
		wantBalance string
	}{
		{
			name:        "purchase within limit",
			balance:     "0",
			limit:       "1000",
			amount:      "500",
			wantBalance: "500",
		},
		{
			name:        "purchase exceeding limit rejected",
			balance:     "500",
			limit:       "1000",
			amount:      "600",
			expectError: domain.ErrCreditLimitExceeded,
			wantBalance: "500",
		},
		{
			name:        "zero amount rejected",
			balance:     "0",
			limit:       "1000",
			amount:      "0",
			expectError: domain.ErrInvalidAmount,
			wantBalance: "0",
		},
		{
			name:        "negative amount rejected",
			balance:     "0",
			limit:       "1000",
			amount:      "-10",
			expectError: domain.ErrInvalidAmount,
			wantBalance: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPostingFixture(true)
			account := seedAccount(f, "acc-1", tt.balance, tt.limit, "25.0")

			result, err := f.posting.PostPurchase(context.Background(), "acc-1", decimal.RequireFromString(tt.amount), "coffee")

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected error %v, got %v", tt.expectError, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if result.Entry.Kind != domain.EntryKindPurchase {
					t.Errorf("entry kind = %s, want purchase", result.Entry.Kind)
				}
			}

			want := decimal.RequireFromString(tt.wantBalance)
			if !account.Balance.Equal(want) {
				t.Errorf("balance = %s, want %s", account.Balance, want)
			}
		})
	}
}

func TestPostingUseCase_BalanceEqualsFold(t *testing.T) {
	f := newPostingFixture(true)
	account := seedAccount(f, "acc-1", "0", "1000", "25.0")
	ctx := context.Background()

	if _, err := f.posting.PostPurchase(ctx, "acc-1", decimal.NewFromInt(500), "tv"); err != nil {
		t.Fatalf("post purchase: %v", err)
	}
	if _, err := f.posting.PostFee(ctx, "acc-1", decimal.NewFromInt(25), "late fee", true); err != nil {
		t.Fatalf("post fee: %v", err)
	}
	if _, err := f.posting.PostRepayment(ctx, "acc-1", decimal.NewFromInt(100), "payment"); err != nil {
		t.Fatalf("post repayment: %v", err)
	}

	folded, err := f.entryRepo.SumByAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("sum entries: %v", err)
	}

	if !account.Balance.Equal(folded) {
		t.Errorf("cached balance %s != folded balance %s", account.Balance, folded)
	}

	want := decimal.NewFromInt(425)
	if !account.Balance.Equal(want) {
		t.Errorf("balance = %s, want %s", account.Balance, want)
	}
}

func TestPostingUseCase_OverpaymentRejected(t *testing.T) {
	f := newPostingFixture(true)
	account := seedAccount(f, "acc-1", "100", "1000", "25.0")
	ctx := context.Background()

	_, err := f.posting.PostRepayment(ctx, "acc-1", decimal.NewFromInt(150), "payment")
	if !errors.Is(err, domain.ErrNegativeBalance) {
		t.Fatalf("expected ErrNegativeBalance, got %v", err)
	}

	if !account.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance = %s, want 100", account.Balance)
	}

	entries, err := f.entryRepo.ListByAccount(ctx, "acc-1", nil, 100, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}

func TestPostingUseCase_RepaymentOfFullBalance(t *testing.T) {
	f := newPostingFixture(true)
	account := seedAccount(f, "acc-1", "100", "1000", "25.0")

	if _, err := f.posting.PostRepayment(context.Background(), "acc-1", decimal.NewFromInt(100), "payoff"); err != nil {
		t.Fatalf("post repayment: %v", err)
	}

	if !account.Balance.IsZero() {
		t.Errorf("balance = %s, want 0", account.Balance)
	}
}

func TestPostingUseCase_RepaymentDrivesRewardCounter(t *testing.T) {
	f := newPostingFixture(true)
	seedAccount(f, "acc-1", "0", "1000", "25.0")
	ctx := context.Background()

	// Scenario: purchase 500, then repay 50 (exactly 10% of 500).
	if _, err := f.posting.PostPurchase(ctx, "acc-1", decimal.NewFromInt(500), "tv"); err != nil {
		t.Fatalf("post purchase: %v", err)
	}

	result, err := f.posting.PostRepayment(ctx, "acc-1", decimal.NewFromInt(50), "payment")
	if err != nil {
		t.Fatalf("post repayment: %v", err)
	}

	if result.Adjustment != nil {
		t.Error("single qualifying repayment should not produce an adjustment")
	}

	counter, err := f.rewardRepo.GetCounter(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if counter.GoodRepayments != 1 {
		t.Errorf("counter = %d, want 1", counter.GoodRepayments)
	}
}

func TestPostingUseCase_NonQualifyingRepaymentIsNeutral(t *testing.T) {
	f := newPostingFixture(true)
	seedAccount(f, "acc-1", "500", "1000", "25.0")
	ctx := context.Background()

	// 49.99 is just under 10% of 500.
	if _, err := f.posting.PostRepayment(ctx, "acc-1", decimal.RequireFromString("49.99"), "payment"); err != nil {
		t.Fatalf("post repayment: %v", err)
	}

	counter, err := f.rewardRepo.GetCounter(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if counter.GoodRepayments != 0 {
		t.Errorf("counter = %d, want 0", counter.GoodRepayments)
	}
}

func TestPostingUseCase_AccountNotFound(t *testing.T) {
	f := newPostingFixture(true)

	_, err := f.posting.PostPurchase(context.Background(), "missing", decimal.NewFromInt(10), "coffee")

	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestPostingUseCase_EmitsOutboxEvents(t *testing.T) {
	f := newPostingFixture(true)
	seedAccount(f, "acc-1", "0", "1000", "25.0")

	if _, err := f.posting.PostPurchase(context.Background(), "acc-1", decimal.NewFromInt(100), "coffee"); err != nil {
		t.Fatalf("post purchase: %v", err)
	}

	events := f.outboxRepo.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].EventType != domain.EventTypeEntryPosted {
		t.Errorf("event type = %s, want %s", events[0].EventType, domain.EventTypeEntryPosted)
	}

	payload, ok := events[0].Payload.(domain.EntryPostedEvent)
	if !ok {
		t.Fatalf("payload type = %T, want domain.EntryPostedEvent", events[0].Payload)
	}
	if payload.Kind != "purchase" {
		t.Errorf("payload kind = %s, want purchase", payload.Kind)
	}
	if payload.Balance != "100" {
		t.Errorf("payload balance = %s, want 100", payload.Balance)
	}
}
