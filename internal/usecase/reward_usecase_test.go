package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/usecase"
)

// repayTenPercent posts a repayment of exactly 10% of the current balance.
func repayTenPercent(t *testing.T, f *postingFixture, accountID string) *domain.RewardAdjustment {
	t.Helper()

	account, err := f.accountRepo.GetByID(context.Background(), accountID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}

	amount := account.Balance.Mul(domain.QualifyingRepaymentRate)

	result, err := f.posting.PostRepayment(context.Background(), accountID, amount, "payment")
	if err != nil {
		t.Fatalf("post repayment: %v", err)
	}

	return result.Adjustment
}

func TestRewardUseCase_ThreeQualifyingRepaymentsStepDownAPR(t *testing.T) {
	f := newPostingFixture(true)
	account := seedAccount(f, "acc-1", "500", "1000", "25.0")
	ctx := context.Background()

	if adj := repayTenPercent(t, f, "acc-1"); adj != nil {
		t.Fatal("no adjustment expected after first qualifying repayment")
	}
	if adj := repayTenPercent(t, f, "acc-1"); adj != nil {
		t.Fatal("no adjustment expected after second qualifying repayment")
	}

	adjustment := repayTenPercent(t, f, "acc-1")
	if adjustment == nil {
		t.Fatal("expected adjustment after third qualifying repayment")
	}

	if !adjustment.OldAPR.Equal(decimal.RequireFromString("25.0")) {
		t.Errorf("old apr = %s, want 25.0", adjustment.OldAPR)
	}
	if !adjustment.NewAPR.Equal(decimal.RequireFromString("23.0")) {
		t.Errorf("new apr = %s, want 23.0", adjustment.NewAPR)
	}
	if !account.APR.Equal(decimal.RequireFromString("23.0")) {
		t.Errorf("account apr = %s, want 23.0", account.APR)
	}

	counter, err := f.rewardRepo.GetCounter(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if counter.GoodRepayments != 0 {
		t.Errorf("counter = %d, want 0 after adjustment", counter.GoodRepayments)
	}

	history, err := f.rewards.History(ctx, usecase.ListAdjustmentsInput{AccountID: "acc-1"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history entries = %d, want exactly 1", len(history))
	}
	if history[0].Reason != "3 qualifying repayments" {
		t.Errorf("reason = %q", history[0].Reason)
	}
}

func TestRewardUseCase_APRNeverDropsBelowFloor(t *testing.T) {
	f := newPostingFixture(true)
	account := seedAccount(f, "acc-1", "500", "1000", "11.0")

	for i := 0; i < 3; i++ {
		repayTenPercent(t, f, "acc-1")
	}

	if !account.APR.Equal(domain.MinAPR) {
		t.Errorf("apr = %s, want clamped at %s", account.APR, domain.MinAPR)
	}
}

func TestRewardUseCase_FrozenCounterAtMinAPR(t *testing.T) {
	f := newPostingFixture(true)
	seedAccount(f, "acc-1", "500", "1000", "10.0")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if adj := repayTenPercent(t, f, "acc-1"); adj != nil {
			t.Fatal("no adjustment expected at minimum APR")
		}
	}

	counter, err := f.rewardRepo.GetCounter(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if counter.GoodRepayments != 0 {
		t.Errorf("frozen counter = %d, want 0", counter.GoodRepayments)
	}
}

func TestRewardUseCase_CyclingCounterAtMinAPR(t *testing.T) {
	f := newPostingFixture(false)
	account := seedAccount(f, "acc-1", "500", "1000", "10.0")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if adj := repayTenPercent(t, f, "acc-1"); adj != nil {
			t.Fatal("no adjustment expected at minimum APR")
		}
	}

	// Three repayments cycled the counter back to zero, the fourth started a
	// new cycle. The APR stays at the floor throughout.
	counter, err := f.rewardRepo.GetCounter(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if counter.GoodRepayments != 1 {
		t.Errorf("counter = %d, want 1", counter.GoodRepayments)
	}
	if !account.APR.Equal(domain.MinAPR) {
		t.Errorf("apr = %s, want %s", account.APR, domain.MinAPR)
	}
}

func TestRewardUseCase_GetProgress(t *testing.T) {
	f := newPostingFixture(true)
	seedAccount(f, "acc-1", "500", "1000", "25.0")

	repayTenPercent(t, f, "acc-1")

	progress, err := f.rewards.GetProgress(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}

	if progress.GoodRepayments != 1 {
		t.Errorf("good repayments = %d, want 1", progress.GoodRepayments)
	}
	if progress.RequiredRepayments != domain.RequiredGoodRepayments {
		t.Errorf("required = %d, want %d", progress.RequiredRepayments, domain.RequiredGoodRepayments)
	}
	if !progress.NextAPR.Equal(decimal.RequireFromString("23.0")) {
		t.Errorf("next apr = %s, want 23.0", progress.NextAPR)
	}
}
