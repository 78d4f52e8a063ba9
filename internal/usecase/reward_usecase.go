package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fernlea/loanledger/internal/domain"
)

// RewardUseCase drives APR step-downs from observed repayment behavior. The
// per-account state machine is (apr, good repayments since last adjustment);
// apr only ever decreases and never drops below domain.MinAPR.
type RewardUseCase struct {
	accountRepo AccountRepository
	rewardRepo  RewardRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator

	// freezeAtMinAPR stops the counter from advancing once the APR floor is
	// reached. When false, qualifying repayments keep cycling the counter
	// without producing adjustments.
	freezeAtMinAPR bool
}

// NewRewardUseCase creates a new RewardUseCase.
func NewRewardUseCase(
	accountRepo AccountRepository,
	rewardRepo RewardRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	freezeAtMinAPR bool,
) *RewardUseCase {
	return &RewardUseCase{
		accountRepo:    accountRepo,
		rewardRepo:     rewardRepo,
		outboxRepo:     outboxRepo,
		idGen:          idGen,
		freezeAtMinAPR: freezeAtMinAPR,
	}
}

// EvaluateRepayment applies one repayment to the reward state machine. It
// must run inside the same transaction as the repayment posting, with the
// account row already locked, so evaluations follow posting order. Returns
// the adjustment if the repayment completed a reward step, nil otherwise.
func (uc *RewardUseCase) EvaluateRepayment(
	ctx context.Context,
	tx Transaction,
	account *domain.LoanAccount,
	amount, balanceBefore decimal.Decimal,
	now time.Time,
) (*domain.RewardAdjustment, error) {
	if !domain.IsQualifyingRepayment(amount, balanceBefore) {
		return nil, nil
	}

	if account.AtMinAPR() && uc.freezeAtMinAPR {
		return nil, nil
	}

	counter, err := uc.rewardRepo.GetCounterForUpdate(ctx, tx, account.ID)
	if err != nil {
		return nil, err
	}

	counter.GoodRepayments++
	counter.UpdatedAt = now

	var adjustment *domain.RewardAdjustment
	if counter.GoodRepayments >= domain.RequiredGoodRepayments {
		counter.GoodRepayments = 0

		if !account.AtMinAPR() {
			adjustment, err = uc.applyStepDown(ctx, tx, account, now)
			if err != nil {
				return nil, err
			}
		}
	}

	if err := uc.rewardRepo.UpsertCounter(ctx, tx, counter); err != nil {
		return nil, err
	}

	return adjustment, nil
}

func (uc *RewardUseCase) applyStepDown(
	ctx context.Context,
	tx Transaction,
	account *domain.LoanAccount,
	now time.Time,
) (*domain.RewardAdjustment, error) {
	newAPR := domain.NextAPR(account.APR)

	adjustment := &domain.RewardAdjustment{
		ID:            uc.idGen.Generate(),
		LoanAccountID: account.ID,
		OldAPR:        account.APR,
		NewAPR:        newAPR,
		AdjustedOn:    now,
		Reason:        fmt.Sprintf("%d qualifying repayments", domain.RequiredGoodRepayments),
		CreatedAt:     now,
	}

	if err := uc.rewardRepo.CreateAdjustment(ctx, tx, adjustment); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateAPR(ctx, tx, account.ID, newAPR, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAPRReduced,
		Payload: domain.APRReducedEvent{
			AdjustmentID: adjustment.ID,
			AccountID:    account.ID,
			OldAPR:       adjustment.OldAPR.String(),
			NewAPR:       adjustment.NewAPR.String(),
			AdjustedOn:   adjustment.AdjustedOn.Format(time.DateOnly),
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	account.APR = newAPR

	return adjustment, nil
}

// ListAdjustmentsInput represents input for listing reward adjustments.
type ListAdjustmentsInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// History lists an account's APR adjustments, oldest first.
func (uc *RewardUseCase) History(ctx context.Context, input ListAdjustmentsInput) ([]*domain.RewardAdjustment, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.rewardRepo.ListAdjustments(ctx, input.AccountID, limit, offset)
}

// Progress describes how close an account is to its next APR step-down.
type Progress struct {
	AccountID          string          `json:"account_id"`
	GoodRepayments     int             `json:"good_repayments"`
	RequiredRepayments int             `json:"required_repayments"`
	CurrentAPR         decimal.Decimal `json:"current_apr"`
	NextAPR            decimal.Decimal `json:"next_apr"`
	AtMinAPR           bool            `json:"at_min_apr"`
}

// GetProgress reports the account's reward progress for display.
func (uc *RewardUseCase) GetProgress(ctx context.Context, accountID string) (*Progress, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	counter, err := uc.rewardRepo.GetCounter(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &Progress{
		AccountID:          account.ID,
		GoodRepayments:     counter.GoodRepayments,
		RequiredRepayments: domain.RequiredGoodRepayments,
		CurrentAPR:         account.APR,
		NextAPR:            domain.NextAPR(account.APR),
		AtMinAPR:           account.AtMinAPR(),
	}, nil
}
