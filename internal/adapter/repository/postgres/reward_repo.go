package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/usecase"
)

// RewardRepository implements usecase.RewardRepository.
type RewardRepository struct {
	pool *pgxpool.Pool
}

// NewRewardRepository creates a new RewardRepository.
func NewRewardRepository(pool *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{pool: pool}
}

// GetCounter retrieves an account's repayment counter. Accounts with no
// counter row yet report zero qualifying repayments.
func (r *RewardRepository) GetCounter(ctx context.Context, accountID string) (*domain.RepaymentCounter, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT loan_account_id, good_repayments, updated_at
		FROM repayment_counters
		WHERE loan_account_id = $1`, accountID)

	return scanCounter(row, accountID)
}

// GetCounterForUpdate retrieves a repayment counter with a FOR UPDATE lock.
func (r *RewardRepository) GetCounterForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.RepaymentCounter, error) {
	row := tx.(*Tx).PgxTx().QueryRow(ctx, `
		SELECT loan_account_id, good_repayments, updated_at
		FROM repayment_counters
		WHERE loan_account_id = $1
		FOR UPDATE`, accountID)

	return scanCounter(row, accountID)
}

// UpsertCounter writes a repayment counter, creating the row on first use.
func (r *RewardRepository) UpsertCounter(ctx context.Context, tx usecase.Transaction, counter *domain.RepaymentCounter) error {
	_, err := tx.(*Tx).PgxTx().Exec(ctx, `
		INSERT INTO repayment_counters (loan_account_id, good_repayments, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (loan_account_id)
		DO UPDATE SET good_repayments = EXCLUDED.good_repayments, updated_at = EXCLUDED.updated_at`,
		counter.LoanAccountID,
		counter.GoodRepayments,
		timeToPgTimestamptz(counter.UpdatedAt),
	)

	return err
}

// CreateAdjustment records one APR step-down.
func (r *RewardRepository) CreateAdjustment(ctx context.Context, tx usecase.Transaction, adjustment *domain.RewardAdjustment) error {
	_, err := tx.(*Tx).PgxTx().Exec(ctx, `
		INSERT INTO reward_adjustments (id, loan_account_id, old_apr, new_apr, adjusted_on, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		adjustment.ID,
		adjustment.LoanAccountID,
		decimalToNumeric(adjustment.OldAPR),
		decimalToNumeric(adjustment.NewAPR),
		timeToPgDate(adjustment.AdjustedOn),
		adjustment.Reason,
		timeToPgTimestamptz(adjustment.CreatedAt),
	)

	return err
}

// ListAdjustments lists an account's APR adjustments, oldest first.
func (r *RewardRepository) ListAdjustments(ctx context.Context, accountID string, limit, offset int) ([]*domain.RewardAdjustment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, loan_account_id, old_apr, new_apr, adjusted_on, reason, created_at
		FROM reward_adjustments
		WHERE loan_account_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`,
		accountID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []*domain.RewardAdjustment
	for rows.Next() {
		var (
			adjustment domain.RewardAdjustment
			oldAPR     pgtype.Numeric
			newAPR     pgtype.Numeric
			adjustedOn pgtype.Date
			createdAt  pgtype.Timestamptz
		)

		err := rows.Scan(
			&adjustment.ID,
			&adjustment.LoanAccountID,
			&oldAPR,
			&newAPR,
			&adjustedOn,
			&adjustment.Reason,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		adjustment.OldAPR = numericToDecimal(oldAPR)
		adjustment.NewAPR = numericToDecimal(newAPR)
		adjustment.AdjustedOn = adjustedOn.Time
		adjustment.CreatedAt = createdAt.Time

		adjustments = append(adjustments, &adjustment)
	}

	return adjustments, rows.Err()
}

func scanCounter(row pgx.Row, accountID string) (*domain.RepaymentCounter, error) {
	var (
		counter   domain.RepaymentCounter
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&counter.LoanAccountID, &counter.GoodRepayments, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.RepaymentCounter{LoanAccountID: accountID}, nil
		}

		return nil, err
	}

	counter.UpdatedAt = updatedAt.Time

	return &counter, nil
}
