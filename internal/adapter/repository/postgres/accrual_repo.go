package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// AccrualRepository implements usecase.AccrualRepository. The primary key on
// (loan_account_id, accrual_date) is what makes the daily accrual run
// idempotent.
type AccrualRepository struct {
	pool *pgxpool.Pool
}

// NewAccrualRepository creates a new AccrualRepository.
func NewAccrualRepository(pool *pgxpool.Pool) *AccrualRepository {
	return &AccrualRepository{pool: pool}
}

// Create inserts the dedup record for one accrual. A duplicate
// (account, date) pair returns domain.ErrAlreadyAccrued.
func (r *AccrualRepository) Create(ctx context.Context, tx usecase.Transaction, accrual *domain.InterestAccrual) error {
	_, err := tx.(*Tx).PgxTx().Exec(ctx, `
		INSERT INTO interest_accruals (loan_account_id, accrual_date, entry_id, created_at)
		VALUES ($1, $2, $3, $4)`,
		accrual.LoanAccountID,
		timeToPgDate(accrual.AccrualDate),
		accrual.EntryID,
		timeToPgTimestamptz(accrual.CreatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrAlreadyAccrued
		}

		return err
	}

	return nil
}

// Exists reports whether an accrual is already recorded for the given
// account and date.
func (r *AccrualRepository) Exists(ctx context.Context, accountID string, accrualDate time.Time) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM interest_accruals
			WHERE loan_account_id = $1 AND accrual_date = $2
		)`, accountID, timeToPgDate(accrualDate)).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}
