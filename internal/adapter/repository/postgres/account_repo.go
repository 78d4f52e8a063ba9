package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/usecase"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const accountColumns = `id, owner_id, currency, credit_limit, balance, apr, version, created_at, updated_at`

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create creates a new loan account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.LoanAccount) error {
	return createAccount(ctx, r.pool, account)
}

// CreateTx creates a new loan account within a transaction.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.LoanAccount) error {
	return createAccount(ctx, tx.(*Tx).PgxTx(), account)
}

func createAccount(ctx context.Context, q querier, account *domain.LoanAccount) error {
	_, err := q.Exec(ctx, `
		INSERT INTO loan_accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		account.ID,
		account.OwnerID,
		account.Currency,
		decimalToNumeric(account.CreditLimit),
		decimalToNumeric(account.Balance),
		decimalToNumeric(account.APR),
		account.Version,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)

	return err
}

// GetByID retrieves a loan account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.LoanAccount, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM loan_accounts
		WHERE id = $1`, id)

	return scanAccount(row)
}

// GetByIDForUpdate retrieves a loan account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanAccount, error) {
	row := tx.(*Tx).PgxTx().QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM loan_accounts
		WHERE id = $1
		FOR UPDATE`, id)

	return scanAccount(row)
}

// UpdateBalance updates the cached balance of a loan account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	_, err := tx.(*Tx).PgxTx().Exec(ctx, `
		UPDATE loan_accounts
		SET balance = $2, version = version + 1, updated_at = $3
		WHERE id = $1`,
		id, decimalToNumeric(balance), timeToPgTimestamptz(updatedAt))

	return err
}

// UpdateAPR updates the APR of a loan account.
func (r *AccountRepository) UpdateAPR(ctx context.Context, tx usecase.Transaction, id string, apr decimal.Decimal, updatedAt time.Time) error {
	_, err := tx.(*Tx).PgxTx().Exec(ctx, `
		UPDATE loan_accounts
		SET apr = $2, version = version + 1, updated_at = $3
		WHERE id = $1`,
		id, decimalToNumeric(apr), timeToPgTimestamptz(updatedAt))

	return err
}

// ListByOwner lists accounts belonging to an owner with pagination.
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.LoanAccount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM loan_accounts
		WHERE owner_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`,
		ownerID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}

	return scanAccounts(rows)
}

// ListWithPositiveBalance lists accounts carrying a balance, for the daily
// accrual run.
func (r *AccountRepository) ListWithPositiveBalance(ctx context.Context, limit, offset int) ([]*domain.LoanAccount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM loan_accounts
		WHERE balance > 0
		ORDER BY id
		LIMIT $1 OFFSET $2`,
		int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}

	return scanAccounts(rows)
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.LoanAccount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM loan_accounts
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2`,
		int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}

	return scanAccounts(rows)
}

func scanAccount(row pgx.Row) (*domain.LoanAccount, error) {
	var (
		account     domain.LoanAccount
		creditLimit pgtype.Numeric
		balance     pgtype.Numeric
		apr         pgtype.Numeric
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&account.ID,
		&account.OwnerID,
		&account.Currency,
		&creditLimit,
		&balance,
		&apr,
		&account.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	account.CreditLimit = numericToDecimal(creditLimit)
	account.Balance = numericToDecimal(balance)
	account.APR = numericToDecimal(apr)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time

	return &account, nil
}

func scanAccounts(rows pgx.Rows) ([]*domain.LoanAccount, error) {
	defer rows.Close()

	var accounts []*domain.LoanAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func timeToPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}
