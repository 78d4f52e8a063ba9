package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fernlea/loanledger/internal/domain"
	"github.com/fernlea/loanledger/internal/usecase"
)

const entryColumns = `id, loan_account_id, kind, amount, description, is_late_fee, occurred_on, posted_at`

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Create appends a ledger entry within a transaction. Entries are immutable
// once written.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	_, err := tx.(*Tx).PgxTx().Exec(ctx, `
		INSERT INTO ledger_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID,
		entry.LoanAccountID,
		string(entry.Kind),
		decimalToNumeric(entry.Amount),
		entry.Description,
		entry.IsLateFee,
		timeToPgDate(entry.OccurredOn),
		timeToPgTimestamptz(entry.PostedAt),
	)

	return err
}

// GetByID retrieves a ledger entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE id = $1`, id)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return entry, nil
}

// ListByAccount lists an account's entries in posting order, optionally
// filtered to entries that occurred on or after since.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, since *time.Time, limit, offset int) ([]*domain.LedgerEntry, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if since != nil {
		rows, err = r.pool.Query(ctx, `
			SELECT `+entryColumns+`
			FROM ledger_entries
			WHERE loan_account_id = $1 AND occurred_on >= $2
			ORDER BY posted_at, id
			LIMIT $3 OFFSET $4`,
			accountID, timeToPgDate(*since), int32(limit), int32(offset))
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+entryColumns+`
			FROM ledger_entries
			WHERE loan_account_id = $1
			ORDER BY posted_at, id
			LIMIT $2 OFFSET $3`,
			accountID, int32(limit), int32(offset))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// SumByAccount folds the full entry log into a balance. Repayments subtract,
// every other kind adds.
func (r *EntryRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var sum pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN kind = 'repayment' THEN -amount ELSE amount END), 0)
		FROM ledger_entries
		WHERE loan_account_id = $1`, accountID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var (
		entry      domain.LedgerEntry
		kind       string
		amount     pgtype.Numeric
		occurredOn pgtype.Date
		postedAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&entry.LoanAccountID,
		&kind,
		&amount,
		&entry.Description,
		&entry.IsLateFee,
		&occurredOn,
		&postedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Kind = domain.EntryKind(kind)
	entry.Amount = numericToDecimal(amount)
	entry.OccurredOn = occurredOn.Time
	entry.PostedAt = postedAt.Time

	return &entry, nil
}
