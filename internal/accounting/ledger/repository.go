package ledger

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/shared"
	"github.com/ledgerdesk/ledgerdesk/internal/platform/db"
)

const entryColumns = `id, account_id, voucher_id, transaction_type, amount, previous_balance, narration, entry_date, created_at, updated_at`

// Repository encapsulates DB operations for ledger entries. Balance
// mutations only happen inside WithTx so an entry and its account
// delta always commit together.
type Repository interface {
	List(ctx context.Context, accountID *uuid.UUID, from, to *time.Time) ([]Entry, error)
	Get(ctx context.Context, id uuid.UUID) (Entry, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	InsertEntry(ctx context.Context, e Entry) (Entry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (Entry, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error
	// ApplyDelta adds delta to the account balance atomically and
	// returns the balance after the update.
	ApplyDelta(ctx context.Context, accountID uuid.UUID, delta float64) (float64, error)
	VoucherExists(ctx context.Context, voucherID uuid.UUID) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, accountID *uuid.UUID, from, to *time.Time) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE 1=1`
	args := []any{}
	if accountID != nil {
		args = append(args, *accountID)
		query += ` AND account_id = $1`
	}
	if from != nil {
		args = append(args, *from)
		query += ` AND entry_date >= $` + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += ` AND entry_date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY entry_date ASC, created_at ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	row := r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE id = $1`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, shared.ErrEntryNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertEntry(ctx context.Context, e Entry) (Entry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO ledger_entries (account_id, voucher_id, transaction_type, amount, previous_balance, narration, entry_date)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id, created_at, updated_at`,
		e.AccountID, e.VoucherID, e.Type, e.Amount, e.PreviousBalance, e.Narration, e.EntryDate)
	if err := row.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (r *txRepository) GetEntry(ctx context.Context, id uuid.UUID) (Entry, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE id = $1 FOR UPDATE`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, shared.ErrEntryNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *txRepository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM ledger_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

func (r *txRepository) ApplyDelta(ctx context.Context, accountID uuid.UUID, delta float64) (float64, error) {
	var balance float64
	err := r.tx.QueryRow(ctx, `UPDATE accounts SET current_balance = current_balance + $2, updated_at = NOW()
WHERE id = $1 RETURNING current_balance`, accountID, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrAccountNotFound
		}
		return 0, err
	}
	return balance, nil
}

func (r *txRepository) VoucherExists(ctx context.Context, voucherID uuid.UUID) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vouchers WHERE id = $1)`, voucherID).Scan(&exists)
	return exists, err
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.AccountID, &e.VoucherID, &e.Type, &e.Amount, &e.PreviousBalance, &e.Narration, &e.EntryDate, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
