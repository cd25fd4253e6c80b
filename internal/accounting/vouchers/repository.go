package vouchers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/ledger"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/shared"
	"github.com/ledgerdesk/ledgerdesk/internal/platform/db"
)

const voucherColumns = `id, voucher_type, voucher_no, account_id, total_amount, description, voucher_date, created_at, updated_at`

const entryColumns = `id, account_id, voucher_id, transaction_type, amount, previous_balance, narration, entry_date, created_at, updated_at`

// Repository encapsulates DB operations for vouchers. All posting
// happens inside WithTx so a voucher and its N+1 entries commit as one
// unit.
type Repository interface {
	List(ctx context.Context, voucherType *VoucherType) ([]Voucher, error)
	Get(ctx context.Context, id uuid.UUID) (Voucher, error)
	ListEntries(ctx context.Context, voucherID uuid.UUID) ([]ledger.Entry, error)
	// NextVoucherNo is the racy preview read; creation recomputes the
	// number inside its transaction.
	NextVoucherNo(ctx context.Context, voucherType VoucherType) (int64, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction. Entry
// and balance operations are duplicated from the ledger repository so
// they share this transaction.
type TxRepository interface {
	NextVoucherNo(ctx context.Context, voucherType VoucherType) (int64, error)
	InsertVoucher(ctx context.Context, v Voucher) (Voucher, error)
	GetVoucher(ctx context.Context, id uuid.UUID) (Voucher, error)
	UpdateVoucher(ctx context.Context, v Voucher) (Voucher, error)
	DeleteVoucher(ctx context.Context, id uuid.UUID) error
	InsertEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error)
	ListEntriesByVoucher(ctx context.Context, voucherID uuid.UUID) ([]ledger.Entry, error)
	DeleteEntriesByVoucher(ctx context.Context, voucherID uuid.UUID) error
	ApplyDelta(ctx context.Context, accountID uuid.UUID, delta float64) (float64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) List(ctx context.Context, voucherType *VoucherType) ([]Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers`
	args := []any{}
	if voucherType != nil {
		query += ` WHERE voucher_type = $1`
		args = append(args, *voucherType)
	}
	query += ` ORDER BY voucher_type ASC, voucher_no DESC`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var vouchers []Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Voucher, error) {
	row := r.db.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id = $1`, id)
	v, err := scanVoucher(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, shared.ErrVoucherNotFound
		}
		return Voucher{}, err
	}
	return v, nil
}

func (r *repository) ListEntries(ctx context.Context, voucherID uuid.UUID) ([]ledger.Entry, error) {
	return listEntries(ctx, r.db, voucherID)
}

func (r *repository) NextVoucherNo(ctx context.Context, voucherType VoucherType) (int64, error) {
	return nextVoucherNo(ctx, r.db, voucherType)
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) NextVoucherNo(ctx context.Context, voucherType VoucherType) (int64, error) {
	return nextVoucherNo(ctx, r.tx, voucherType)
}

func (r *txRepository) InsertVoucher(ctx context.Context, v Voucher) (Voucher, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO vouchers (voucher_type, voucher_no, account_id, total_amount, description, voucher_date)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at, updated_at`,
		v.Type, v.VoucherNo, v.AccountID, v.TotalAmount, v.Description, v.VoucherDate)
	if err := row.Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err, "vouchers_voucher_type_voucher_no_key") {
			return Voucher{}, shared.ErrDuplicateVoucherNo
		}
		return Voucher{}, err
	}
	return v, nil
}

func (r *txRepository) GetVoucher(ctx context.Context, id uuid.UUID) (Voucher, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id = $1 FOR UPDATE`, id)
	v, err := scanVoucher(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, shared.ErrVoucherNotFound
		}
		return Voucher{}, err
	}
	return v, nil
}

func (r *txRepository) UpdateVoucher(ctx context.Context, v Voucher) (Voucher, error) {
	row := r.tx.QueryRow(ctx, `UPDATE vouchers SET voucher_type = $2, total_amount = $3, description = $4, voucher_date = $5, updated_at = NOW()
WHERE id = $1 RETURNING `+voucherColumns, v.ID, v.Type, v.TotalAmount, v.Description, v.VoucherDate)
	updated, err := scanVoucher(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, shared.ErrVoucherNotFound
		}
		return Voucher{}, err
	}
	return updated, nil
}

func (r *txRepository) DeleteVoucher(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM vouchers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrVoucherNotFound
	}
	return nil
}

func (r *txRepository) InsertEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO ledger_entries (account_id, voucher_id, transaction_type, amount, previous_balance, narration, entry_date)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id, created_at, updated_at`,
		e.AccountID, e.VoucherID, e.Type, e.Amount, e.PreviousBalance, e.Narration, e.EntryDate)
	if err := row.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return ledger.Entry{}, err
	}
	return e, nil
}

func (r *txRepository) ListEntriesByVoucher(ctx context.Context, voucherID uuid.UUID) ([]ledger.Entry, error) {
	return listEntries(ctx, r.tx, voucherID)
}

func (r *txRepository) DeleteEntriesByVoucher(ctx context.Context, voucherID uuid.UUID) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM ledger_entries WHERE voucher_id = $1`, voucherID)
	return err
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

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func nextVoucherNo(ctx context.Context, q querier, voucherType VoucherType) (int64, error) {
	var next int64
	err := q.QueryRow(ctx, `SELECT COALESCE(MAX(voucher_no), 0) + 1 FROM vouchers WHERE voucher_type = $1`, voucherType).Scan(&next)
	return next, err
}

func listEntries(ctx context.Context, q querier, voucherID uuid.UUID) ([]ledger.Entry, error) {
	rows, err := q.Query(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE voucher_id = $1 ORDER BY created_at ASC`, voucherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.VoucherID, &e.Type, &e.Amount, &e.PreviousBalance, &e.Narration, &e.EntryDate, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanVoucher(row pgx.Row) (Voucher, error) {
	var v Voucher
	err := row.Scan(&v.ID, &v.Type, &v.VoucherNo, &v.AccountID, &v.TotalAmount, &v.Description, &v.VoucherDate, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}
