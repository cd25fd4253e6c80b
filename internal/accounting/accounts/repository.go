package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/shared"
	"github.com/ledgerdesk/ledgerdesk/internal/platform/db"
)

const accountColumns = `id, name, group_id, code, opening_balance, current_balance, description, created_at, updated_at`

// Repository encapsulates DB operations for accounts. Creation and
// deletion run through WithTx so the account row and its ledger
// entries always move together.
type Repository interface {
	List(ctx context.Context, groupID *uuid.UUID) ([]Account, error)
	Get(ctx context.Context, id uuid.UUID) (Account, error)
	ListCodes(ctx context.Context, groupID uuid.UUID) ([]string, error)
	Update(ctx context.Context, a Account) (Account, error)
	CountVoucherRefs(ctx context.Context, id uuid.UUID) (int64, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	InsertAccount(ctx context.Context, a Account) (Account, error)
	// InsertOpeningEntry writes the opening-balance ledger entry.
	// Duplicated from the ledger repository so it shares this
	// transaction.
	InsertOpeningEntry(ctx context.Context, accountID uuid.UUID, transactionType string, amount float64, entryDate time.Time) error
	DeleteEntriesByAccount(ctx context.Context, accountID uuid.UUID) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) List(ctx context.Context, groupID *uuid.UUID) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	args := []any{}
	if groupID != nil {
		query += ` WHERE group_id = $1`
		args = append(args, *groupID)
	}
	query += ` ORDER BY code ASC`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) ListCodes(ctx context.Context, groupID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT code FROM accounts WHERE group_id = $1`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (r *repository) Update(ctx context.Context, a Account) (Account, error) {
	row := r.db.QueryRow(ctx, `UPDATE accounts SET name = $2, description = $3, updated_at = NOW()
WHERE id = $1 RETURNING `+accountColumns, a.ID, a.Name, a.Description)
	updated, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return updated, nil
}

func (r *repository) CountVoucherRefs(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT
  (SELECT COUNT(*) FROM vouchers WHERE account_id = $1) +
  (SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1 AND voucher_id IS NOT NULL)`, id).Scan(&count)
	return count, err
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertAccount(ctx context.Context, a Account) (Account, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO accounts (name, group_id, code, opening_balance, current_balance, description)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at, updated_at`,
		a.Name, a.GroupID, a.Code, a.OpeningBalance, a.CurrentBalance, a.Description)
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err, "accounts_group_id_code_key") {
			return Account{}, shared.ErrDuplicateCode
		}
		return Account{}, err
	}
	return a, nil
}

func (r *txRepository) InsertOpeningEntry(ctx context.Context, accountID uuid.UUID, transactionType string, amount float64, entryDate time.Time) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO ledger_entries (account_id, voucher_id, transaction_type, amount, previous_balance, narration, entry_date)
VALUES ($1,NULL,$2,$3,0,'Opening balance',$4)`, accountID, transactionType, amount, entryDate)
	return err
}

func (r *txRepository) DeleteEntriesByAccount(ctx context.Context, accountID uuid.UUID) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM ledger_entries WHERE account_id = $1`, accountID)
	return err
}

func (r *txRepository) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.GroupID, &a.Code, &a.OpeningBalance, &a.CurrentBalance, &a.Description, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
