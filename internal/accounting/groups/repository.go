package groups

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	acctshared "github.com/ledgerdesk/ledgerdesk/internal/accounting/shared"
	"github.com/ledgerdesk/ledgerdesk/internal/platform/db"
)

// Repository encapsulates DB operations for account groups.
type Repository interface {
	List(ctx context.Context) ([]AccountGroup, error)
	Get(ctx context.Context, id uuid.UUID) (AccountGroup, error)
	ListRootCodes(ctx context.Context) ([]string, error)
	ListChildCodes(ctx context.Context, parentID uuid.UUID) ([]string, error)
	Insert(ctx context.Context, group AccountGroup) (AccountGroup, error)
	Update(ctx context.Context, group AccountGroup) (AccountGroup, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountChildren(ctx context.Context, id uuid.UUID) (int, error)
	CountAccounts(ctx context.Context, id uuid.UUID) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const groupColumns = `id, name, type, parent_id, code, description, created_at, updated_at`

func scanGroup(row pgx.Row) (AccountGroup, error) {
	var g AccountGroup
	err := row.Scan(&g.ID, &g.Name, &g.Type, &g.ParentID, &g.Code, &g.Description, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountGroup{}, acctshared.ErrGroupNotFound
		}
		return AccountGroup{}, err
	}
	return g, nil
}

func (r *repository) List(ctx context.Context) ([]AccountGroup, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+groupColumns+` FROM account_groups ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []AccountGroup
	for rows.Next() {
		var g AccountGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Type, &g.ParentID, &g.Code, &g.Description, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (AccountGroup, error) {
	return scanGroup(r.pool.QueryRow(ctx, `SELECT `+groupColumns+` FROM account_groups WHERE id = $1`, id))
}

func (r *repository) ListRootCodes(ctx context.Context) ([]string, error) {
	return r.collectCodes(ctx, `SELECT code FROM account_groups WHERE parent_id IS NULL`)
}

func (r *repository) ListChildCodes(ctx context.Context, parentID uuid.UUID) ([]string, error) {
	return r.collectCodes(ctx, `SELECT code FROM account_groups WHERE parent_id = $1`, parentID)
}

func (r *repository) collectCodes(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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

func (r *repository) Insert(ctx context.Context, group AccountGroup) (AccountGroup, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO account_groups (name, type, parent_id, code, description)
VALUES ($1, $2, $3, $4, $5) RETURNING `+groupColumns,
		group.Name, group.Type, group.ParentID, group.Code, group.Description)
	inserted, err := scanGroup(row)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return AccountGroup{}, acctshared.ErrDuplicateCode
		}
		return AccountGroup{}, err
	}
	return inserted, nil
}

func (r *repository) Update(ctx context.Context, group AccountGroup) (AccountGroup, error) {
	row := r.pool.QueryRow(ctx, `UPDATE account_groups SET name = $2, type = $3, parent_id = $4, description = $5, updated_at = NOW()
WHERE id = $1 RETURNING `+groupColumns,
		group.ID, group.Name, group.Type, group.ParentID, group.Description)
	updated, err := scanGroup(row)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return AccountGroup{}, acctshared.ErrDuplicateCode
		}
		return AccountGroup{}, err
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM account_groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return acctshared.ErrGroupNotFound
	}
	return nil
}

func (r *repository) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM account_groups WHERE parent_id = $1`, id).Scan(&n)
	return n, err
}

func (r *repository) CountAccounts(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE group_id = $1`, id).Scan(&n)
	return n, err
}
