package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerdesk/ledgerdesk/internal/platform/db"
	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, username, email, role, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// ListUsers returns all users ordered by creation time.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUser fetches one user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// CreateUser inserts a user row and returns it.
func (r *Repository) CreateUser(ctx context.Context, u User) (User, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO users (username, email, role, password_hash)
VALUES ($1, $2, $3, $4) RETURNING `+userColumns, u.Username, u.Email, u.Role, u.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return User{}, shared.ErrConflict
		}
		return User{}, err
	}
	return created, nil
}

// UpdateUser persists mutable user fields.
func (r *Repository) UpdateUser(ctx context.Context, u User) (User, error) {
	row := r.pool.QueryRow(ctx, `UPDATE users SET username = $2, email = $3, role = $4, password_hash = $5, updated_at = NOW()
WHERE id = $1 RETURNING `+userColumns, u.ID, u.Username, u.Email, u.Role, u.PasswordHash)
	updated, err := scanUser(row)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return User{}, shared.ErrConflict
		}
		return User{}, err
	}
	return updated, nil
}

// DeleteUser removes a user row.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
