package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-blog/inkwell/internal/platform/db"
	"github.com/inkwell-blog/inkwell/internal/shared"
)

// RepositoryPort defines data access methods for user moderation.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	UsernameByID(ctx context.Context, id int64) (string, error)
	SetActive(ctx context.Context, id int64, active bool) (string, error)
	DeleteCascade(ctx context.Context, id int64) (string, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all users in insertion order.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, username, is_admin, is_active, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Username, &user.IsAdmin, &user.IsActive, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// UsernameByID resolves a username for flash messaging.
func (r *Repository) UsernameByID(ctx context.Context, id int64) (string, error) {
	var username string
	err := r.pool.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, id).Scan(&username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return username, nil
}

// SetActive flips the active flag and returns the username.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) (string, error) {
	var username string
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1 RETURNING username`,
		id, active,
	).Scan(&username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return username, nil
}

// DeleteCascade removes the user together with their posts and recorded
// sessions, in one transaction.
func (r *Repository) DeleteCascade(ctx context.Context, id int64) (string, error) {
	var username string
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT username FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&username); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM posts WHERE author_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return "", err
	}
	return username, nil
}

var _ RepositoryPort = (*Repository)(nil)
