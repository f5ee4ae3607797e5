package posts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-blog/inkwell/internal/shared"
)

// RepositoryPort defines data access methods for posts.
type RepositoryPort interface {
	Create(ctx context.Context, authorID int64, title, body string) (*Post, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
	List(ctx context.Context, limit, offset int) ([]Post, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id int64, title, body string) error
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a post owned by authorID.
func (r *Repository) Create(ctx context.Context, authorID int64, title, body string) (*Post, error) {
	var post Post
	err := r.pool.QueryRow(ctx,
		`INSERT INTO posts (title, body, author_id) VALUES ($1, $2, $3)
		 RETURNING id, title, body, author_id, created_at`,
		title, body, authorID,
	).Scan(&post.ID, &post.Title, &post.Body, &post.AuthorID, &post.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByID fetches a post with its author's username.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Post, error) {
	var post Post
	err := r.pool.QueryRow(ctx,
		`SELECT p.id, p.title, p.body, p.author_id, u.username, p.created_at
		 FROM posts p JOIN users u ON u.id = p.author_id
		 WHERE p.id = $1`, id,
	).Scan(&post.ID, &post.Title, &post.Body, &post.AuthorID, &post.AuthorName, &post.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// List returns posts ordered by recency, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Post, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.title, p.body, p.author_id, u.username, p.created_at
		 FROM posts p JOIN users u ON u.id = p.author_id
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Post
	for rows.Next() {
		var post Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Body, &post.AuthorID, &post.AuthorName, &post.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Count returns the total number of posts.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Update rewrites title and body.
func (r *Repository) Update(ctx context.Context, id int64, title, body string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE posts SET title = $2, body = $3 WHERE id = $1`, id, title, body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a post.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
