package posts

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/inkwell-blog/inkwell/internal/auth"
	"github.com/inkwell-blog/inkwell/internal/shared"
)

// Service handles post business logic and ownership rules.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new post owned by the actor.
func (s *Service) Create(ctx context.Context, actor *auth.User, title, body string) (*Post, error) {
	if actor == nil {
		return nil, shared.ErrPermissionDenied
	}
	if err := validate(title, body); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, actor.ID, title, body)
}

// GetByID fetches a single post.
func (s *Service) GetByID(ctx context.Context, id int64) (*Post, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPage returns one page of posts, newest first. Pages are 1-indexed; a
// page past the end yields an empty slice with neither next nor prev.
func (s *Service) ListPage(ctx context.Context, page int) ([]Post, shared.Pagination, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	paging := shared.NewPagination(page, PerPage, total)
	if paging.Page > paging.TotalPages {
		return nil, paging, nil
	}
	items, err := s.repo.List(ctx, paging.PerPage, paging.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, paging, nil
}

// Update rewrites a post's title and body. Only the author or an admin may
// mutate it.
func (s *Service) Update(ctx context.Context, actor *auth.User, id int64, title, body string) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanModify(actor, post) {
		return shared.ErrPermissionDenied
	}
	if err := validate(title, body); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, title, body)
}

// Delete removes a post under the same ownership rules as Update.
func (s *Service) Delete(ctx context.Context, actor *auth.User, id int64) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanModify(actor, post) {
		return shared.ErrPermissionDenied
	}
	return s.repo.Delete(ctx, id)
}

// CanModify reports whether actor may edit or delete the post: the author
// and admins only.
func CanModify(actor *auth.User, post *Post) bool {
	if actor == nil || post == nil {
		return false
	}
	return actor.IsAdmin || post.AuthorID == actor.ID
}

func validate(title, body string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required: %w", shared.ErrValidation)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("title exceeds %d characters: %w", MaxTitleLength, shared.ErrValidation)
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("body is required: %w", shared.ErrValidation)
	}
	return nil
}
