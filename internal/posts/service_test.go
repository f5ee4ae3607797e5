package posts

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-blog/inkwell/internal/auth"
	"github.com/inkwell-blog/inkwell/internal/shared"
)

type mockRepository struct {
	posts  map[int64]*Post
	nextID int64
	clock  time.Time
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		posts:  make(map[int64]*Post),
		nextID: 1,
		clock:  time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *mockRepository) Create(ctx context.Context, authorID int64, title, body string) (*Post, error) {
	m.clock = m.clock.Add(time.Minute)
	post := &Post{
		ID:        m.nextID,
		Title:     title,
		Body:      body,
		AuthorID:  authorID,
		CreatedAt: m.clock,
	}
	m.posts[post.ID] = post
	m.nextID++
	return post, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Post, error) {
	post, ok := m.posts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *post
	return &copied, nil
}

func (m *mockRepository) List(ctx context.Context, limit, offset int) ([]Post, error) {
	all := make([]Post, 0, len(m.posts))
	for _, post := range m.posts {
		all = append(all, *post)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockRepository) Count(ctx context.Context) (int, error) {
	return len(m.posts), nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, title, body string) error {
	post, ok := m.posts[id]
	if !ok {
		return shared.ErrNotFound
	}
	post.Title = title
	post.Body = body
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.posts[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

var (
	alice = &auth.User{ID: 1, Username: "alice", IsActive: true}
	bob   = &auth.User{ID: 2, Username: "bob", IsActive: true}
	root  = &auth.User{ID: 3, Username: "root", IsAdmin: true, IsActive: true}
)

func TestCreateRejectsInvalidInput(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	cases := []struct {
		name  string
		title string
		body  string
	}{
		{"empty title", "", "World"},
		{"blank title", "   ", "World"},
		{"empty body", "Hello", ""},
		{"title too long", strings.Repeat("x", MaxTitleLength+1), "World"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), alice, tc.title, tc.body)
			require.ErrorIs(t, err, shared.ErrValidation)
			assert.Empty(t, repo.posts, "no post may be persisted on validation failure")
		})
	}
}

func TestCreateTitleLengthCountsRunes(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), alice, strings.Repeat("é", MaxTitleLength), "Body")
	require.NoError(t, err, "a 100 rune multibyte title is within the limit")

	_, err = svc.Create(context.Background(), alice, strings.Repeat("é", MaxTitleLength+1), "Body")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateAssignsAuthor(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	post, err := svc.Create(context.Background(), alice, "Hello", "World")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, post.AuthorID)
	assert.Equal(t, "Hello", post.Title)
}

func TestCreateRequiresPrincipal(t *testing.T) {
	svc := NewService(newMockRepository())
	_, err := svc.Create(context.Background(), nil, "Hello", "World")
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestListPageNewestFirst(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	for i := 0; i < 25; i++ {
		_, err := svc.Create(context.Background(), alice, "Post", "Body")
		require.NoError(t, err)
	}

	items, paging, err := svc.ListPage(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, PerPage)
	assert.True(t, paging.HasNext)
	assert.False(t, paging.HasPrev)
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].CreatedAt.After(items[i-1].CreatedAt), "page must be ordered newest first")
	}
	assert.Equal(t, int64(25), items[0].ID, "newest post leads the first page")

	last, paging, err := svc.ListPage(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, last, 5)
	assert.False(t, paging.HasNext)
	assert.True(t, paging.HasPrev)
}

func TestListPageOutOfRange(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	for i := 0; i < 12; i++ {
		_, err := svc.Create(context.Background(), alice, "Post", "Body")
		require.NoError(t, err)
	}

	items, paging, err := svc.ListPage(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.False(t, paging.HasNext)
	assert.False(t, paging.HasPrev)
}

func TestUpdateOwnershipRules(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	post, err := svc.Create(context.Background(), alice, "Hello", "World")
	require.NoError(t, err)

	err = svc.Update(context.Background(), bob, post.ID, "Hijacked", "Content")
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
	unchanged, _ := repo.GetByID(context.Background(), post.ID)
	assert.Equal(t, "Hello", unchanged.Title)

	require.NoError(t, svc.Update(context.Background(), alice, post.ID, "Edited by owner", "Content"))
	require.NoError(t, svc.Update(context.Background(), root, post.ID, "Edited by admin", "Content"))

	err = svc.Update(context.Background(), alice, 999, "Missing", "Content")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateRejectsInvalidInput(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	post, err := svc.Create(context.Background(), alice, "Hello", "World")
	require.NoError(t, err)

	err = svc.Update(context.Background(), alice, post.ID, "", "Content")
	require.ErrorIs(t, err, shared.ErrValidation)
	unchanged, _ := repo.GetByID(context.Background(), post.ID)
	assert.Equal(t, "Hello", unchanged.Title)
}

func TestDeleteOwnershipRules(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	mine, err := svc.Create(context.Background(), alice, "Mine", "Body")
	require.NoError(t, err)
	theirs, err := svc.Create(context.Background(), bob, "Theirs", "Body")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), bob, mine.ID)
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
	_, err = repo.GetByID(context.Background(), mine.ID)
	require.NoError(t, err, "denied delete must leave the post in place")

	require.NoError(t, svc.Delete(context.Background(), alice, mine.ID))
	require.NoError(t, svc.Delete(context.Background(), root, theirs.ID), "admin deletes regardless of ownership")

	err = svc.Delete(context.Background(), root, 999)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
