package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell-blog/inkwell/internal/shared"
)

type stubRepository struct {
	users    map[string]*User
	nextID   int64
	sessions map[string]int64
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		users:    make(map[string]*User),
		nextID:   1,
		sessions: make(map[string]int64),
	}
}

func (s *stubRepository) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	if _, exists := s.users[username]; exists {
		return nil, shared.ErrDuplicateUsername
	}
	user := &User{
		ID:           s.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	s.users[username] = user
	s.nextID++
	return user, nil
}

func (s *stubRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (s *stubRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	for _, user := range s.users {
		if user.ID == id {
			user.PasswordHash = passwordHash
			return nil
		}
	}
	return shared.ErrNotFound
}

func (s *stubRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.sessions[id] = userID
	return nil
}

func (s *stubRepository) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

var _ Repository = (*stubRepository)(nil)

func TestRegisterHashesPassword(t *testing.T) {
	repo := newStubRepository()
	svc := NewService(repo)

	user, err := svc.Register(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
	assert.False(t, user.IsAdmin)
	assert.True(t, user.IsActive)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newStubRepository()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "alice", "other")
	require.ErrorIs(t, err, shared.ErrDuplicateUsername)
}

func TestAuthenticate(t *testing.T) {
	repo := newStubRepository()
	svc := NewService(repo)
	registered, err := svc.Register(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate(context.Background(), "alice", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "nobody", "s3cret")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "alice", "wrong")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("blocked account", func(t *testing.T) {
		repo.users["alice"].IsActive = false
		defer func() { repo.users["alice"].IsActive = true }()
		_, err := svc.Authenticate(context.Background(), "alice", "s3cret")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})
}

func TestResetPassword(t *testing.T) {
	repo := newStubRepository()
	svc := NewService(repo)
	user, err := svc.Register(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(context.Background(), user.ID, "default123"))

	_, err = svc.Authenticate(context.Background(), "alice", "s3cret")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Authenticate(context.Background(), "alice", "default123")
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), 999, "default123")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSessionBookkeeping(t *testing.T) {
	repo := newStubRepository()
	svc := NewService(repo)
	user, err := svc.Register(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.RegisterSession(context.Background(), "sess-1", user.ID, time.Now().Add(time.Hour), "127.0.0.1", "test-agent"))
	assert.Equal(t, user.ID, repo.sessions["sess-1"])

	require.NoError(t, svc.RemoveSession(context.Background(), "sess-1"))
	assert.NotContains(t, repo.sessions, "sess-1")
}
