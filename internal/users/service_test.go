package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-blog/inkwell/internal/auth"
	"github.com/inkwell-blog/inkwell/internal/shared"
)

type stubRepo struct {
	users   map[int64]*User
	deleted []int64
}

func newStubRepo(users ...*User) *stubRepo {
	r := &stubRepo{users: make(map[int64]*User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubRepo) ListUsers(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubRepo) UsernameByID(ctx context.Context, id int64) (string, error) {
	u, ok := r.users[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	return u.Username, nil
}

func (r *stubRepo) SetActive(ctx context.Context, id int64, active bool) (string, error) {
	u, ok := r.users[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	u.IsActive = active
	return u.Username, nil
}

func (r *stubRepo) DeleteCascade(ctx context.Context, id int64) (string, error) {
	u, ok := r.users[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	delete(r.users, id)
	r.deleted = append(r.deleted, id)
	return u.Username, nil
}

type stubCredentials struct {
	resets map[int64]string
}

func (c *stubCredentials) ResetPassword(ctx context.Context, userID int64, newPassword string) error {
	if c.resets == nil {
		c.resets = make(map[int64]string)
	}
	c.resets[userID] = newPassword
	return nil
}

type stubAudit struct {
	logs []shared.AuditLog
}

func (a *stubAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

var admin = &auth.User{ID: 99, Username: "root", IsAdmin: true, IsActive: true}

func newModerationService(repo *stubRepo, creds *stubCredentials, audit *stubAudit) *Service {
	return NewService(repo, creds, audit, nil, "default123")
}

func TestBlockUnblock(t *testing.T) {
	repo := newStubRepo(&User{ID: 1, Username: "alice", IsActive: true})
	audit := &stubAudit{}
	svc := newModerationService(repo, &stubCredentials{}, audit)

	username, err := svc.Block(context.Background(), admin, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.False(t, repo.users[1].IsActive)

	username, err = svc.Unblock(context.Background(), admin, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.True(t, repo.users[1].IsActive)

	require.Len(t, audit.logs, 2)
	assert.Equal(t, "user.block", audit.logs[0].Action)
	assert.Equal(t, "user.unblock", audit.logs[1].Action)
	assert.Equal(t, admin.ID, audit.logs[0].ActorID)
}

func TestBlockMissingUser(t *testing.T) {
	audit := &stubAudit{}
	svc := newModerationService(newStubRepo(), &stubCredentials{}, audit)

	_, err := svc.Block(context.Background(), admin, 42)
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, audit.logs, "failed moderation must not leave an audit row")
}

func TestDeleteUser(t *testing.T) {
	repo := newStubRepo(&User{ID: 1, Username: "alice", IsActive: true})
	audit := &stubAudit{}
	svc := newModerationService(repo, &stubCredentials{}, audit)

	username, err := svc.DeleteUser(context.Background(), admin, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.Equal(t, []int64{1}, repo.deleted)
	assert.NotContains(t, repo.users, int64(1))

	require.Len(t, audit.logs, 1)
	assert.Equal(t, "user.delete", audit.logs[0].Action)
	assert.Equal(t, "alice", audit.logs[0].Meta["username"])

	_, err = svc.DeleteUser(context.Background(), admin, 1)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestResetPasswordUsesConfiguredDefault(t *testing.T) {
	repo := newStubRepo(&User{ID: 1, Username: "alice", IsActive: true})
	creds := &stubCredentials{}
	audit := &stubAudit{}
	svc := newModerationService(repo, creds, audit)

	username, err := svc.ResetPassword(context.Background(), admin, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.Equal(t, "default123", creds.resets[1])

	require.Len(t, audit.logs, 1)
	assert.Equal(t, "user.reset_password", audit.logs[0].Action)
}

func TestResetPasswordMissingUser(t *testing.T) {
	creds := &stubCredentials{}
	svc := newModerationService(newStubRepo(), creds, &stubAudit{})

	_, err := svc.ResetPassword(context.Background(), admin, 42)
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, creds.resets)
}
