package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-blog/inkwell/internal/shared"
)

func newSessionRequest(t *testing.T, userID string) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sm := shared.NewSessionManager(client, "inkwell_session", "test-secret", time.Hour, 30*24*time.Hour, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	if userID != "" {
		sess.SetUser(userID)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestWithPrincipalResolvesActiveUser(t *testing.T) {
	repo := newStubRepository()
	svc := NewService(repo)
	user, err := svc.Register(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	mw := Middleware{Service: svc}
	var principal *User
	handler := mw.WithPrincipal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = PrincipalFromContext(r.Context())
	}))

	req := newSessionRequest(t, "1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, principal)
	assert.Equal(t, user.ID, principal.ID)
	assert.Equal(t, "alice", principal.Username)
}

func TestWithPrincipalBlockedUserBecomesAnonymous(t *testing.T) {
	repo := newStubRepository()
	svc := NewService(repo)
	_, err := svc.Register(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	repo.users["alice"].IsActive = false

	mw := Middleware{Service: svc}
	var principal *User
	var sessionUser string
	handler := mw.WithPrincipal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = PrincipalFromContext(r.Context())
		sessionUser = shared.SessionFromContext(r.Context()).User()
	}))

	req := newSessionRequest(t, "1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Nil(t, principal, "blocked account must resolve to anonymous")
	assert.Empty(t, sessionUser, "stale user id must be cleared from the session")
}

func TestWithPrincipalMissingUser(t *testing.T) {
	mw := Middleware{Service: NewService(newStubRepository())}
	var principal *User
	handler := mw.WithPrincipal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = PrincipalFromContext(r.Context())
	}))

	req := newSessionRequest(t, "42")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, principal)
}

func TestRequireAuthenticated(t *testing.T) {
	mw := Middleware{}
	handler := mw.RequireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous redirected to login", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/create_post", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("authenticated passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/create_post", nil)
		req = req.WithContext(ContextWithPrincipal(req.Context(), &User{ID: 1, Username: "alice", IsActive: true}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	mw := Middleware{}
	handler := mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous redirected to login", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("regular member sent home", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req = req.WithContext(ContextWithPrincipal(req.Context(), &User{ID: 1, Username: "alice", IsActive: true}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("admin passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req = req.WithContext(ContextWithPrincipal(req.Context(), &User{ID: 3, Username: "root", IsAdmin: true, IsActive: true}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
