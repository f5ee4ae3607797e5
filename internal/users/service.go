package users

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/inkwell-blog/inkwell/internal/auth"
	"github.com/inkwell-blog/inkwell/internal/shared"
)

// CredentialStore is the slice of auth.Service the moderation flow needs.
type CredentialStore interface {
	ResetPassword(ctx context.Context, userID int64, newPassword string) error
}

// AuditRecorder persists moderation actions. Satisfied by *shared.AuditLogger.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles admin moderation of user accounts. Authorization happens
// at the routing layer; the service only needs the actor for the audit trail.
type Service struct {
	repo          RepositoryPort
	credentials   CredentialStore
	audit         AuditRecorder
	logger        *slog.Logger
	resetPassword string
}

// NewService builds Service instance. resetPassword is the value accounts are
// reset to; it intentionally mirrors the legacy fixed default unless
// configured otherwise.
func NewService(repo RepositoryPort, credentials CredentialStore, audit AuditRecorder, logger *slog.Logger, resetPassword string) *Service {
	return &Service{
		repo:          repo,
		credentials:   credentials,
		audit:         audit,
		logger:        logger,
		resetPassword: resetPassword,
	}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// Block deactivates the account, refusing future logins. A missing user is
// reported as shared.ErrNotFound; callers treat that as a silent no-op.
func (s *Service) Block(ctx context.Context, actor *auth.User, userID int64) (string, error) {
	username, err := s.repo.SetActive(ctx, userID, false)
	if err != nil {
		return "", err
	}
	s.record(ctx, actor, "user.block", userID, nil)
	return username, nil
}

// Unblock reactivates the account.
func (s *Service) Unblock(ctx context.Context, actor *auth.User, userID int64) (string, error) {
	username, err := s.repo.SetActive(ctx, userID, true)
	if err != nil {
		return "", err
	}
	s.record(ctx, actor, "user.unblock", userID, nil)
	return username, nil
}

// DeleteUser removes the account and cascades to its posts and sessions.
func (s *Service) DeleteUser(ctx context.Context, actor *auth.User, userID int64) (string, error) {
	username, err := s.repo.DeleteCascade(ctx, userID)
	if err != nil {
		return "", err
	}
	s.record(ctx, actor, "user.delete", userID, map[string]any{"username": username})
	return username, nil
}

// ResetPassword overwrites the account's password with the configured
// default.
func (s *Service) ResetPassword(ctx context.Context, actor *auth.User, userID int64) (string, error) {
	username, err := s.repo.UsernameByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := s.credentials.ResetPassword(ctx, userID, s.resetPassword); err != nil {
		return "", err
	}
	s.record(ctx, actor, "user.reset_password", userID, nil)
	return username, nil
}

func (s *Service) record(ctx context.Context, actor *auth.User, action string, userID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	log := shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     meta,
	}
	if err := s.audit.Record(ctx, log); err != nil && s.logger != nil {
		s.logger.Warn("record moderation audit", slog.String("action", action), slog.Any("error", err))
	}
}
