package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-blog/inkwell/internal/auth"
	"github.com/inkwell-blog/inkwell/internal/shared"
	"github.com/inkwell-blog/inkwell/internal/view"
)

// Handler manages the admin moderation endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	guard     auth.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, guard auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, sessions: sessions, guard: guard}
}

// MountRoutes registers moderation routes. Every route is admin gated; a
// non-admin is bounced to the index without explanation.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAdmin)
		r.Get("/admin", h.adminPanel)
		r.Get("/block_user/{id}", h.blockUser)
		r.Get("/unblock_user/{id}", h.unblockUser)
		r.Get("/delete_user/{id}", h.deleteUser)
		r.Post("/reset_password/{id}", h.resetPassword)
	})
}

func (h *Handler) adminPanel(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/admin.html", "Admin", map[string]any{"Users": all})
}

func (h *Handler) blockUser(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "block user", h.service.Block, "User %s has been blocked.")
}

func (h *Handler) unblockUser(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "unblock user", h.service.Unblock, "User %s has been unblocked.")
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "delete user", h.service.DeleteUser, "User %s has been deleted.")
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "reset password", h.service.ResetPassword, "Password for %s has been reset.")
}

type mutation func(ctx context.Context, actor *auth.User, userID int64) (string, error)

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op string, fn mutation, format string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	actor := auth.PrincipalFromContext(r.Context())
	username, err := fn(r.Context(), actor, id)
	switch {
	case err == nil:
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: fmt.Sprintf(format, username)})
		}
	case errors.Is(err, shared.ErrNotFound):
		// Missing targets are skipped without comment.
	default:
		h.logger.Error(op, slog.Int64("user_id", id), slog.Any("error", err))
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "The action could not be completed."})
		}
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: title, CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
	if actor := auth.PrincipalFromContext(r.Context()); actor != nil {
		viewData.Username = actor.Username
		viewData.IsAdmin = actor.IsAdmin
	}
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}
