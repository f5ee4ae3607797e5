package posts

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/inkwell-blog/inkwell/internal/auth"
	"github.com/inkwell-blog/inkwell/internal/shared"
	"github.com/inkwell-blog/inkwell/internal/view"
)

// Handler manages the post listing and CRUD endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	guard     auth.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, guard auth.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		sessions:  sessions,
		guard:     guard,
		validator: validator.New(),
	}
}

// MountRoutes registers post routes.
func (h *Handler) MountRoutes(r chi.Router) {
	// Public permalink; the listing and every mutation require a login.
	r.Get("/post/{id}", h.showPost)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuthenticated)
		r.Get("/", h.index)
		r.Get("/index", h.index)
		r.Get("/create_post", h.showCreate)
		r.Post("/create_post", h.handleCreate)
		r.Get("/edit_post/{id}", h.showEdit)
		r.Post("/edit_post/{id}", h.handleEdit)
		r.Post("/delete_post/{id}", h.handleDelete)
	})
}

type postForm struct {
	Title string `validate:"required,max=100"`
	Body  string `validate:"required"`
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	items, paging, err := h.service.ListPage(r.Context(), page)
	if err != nil {
		h.logger.Error("list posts", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	actor := auth.PrincipalFromContext(r.Context())
	type entry struct {
		Post
		CanModify bool
	}
	entries := make([]entry, len(items))
	for i, item := range items {
		entries[i] = entry{Post: item, CanModify: CanModify(actor, &item)}
	}
	h.render(w, r, "pages/index.html", "Home", map[string]any{
		"Posts":  entries,
		"Paging": paging,
	})
}

func (h *Handler) showPost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	post, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("load post", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	actor := auth.PrincipalFromContext(r.Context())
	h.render(w, r, "pages/post.html", post.Title, map[string]any{
		"Post":      post,
		"CanModify": CanModify(actor, post),
	})
}

func (h *Handler) showCreate(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/post_form.html", "Create Post", map[string]any{
		"Form":   postForm{},
		"Errors": map[string]string{},
		"Action": "/create_post",
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	form, formErrors, ok := h.parsePostForm(w, r)
	if !ok {
		return
	}
	if len(formErrors) == 0 {
		actor := auth.PrincipalFromContext(r.Context())
		if _, err := h.service.Create(r.Context(), actor, form.Title, form.Body); err != nil {
			if !errors.Is(err, shared.ErrValidation) {
				h.logger.Error("create post", slog.Any("error", err))
			}
			formErrors["general"] = "Could not save the post."
		} else {
			h.redirectWithFlash(w, r, "/", "success", "Your post has been created!")
			return
		}
	}
	h.render(w, r, "pages/post_form.html", "Create Post", map[string]any{
		"Form":   form,
		"Errors": formErrors,
		"Action": "/create_post",
	})
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	post, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("load post for edit", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	actor := auth.PrincipalFromContext(r.Context())
	if !CanModify(actor, post) {
		h.redirectWithFlash(w, r, "/", "error", "You do not have permission to edit this post.")
		return
	}
	h.render(w, r, "pages/post_form.html", "Edit Post", map[string]any{
		"Form":   postForm{Title: post.Title, Body: post.Body},
		"Errors": map[string]string{},
		"Action": "/edit_post/" + strconv.FormatInt(post.ID, 10),
	})
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	form, formErrors, parsed := h.parsePostForm(w, r)
	if !parsed {
		return
	}
	if len(formErrors) == 0 {
		actor := auth.PrincipalFromContext(r.Context())
		err := h.service.Update(r.Context(), actor, id, form.Title, form.Body)
		switch {
		case err == nil:
			h.redirectWithFlash(w, r, "/post/"+strconv.FormatInt(id, 10), "success", "Your post has been updated!")
			return
		case errors.Is(err, shared.ErrNotFound):
			http.NotFound(w, r)
			return
		case errors.Is(err, shared.ErrPermissionDenied):
			h.redirectWithFlash(w, r, "/", "error", "You do not have permission to edit this post.")
			return
		case errors.Is(err, shared.ErrValidation):
			formErrors["general"] = "Could not save the post."
		default:
			h.logger.Error("update post", slog.Any("error", err))
			formErrors["general"] = "Could not save the post."
		}
	}
	h.render(w, r, "pages/post_form.html", "Edit Post", map[string]any{
		"Form":   form,
		"Errors": formErrors,
		"Action": "/edit_post/" + strconv.FormatInt(id, 10),
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	actor := auth.PrincipalFromContext(r.Context())
	err := h.service.Delete(r.Context(), actor, id)
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, "/", "success", "Post deleted successfully.")
	case errors.Is(err, shared.ErrNotFound):
		h.redirectWithFlash(w, r, "/", "error", "Post not found.")
	case errors.Is(err, shared.ErrPermissionDenied):
		h.redirectWithFlash(w, r, "/", "error", "You do not have permission to delete this post.")
	default:
		h.logger.Error("delete post", slog.Any("error", err))
		h.redirectWithFlash(w, r, "/", "error", "Could not delete the post.")
	}
}

func (h *Handler) parsePostForm(w http.ResponseWriter, r *http.Request) (postForm, map[string]string, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return postForm{}, nil, false
	}
	form := postForm{
		Title: r.PostFormValue("title"),
		Body:  r.PostFormValue("body"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				switch {
				case fieldErr.Field() == "Title" && fieldErr.Tag() == "max":
					formErrors["Title"] = "Title must be at most 100 characters."
				default:
					formErrors[fieldErr.Field()] = "This field is required."
				}
			}
		}
	}
	return form, formErrors, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
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

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
