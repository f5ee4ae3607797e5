package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/inkwell-blog/inkwell/internal/shared"
	"github.com/inkwell-blog/inkwell/internal/view"
	"github.com/inkwell-blog/inkwell/jobs"
)

// TaskEnqueuer queues background tasks. Satisfied by *asynq.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Handler wires HTTP endpoints for registration and login flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	tasks          TaskEnqueuer
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance. tasks may be nil; registration
// then skips the welcome email.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager, tasks TaskEnqueuer) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		tasks:          tasks,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/register", h.showRegister)
	r.Post("/register", h.handleRegister)
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/logout", h.handleLogout)
}

type registerForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type loginForm struct {
	Username   string `validate:"required"`
	Password   string `validate:"required"`
	RememberMe bool
}

type authPageData struct {
	Username string
	Remember bool
	Errors   map[string]string
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	if PrincipalFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "pages/register.html", "Register", authPageData{Errors: map[string]string{}})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if PrincipalFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := registerForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				formErrors[fieldErr.Field()] = "This field is required."
			}
		}
	}

	if len(formErrors) == 0 {
		user, err := h.service.Register(r.Context(), form.Username, form.Password)
		switch {
		case errors.Is(err, shared.ErrDuplicateUsername):
			formErrors["Username"] = "Username already exists. Please use a different username."
		case err != nil:
			h.logger.Error("register user", slog.Any("error", err))
			formErrors["general"] = "Registration failed. Please try again."
		default:
			h.enqueueWelcome(user)
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Registration successful!"})
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
	}

	h.render(w, r, "pages/register.html", "Register", authPageData{Username: form.Username, Errors: formErrors})
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if PrincipalFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "pages/login.html", "Sign In", authPageData{Errors: map[string]string{}})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if PrincipalFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Username:   r.PostFormValue("username"),
		Password:   r.PostFormValue("password"),
		RememberMe: r.PostFormValue("remember_me") != "",
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				formErrors[fieldErr.Field()] = "This field is required."
			}
		}
	}

	if len(formErrors) == 0 {
		user, err := h.service.Authenticate(r.Context(), form.Username, form.Password)
		if err != nil {
			// One generic message regardless of which factor failed.
			if sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Invalid username or password"})
			}
		} else {
			if sess != nil {
				sess.SetUser(strconv.FormatInt(user.ID, 10))
				sess.SetRemember(form.RememberMe)
				expiresAt := time.Now().Add(h.sessionManager.Lifetime(sess))
				if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
					h.logger.Warn("register session", slog.Any("error", err))
				}
			} else {
				h.logger.Error("session missing during login")
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}

	h.render(w, r, "pages/login.html", "Sign In", authPageData{Username: form.Username, Remember: form.RememberMe, Errors: formErrors})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) enqueueWelcome(user *User) {
	if h.tasks == nil || user == nil {
		return
	}
	task, err := jobs.NewWelcomeEmailTask(jobs.WelcomeEmailPayload{Username: user.Username})
	if err != nil {
		h.logger.Warn("build welcome task", slog.Any("error", err))
		return
	}
	if _, err := h.tasks.Enqueue(task, asynq.Queue(jobs.QueueDefault)); err != nil {
		h.logger.Warn("enqueue welcome task", slog.Any("error", err))
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data authPageData) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render auth page", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleRegisterForTest exposes the POST handler for tests.
func (h *Handler) HandleRegisterForTest(w http.ResponseWriter, r *http.Request) {
	h.handleRegister(w, r)
}
