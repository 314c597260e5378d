// Package handlers provides HTTP request handlers
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/findosh/slideomni/internal/config"
	"github.com/findosh/slideomni/internal/logging"
	"github.com/findosh/slideomni/internal/middleware"
	apierrors "github.com/findosh/slideomni/internal/pkg/errors"
	"github.com/findosh/slideomni/internal/pkg/response"
	"github.com/findosh/slideomni/internal/services/auth"
	"github.com/findosh/slideomni/internal/services/credits"
	"github.com/findosh/slideomni/internal/services/generation"
	"github.com/findosh/slideomni/internal/services/llm"
	"github.com/findosh/slideomni/internal/services/presentations"
	"github.com/findosh/slideomni/internal/storage"
	"github.com/findosh/slideomni/internal/templates"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; supplied slide lists are the largest
const maxBodyBytes = 1 << 20

// Handler contains all HTTP handlers and dependencies
type Handler struct {
	cfg           *config.Config
	authService   *auth.Service
	ledger        *credits.Ledger
	users         storage.Users
	resolver      *llm.Resolver
	audit         *llm.AuditLogger
	orchestrator  *generation.Orchestrator
	presentations *presentations.Store
	validate      *validator.Validate
	logger        *zap.Logger
}

// Deps lists the services a Handler needs
type Deps struct {
	Config        *config.Config
	Auth          *auth.Service
	Ledger        *credits.Ledger
	Users         storage.Users
	Resolver      *llm.Resolver
	Audit         *llm.AuditLogger
	Orchestrator  *generation.Orchestrator
	Presentations *presentations.Store
	Logger        *zap.Logger
}

// New creates a new handler with all dependencies
func New(d Deps) *Handler {
	return &Handler{
		cfg:           d.Config,
		authService:   d.Auth,
		ledger:        d.Ledger,
		users:         d.Users,
		resolver:      d.Resolver,
		audit:         d.Audit,
		orchestrator:  d.Orchestrator,
		presentations: d.Presentations,
		validate:      validator.New(),
		logger:        logging.OrNop(d.Logger).Named("handlers"),
	}
}

// Routes mounts every endpoint on a chi router
func (h *Handler) Routes() chi.Router {
	authMW := middleware.NewAuth(h.authService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Recover(h.logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(h.cfg.AllowedOrigins))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/templates", h.Templates)
		r.Get("/generate-with-template", h.Templates)
		r.Get("/presentations/{id}", h.GetPresentation)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.With(authMW.RequireAuth).Get("/me", h.Me)

			r.Group(func(r chi.Router) {
				r.Use(authMW.RequireAuth, authMW.RequireSudo)
				r.Get("/admin/credits", h.ListUsers)
				r.Post("/admin/credits", h.ResetCredits)
				r.Get("/admin/permissions", h.ListUsers)
				r.Post("/admin/permissions", h.UpdatePermissions)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Post("/generate-with-template", h.Generate)
			r.Post("/generate-content", h.GenerateContent)
			r.Post("/generate-slides/from-structure", h.GenerateFromStructure)
			r.Get("/presentations", h.ListPresentations)
			r.Post("/corrections/submit", h.SubmitCorrection)
		})

		r.Route("/admin/providers", func(r chi.Router) {
			r.Use(authMW.RequireAuth, authMW.RequireSudo)
			r.Get("/", h.ListProviders)
			r.Put("/azure", h.PutAzure)
			r.Put("/openrouter", h.PutOpenRouter)
			r.Post("/active", h.SetActiveProvider)
			r.Get("/usage", h.ProviderUsage)
		})
	})

	return r
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// decodeJSON reads a bounded JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierrors.ErrBadRequest.WithMessage("Invalid request body")
	}
	return nil
}

// decode reads a JSON body into v and validates its struct tags
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := decodeJSON(w, r, v); err != nil {
		return err
	}
	if err := h.validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError turns validator output into a field map
func validationError(err error) *apierrors.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.ErrBadRequest.WithMessage(err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Namespace()
		if i := strings.IndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		fields[lowerFirst(name)] = describe(fe)
	}
	return apierrors.NewValidationErrors(fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email"
	case "notblank":
		return "must not be blank"
	case "eqslides":
		return "must match the number of supplied slides (" + fe.Param() + ")"
	case "range":
		return "must be between " + strings.Replace(fe.Param(), "-", " and ", 1)
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// fail maps a service error onto the API envelope
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		apiErr    *apierrors.APIError
		genErr    *generation.Error
		cfgErr    *llm.ConfigError
		renderErr *templates.RenderError
	)
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &genErr):
		apiErr = generationError(genErr)
	case errors.As(err, &cfgErr):
		apiErr = apierrors.ErrBadConfig.WithDetails(map[string]any{"provider": cfgErr.Provider, "missing": cfgErr.Missing})
	case errors.As(err, &renderErr):
		apiErr = apierrors.ErrRenderFailed
	case errors.Is(err, llm.ErrNoActiveProvider):
		apiErr = apierrors.ErrNoProvider
	case errors.Is(err, auth.ErrInvalidCredentials):
		apiErr = apierrors.ErrUnauthorized.WithMessage("Invalid username or password")
	case errors.Is(err, auth.ErrUserExists), errors.Is(err, storage.ErrUserExists):
		apiErr = apierrors.ErrConflict.WithMessage("Username already registered")
	case errors.Is(err, credits.ErrInsufficientCredit):
		apiErr = apierrors.ErrInsufficientCredit
	case errors.Is(err, credits.ErrUserNotFound):
		apiErr = apierrors.NewNotFoundError("User")
	case errors.Is(err, storage.ErrNotFound):
		apiErr = apierrors.ErrNotFound
	default:
		apiErr = apierrors.ErrInternal
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	response.Error(w, apiErr)
}

func generationError(e *generation.Error) *apierrors.APIError {
	switch e.Kind {
	case generation.KindUnauthenticated:
		return apierrors.ErrUnauthorized
	case generation.KindInvalidRequest:
		if errors.Is(e.Err, generation.ErrUnknownTemplate) {
			return apierrors.NewValidationError("templateId", "unknown template")
		}
		return validationError(e.Err)
	case generation.KindInsufficientCredit:
		return apierrors.ErrInsufficientCredit
	case generation.KindNoProvider:
		return apierrors.ErrNoProvider
	case generation.KindBadConfig:
		var cfgErr *llm.ConfigError
		if errors.As(e.Err, &cfgErr) {
			return apierrors.ErrBadConfig.WithDetails(map[string]any{"provider": cfgErr.Provider, "missing": cfgErr.Missing})
		}
		return apierrors.ErrBadConfig
	case generation.KindGenerationFailed:
		return apierrors.ErrGenerationFailed
	case generation.KindRenderFailed:
		return apierrors.ErrRenderFailed
	}
	return apierrors.ErrInternal
}
