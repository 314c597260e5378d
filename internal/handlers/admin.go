package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/findosh/slideomni/internal/models"
	apierrors "github.com/findosh/slideomni/internal/pkg/errors"
	"github.com/findosh/slideomni/internal/pkg/response"
	"github.com/findosh/slideomni/internal/services/llm"
	"go.uber.org/zap"
)

type usernameRequest struct {
	Username string `json:"username" validate:"required"`
}

type permissionsRequest struct {
	Username    string                   `json:"username" validate:"required"`
	Permissions *models.PermissionsPatch `json:"permissions" validate:"required"`
}

// ListUsers handles GET /api/auth/admin/credits and /api/auth/admin/permissions
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	response.OK(w, map[string]any{"users": users})
}

// ResetCredits handles POST /api/auth/admin/credits
func (h *Handler) ResetCredits(w http.ResponseWriter, r *http.Request) {
	var req usernameRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := h.ledger.Reset(r.Context(), req.Username)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, map[string]any{"ok": true, "username": req.Username, "credits": c})
}

// UpdatePermissions handles POST /api/auth/admin/permissions. The patch is
// merged into the stored set; unspecified keys are kept.
func (h *Handler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	var req permissionsRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	perms, err := h.users.UpdatePermissions(r.Context(), req.Username, func(cur models.Permissions) models.Permissions {
		return cur.Apply(*req.Permissions)
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("permissions updated",
		zap.String("username", req.Username),
		zap.String("by", claimsUsername(r)),
		zap.Bool("sudo", perms.Sudo),
	)
	response.OK(w, map[string]any{"ok": true, "username": req.Username, "permissions": perms})
}

// ListProviders handles GET /api/admin/providers
func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	records, err := h.resolver.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	views := make([]models.ProviderView, 0, len(records))
	for _, rec := range records {
		views = append(views, rec.View())
	}
	response.OK(w, map[string]any{"providers": views})
}

// PutAzure handles PUT /api/admin/providers/azure
func (h *Handler) PutAzure(w http.ResponseWriter, r *http.Request) {
	var cfg models.AzureConfig
	if err := decodeJSON(w, r, &cfg); err != nil {
		h.fail(w, r, err)
		return
	}

	rec, err := h.resolver.UpsertAzure(r.Context(), cfg)
	if err != nil {
		h.failProviderConfig(w, r, err)
		return
	}
	response.OK(w, rec.View())
}

// PutOpenRouter handles PUT /api/admin/providers/openrouter
func (h *Handler) PutOpenRouter(w http.ResponseWriter, r *http.Request) {
	var cfg models.OpenRouterConfig
	if err := decodeJSON(w, r, &cfg); err != nil {
		h.fail(w, r, err)
		return
	}

	rec, err := h.resolver.UpsertOpenRouter(r.Context(), cfg)
	if err != nil {
		h.failProviderConfig(w, r, err)
		return
	}
	response.OK(w, rec.View())
}

type activeProviderRequest struct {
	Provider string `json:"provider" validate:"required,oneof=azure openrouter"`
}

// SetActiveProvider handles POST /api/admin/providers/active
func (h *Handler) SetActiveProvider(w http.ResponseWriter, r *http.Request) {
	var req activeProviderRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	kind, err := models.ParseProviderKind(req.Provider)
	if err != nil {
		h.fail(w, r, apierrors.NewValidationError("provider", err.Error()))
		return
	}

	if err := h.resolver.SetActive(r.Context(), kind); err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, map[string]any{"ok": true, "active": kind})
}

// ProviderUsage handles GET /api/admin/providers/usage?since=24h&limit=50
func (h *Handler) ProviderUsage(w http.ResponseWriter, r *http.Request) {
	window := 24 * time.Hour
	if s := r.URL.Query().Get("since"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			h.fail(w, r, apierrors.NewValidationError("since", "must be a positive duration"))
			return
		}
		window = d
	}
	limit := queryInt(r, "limit", 50)

	response.OK(w, map[string]any{
		"stats":   h.audit.Stats(time.Now().Add(-window)),
		"entries": h.audit.Entries(limit),
	})
}

func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func missingFields(err error) []string {
	var cfgErr *llm.ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Missing
	}
	return nil
}

// failProviderConfig reports missing fields as a validation failure
func (h *Handler) failProviderConfig(w http.ResponseWriter, r *http.Request, err error) {
	if missing := missingFields(err); missing != nil {
		fields := make(map[string]string, len(missing))
		for _, f := range missing {
			fields[f] = "is required"
		}
		h.fail(w, r, apierrors.NewValidationErrors(fields))
		return
	}
	h.fail(w, r, err)
}
