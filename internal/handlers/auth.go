package handlers

import (
	"net/http"
	"time"

	"github.com/findosh/slideomni/internal/middleware"
	apierrors "github.com/findosh/slideomni/internal/pkg/errors"
	"github.com/findosh/slideomni/internal/pkg/response"
	"github.com/findosh/slideomni/internal/services/auth"
)

type sessionResponse struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
	User    any       `json:"user"`
}

// Register handles POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterInput
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.authService.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.setSession(w, result)
	response.Created(w, sessionResponse{Token: result.Token, Expires: result.Expires, User: result.User})
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginInput
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.setSession(w, result)
	response.OK(w, sessionResponse{Token: result.Token, Expires: result.Expires, User: result.User})
}

// Logout clears the session cookie. Tokens stay valid until they expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	response.OK(w, map[string]bool{"ok": true})
}

// Me handles GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	user, err := h.authService.Me(r.Context(), claims)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	// Counters reflect a lapsed monthly reset
	if c, err := h.ledger.Balance(r.Context(), user.Username); err == nil {
		user.Omnitokens, user.Omnicoins = c.Omnitokens, c.Omnicoins
	}
	response.OK(w, user)
}

func (h *Handler) setSession(w http.ResponseWriter, result *auth.LoginResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.Expires,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func requireClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		response.Error(w, apierrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

func claimsUsername(r *http.Request) string {
	if c := middleware.ClaimsFromContext(r.Context()); c != nil {
		return c.Username
	}
	return ""
}
