package handlers

import (
	"net/http"

	apierrors "github.com/findosh/slideomni/internal/pkg/errors"
	"github.com/findosh/slideomni/internal/pkg/response"
	"github.com/go-chi/chi/v5"
)

// GetPresentation handles GET /api/presentations/{id}. Records are
// link-shareable, so no session is required.
func (h *Handler) GetPresentation(w http.ResponseWriter, r *http.Request) {
	p, err := h.presentations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, p)
}

// ListPresentations handles GET /api/presentations
func (h *Handler) ListPresentations(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	ownerID, err := claims.UserID()
	if err != nil {
		h.fail(w, r, apierrors.ErrUnauthorized)
		return
	}

	list, err := h.presentations.List(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, map[string]any{"presentations": list})
}
