package handlers

import (
	"net/http"

	"github.com/findosh/slideomni/internal/middleware"
	"github.com/findosh/slideomni/internal/pkg/response"
	"github.com/findosh/slideomni/internal/services/generation"
	"github.com/findosh/slideomni/internal/templates"
)

type layoutInfo struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Category templates.Category `json:"category"`
}

type templateInfo struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Theme       templates.Theme `json:"theme"`
	LayoutCount int             `json:"layoutCount"`
	Layouts     []layoutInfo    `json:"layouts"`
}

// Templates lists the compiled-in template catalog
func (h *Handler) Templates(w http.ResponseWriter, r *http.Request) {
	all := templates.All()
	out := make([]templateInfo, 0, len(all))
	for _, t := range all {
		info := templateInfo{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Theme:       t.Theme,
			LayoutCount: len(t.Layouts),
		}
		for _, l := range t.Layouts {
			info.Layouts = append(info.Layouts, layoutInfo{ID: l.ID, Name: l.Name, Category: l.Category})
		}
		out = append(out, info)
	}
	response.OK(w, map[string]any{"templates": out})
}

// Generate handles POST /api/generate-with-template
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	// Validation happens inside the pipeline, after authentication
	var req generation.Request
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.orchestrator.Generate(r.Context(), middleware.TokenFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, res)
}

// GenerateContent handles POST /api/generate-content
func (h *Handler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	var req generation.ContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.orchestrator.GenerateContent(r.Context(), middleware.TokenFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, res)
}

// GenerateFromStructure handles POST /api/generate-slides/from-structure
func (h *Handler) GenerateFromStructure(w http.ResponseWriter, r *http.Request) {
	var req generation.ContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.orchestrator.GenerateFromStructure(r.Context(), middleware.TokenFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, res)
}
