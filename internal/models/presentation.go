package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SlideContent is one structured slide produced by the content generator
type SlideContent struct {
	Title   string   `json:"title" validate:"notblank"`
	Content []string `json:"content"`
	Notes   string   `json:"notes,omitempty"`
}

// HasContent reports whether the slide carries bullet content
func (s SlideContent) HasContent() bool {
	return len(s.Content) > 0
}

// Presentation is a stored, rendered slide deck
type Presentation struct {
	ID          string          `json:"id"`
	OwnerID     uuid.UUID       `json:"userId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	HTML        string          `json:"html"`
	SlideCount  int             `json:"slideCount"`
	Slides      json.RawMessage `json:"slides,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// IsCanonical reports whether the record already holds a combined document
func (p *Presentation) IsCanonical() bool {
	return p.HTML != "" && p.SlideCount > 0
}

// Summary returns the list view of the record
func (p *Presentation) Summary() PresentationSummary {
	return PresentationSummary{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		SlideCount:  p.SlideCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// PresentationSummary is the list view of a presentation
type PresentationSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SlideCount  int       `json:"slideCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LegacySlide is the per-slide fragment shape written by older versions.
// Either HTMLContent or HTML carries the markup.
type LegacySlide struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	HTMLContent string `json:"htmlContent,omitempty"`
	HTML        string `json:"html,omitempty"`
	Order       int    `json:"order,omitempty"`
}

// Markup returns whichever fragment field is set
func (s LegacySlide) Markup() string {
	if s.HTMLContent != "" {
		return s.HTMLContent
	}
	return s.HTML
}
