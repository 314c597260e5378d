package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/findosh/slideomni/internal/models"
	"github.com/google/uuid"
)

// PresentationRepository stores decks in the presentations table
type PresentationRepository struct {
	db *DB
}

// NewPresentationRepository creates a new presentation repository
func NewPresentationRepository(db *DB) *PresentationRepository {
	return &PresentationRepository{db: db}
}

var _ Presentations = (*PresentationRepository)(nil)

// Create inserts a new presentation
func (r *PresentationRepository) Create(ctx context.Context, p *models.Presentation) error {
	query := `
		INSERT INTO presentations (id, user_id, title, description, html, slide_count, slides, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.OwnerID.String(),
		p.Title,
		p.Description,
		p.HTML,
		p.SlideCount,
		nullableJSON(p.Slides),
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create presentation: %w", err)
	}
	return nil
}

// Get retrieves a presentation by ID
func (r *PresentationRepository) Get(ctx context.Context, id string) (*models.Presentation, error) {
	query := `
		SELECT id, user_id, title, description, html, slide_count, slides, created_at, updated_at
		FROM presentations WHERE id = ?
	`
	var (
		p      models.Presentation
		owner  string
		slides sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &owner, &p.Title, &p.Description, &p.HTML, &p.SlideCount, &slides, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get presentation: %w", err)
	}

	p.OwnerID, _ = uuid.Parse(owner)
	if slides.Valid && slides.String != "" {
		p.Slides = []byte(slides.String)
	}
	return &p, nil
}

// Update rewrites the rendered fields of an existing presentation
func (r *PresentationRepository) Update(ctx context.Context, p *models.Presentation) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE presentations
		SET title = ?, description = ?, html = ?, slide_count = ?, slides = ?, updated_at = ?
		WHERE id = ?
	`, p.Title, p.Description, p.HTML, p.SlideCount, nullableJSON(p.Slides), p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update presentation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner returns the owner's presentations, newest first
func (r *PresentationRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.PresentationSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, slide_count, created_at, updated_at
		FROM presentations WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list presentations: %w", err)
	}
	defer rows.Close()

	out := []models.PresentationSummary{}
	for rows.Next() {
		var s models.PresentationSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.SlideCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan presentation: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
