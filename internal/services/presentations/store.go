// Package presentations stores rendered decks and upgrades legacy records
// to the combined document form when they are read.
package presentations

import (
	"context"
	"fmt"
	"time"

	"github.com/findosh/slideomni/internal/logging"
	"github.com/findosh/slideomni/internal/metrics"
	"github.com/findosh/slideomni/internal/models"
	"github.com/findosh/slideomni/internal/pkg/ulid"
	"github.com/findosh/slideomni/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IDPrefix prefixes every presentation identifier
const IDPrefix = "pres-"

// NewID returns a fresh, time-ordered presentation identifier
func NewID() string {
	return IDPrefix + ulid.New()
}

// Store wraps the presentation repository
type Store struct {
	repo    storage.Presentations
	rewrite bool
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithRewrite controls whether normalized records are written back
func WithRewrite(rewrite bool) Option {
	return func(s *Store) { s.rewrite = rewrite }
}

// NewStore creates a presentation store
func NewStore(repo storage.Presentations, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		repo:    repo,
		rewrite: true,
		logger:  logging.OrNop(logger),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists p, assigning an identifier and timestamps when missing
func (s *Store) Create(ctx context.Context, p *models.Presentation) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	now := s.now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create presentation: %w", err)
	}
	return nil
}

// Get returns the record for id, normalizing legacy fragment lists.
// A missing record yields storage.ErrNotFound. A legacy record whose
// combined document fails validation yields a *templates.RenderError and is
// neither served nor rewritten.
func (s *Store) Get(ctx context.Context, id string) (*models.Presentation, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	normalized, changed, err := normalize(p)
	if err != nil {
		s.logger.Error("legacy presentation failed validation",
			zap.String("presentation_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("normalize presentation %s: %w", id, err)
	}
	if !changed {
		return p, nil
	}
	metrics.PresentationsNormalized.Inc()
	s.logger.Info("normalized legacy presentation",
		zap.String("presentation_id", id),
		zap.Int("slide_count", normalized.SlideCount),
	)

	if s.rewrite {
		if err := s.repo.Update(ctx, normalized); err != nil {
			// The normalized copy is still served
			s.logger.Warn("failed to rewrite normalized presentation",
				zap.String("presentation_id", id),
				zap.Error(err),
			)
		}
	}
	return normalized, nil
}

// List returns the owner's presentations newest first
func (s *Store) List(ctx context.Context, ownerID uuid.UUID) ([]models.PresentationSummary, error) {
	list, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list presentations: %w", err)
	}
	if list == nil {
		list = []models.PresentationSummary{}
	}
	return list, nil
}
