package storage

import (
	"context"
	"errors"
	"time"

	"github.com/findosh/slideomni/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a lookup matches no record
	ErrNotFound = errors.New("storage: not found")
	// ErrUserExists is returned when a username is already taken
	ErrUserExists = errors.New("storage: user already exists")
	// ErrInsufficientCredit is returned when a charge exceeds the balance
	ErrInsufficientCredit = errors.New("storage: insufficient credit")
)

// Users persists accounts and their credit counters.
type Users interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)

	// UpdatePermissions applies fn to the stored permission set atomically.
	UpdatePermissions(ctx context.Context, username string, fn func(models.Permissions) models.Permissions) (models.Permissions, error)

	// Charge applies a lapsed monthly reset, then decrements counter by amount
	// when the balance covers it. The check and the decrement are atomic per user.
	// A reset applied before an insufficient charge is kept.
	Charge(ctx context.Context, username string, counter models.Counter, amount int, now time.Time) (models.Credits, error)

	// Balance applies a lapsed monthly reset and returns both counters.
	Balance(ctx context.Context, username string, now time.Time) (models.Credits, error)

	// ResetCredits restores both counters to baseline unconditionally.
	ResetCredits(ctx context.Context, username string, now time.Time) (models.Credits, error)
}

// Providers persists text-generation provider configurations.
// At most one record is active at any time.
type Providers interface {
	List(ctx context.Context) ([]*models.ProviderRecord, error)
	Get(ctx context.Context, kind models.ProviderKind) (*models.ProviderRecord, error)
	Upsert(ctx context.Context, cfg models.ProviderConfig) (*models.ProviderRecord, error)
	Active(ctx context.Context) (*models.ProviderRecord, error)
	SetActive(ctx context.Context, kind models.ProviderKind) error
}

// Presentations persists rendered decks.
type Presentations interface {
	Create(ctx context.Context, p *models.Presentation) error
	Get(ctx context.Context, id string) (*models.Presentation, error)
	Update(ctx context.Context, p *models.Presentation) error
	// ListByOwner returns summaries newest first
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.PresentationSummary, error)
}
