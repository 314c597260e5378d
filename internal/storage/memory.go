package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/findosh/slideomni/internal/models"
	"github.com/google/uuid"
)

// MemoryUsers is an in-process Users store. Each account carries its own
// lock so that charges against different users never contend.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]*memoryUser
}

type memoryUser struct {
	mu   sync.Mutex
	user models.User
}

// NewMemoryUsers creates an empty in-process user store
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]*memoryUser)}
}

var _ Users = (*MemoryUsers)(nil)

func (s *MemoryUsers) entry(username string) (*memoryUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *MemoryUsers) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return ErrUserExists
	}
	s.users[user.Username] = &memoryUser{user: cloneUser(*user)}
	return nil
}

func (s *MemoryUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	e, err := s.entry(username)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	u := cloneUser(e.user)
	return &u, nil
}

func (s *MemoryUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.users {
		e.mu.Lock()
		if e.user.ID == id {
			u := cloneUser(e.user)
			e.mu.Unlock()
			return &u, nil
		}
		e.mu.Unlock()
	}
	return nil, ErrNotFound
}

func (s *MemoryUsers) List(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	out := make([]*models.User, 0, len(s.users))
	for _, e := range s.users {
		e.mu.Lock()
		u := cloneUser(e.user)
		e.mu.Unlock()
		out = append(out, &u)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *MemoryUsers) UpdatePermissions(_ context.Context, username string, fn func(models.Permissions) models.Permissions) (models.Permissions, error) {
	e, err := s.entry(username)
	if err != nil {
		return models.Permissions{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.user.Permissions = fn(e.user.Permissions)
	e.user.UpdatedAt = time.Now().UTC()
	return e.user.Permissions, nil
}

func (s *MemoryUsers) Charge(_ context.Context, username string, counter models.Counter, amount int, now time.Time) (models.Credits, error) {
	if _, err := counterColumn(counter); err != nil {
		return models.Credits{}, err
	}
	e, err := s.entry(username)
	if err != nil {
		return models.Credits{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.user.NeedsReset(now) {
		e.user.ResetCredits(now)
	}

	bal := &e.user.Omnitokens
	if counter == models.CounterCoins {
		bal = &e.user.Omnicoins
	}
	if *bal < amount {
		return e.user.Credits(), ErrInsufficientCredit
	}
	*bal -= amount
	e.user.UpdatedAt = now.UTC()
	return e.user.Credits(), nil
}

func (s *MemoryUsers) Balance(_ context.Context, username string, now time.Time) (models.Credits, error) {
	e, err := s.entry(username)
	if err != nil {
		return models.Credits{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.user.NeedsReset(now) {
		e.user.ResetCredits(now)
	}
	return e.user.Credits(), nil
}

func (s *MemoryUsers) ResetCredits(_ context.Context, username string, now time.Time) (models.Credits, error) {
	e, err := s.entry(username)
	if err != nil {
		return models.Credits{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.user.ResetCredits(now)
	e.user.UpdatedAt = now.UTC()
	return e.user.Credits(), nil
}

func cloneUser(u models.User) models.User {
	// Apply with an empty patch copies the Extra map
	u.Permissions = u.Permissions.Apply(models.PermissionsPatch{})
	return u
}

// MemoryProviders is an in-process Providers store
type MemoryProviders struct {
	mu      sync.Mutex
	nextID  int64
	records map[models.ProviderKind]*models.ProviderRecord
}

// NewMemoryProviders creates an empty in-process provider store
func NewMemoryProviders() *MemoryProviders {
	return &MemoryProviders{records: make(map[models.ProviderKind]*models.ProviderRecord)}
}

var _ Providers = (*MemoryProviders)(nil)

func (s *MemoryProviders) List(_ context.Context) ([]*models.ProviderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.ProviderRecord, 0, len(s.records))
	for _, r := range s.records {
		rec := *r
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind() < out[j].Kind() })
	return out, nil
}

func (s *MemoryProviders) Get(_ context.Context, kind models.ProviderKind) (*models.ProviderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[kind]
	if !ok {
		return nil, ErrNotFound
	}
	rec := *r
	return &rec, nil
}

func (s *MemoryProviders) Upsert(_ context.Context, cfg models.ProviderConfig) (*models.ProviderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	r, ok := s.records[cfg.Kind()]
	if !ok {
		s.nextID++
		r = &models.ProviderRecord{ID: s.nextID, CreatedAt: now}
		s.records[cfg.Kind()] = r
	}
	r.Config = cfg
	r.UpdatedAt = now
	rec := *r
	return &rec, nil
}

func (s *MemoryProviders) Active(_ context.Context) (*models.ProviderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.IsActive {
			rec := *r
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryProviders) SetActive(_ context.Context, kind models.ProviderKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.records[kind]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	for _, r := range s.records {
		if r.IsActive {
			r.IsActive = false
			r.UpdatedAt = now
		}
	}
	target.IsActive = true
	target.UpdatedAt = now
	return nil
}

// MemoryPresentations is an in-process Presentations store
type MemoryPresentations struct {
	mu    sync.RWMutex
	items map[string]*models.Presentation
}

// NewMemoryPresentations creates an empty in-process presentation store
func NewMemoryPresentations() *MemoryPresentations {
	return &MemoryPresentations{items: make(map[string]*models.Presentation)}
}

var _ Presentations = (*MemoryPresentations)(nil)

func (s *MemoryPresentations) Create(_ context.Context, p *models.Presentation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := clonePresentation(p)
	s.items[p.ID] = cp
	return nil
}

func (s *MemoryPresentations) Get(_ context.Context, id string) (*models.Presentation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePresentation(p), nil
}

func (s *MemoryPresentations) Update(_ context.Context, p *models.Presentation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	next := clonePresentation(p)
	next.OwnerID = cur.OwnerID
	next.CreatedAt = cur.CreatedAt
	s.items[p.ID] = next
	return nil
}

func (s *MemoryPresentations) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.PresentationSummary, error) {
	s.mu.RLock()
	out := []models.PresentationSummary{}
	for _, p := range s.items {
		if p.OwnerID == ownerID {
			out = append(out, p.Summary())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Len returns the number of stored presentations
func (s *MemoryPresentations) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func clonePresentation(p *models.Presentation) *models.Presentation {
	cp := *p
	if p.Slides != nil {
		cp.Slides = append([]byte(nil), p.Slides...)
	}
	return &cp
}
