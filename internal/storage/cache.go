package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/findosh/slideomni/internal/models"
	"github.com/redis/go-redis/v9"
)

// PresentationCache is a read-through cache for rendered decks.
// Implementations are best-effort: misses and backend errors look the same.
type PresentationCache interface {
	Get(ctx context.Context, id string) (*models.Presentation, bool)
	Set(ctx context.Context, p *models.Presentation)
	Delete(ctx context.Context, id string)
}

// MemoryCache holds presentations in process with a TTL
type MemoryCache struct {
	entries    map[string]*cacheEntry
	mu         sync.RWMutex
	ttl        time.Duration
	maxEntries int
	stop       chan struct{}
	stopOnce   sync.Once
}

type cacheEntry struct {
	presentation *models.Presentation
	createdAt    time.Time
}

// NewMemoryCache creates a cache and starts its cleanup goroutine; call Close to stop it
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 1000
	}

	c := &MemoryCache{
		entries:    make(map[string]*cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

func (c *MemoryCache) Get(_ context.Context, id string) (*models.Presentation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok || time.Since(e.createdAt) >= c.ttl {
		return nil, false
	}
	return clonePresentation(e.presentation), true
}

func (c *MemoryCache) Set(_ context.Context, p *models.Presentation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[p.ID]; !ok && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[p.ID] = &cacheEntry{presentation: clonePresentation(p), createdAt: time.Now()}
}

func (c *MemoryCache) Delete(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Len returns the number of live and expired entries not yet swept
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine
func (c *MemoryCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// evictOldest drops the oldest tenth of the entries
func (c *MemoryCache) evictOldest() {
	evictCount := c.maxEntries / 10
	if evictCount < 1 {
		evictCount = 1
	}

	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return c.entries[ids[i]].createdAt.Before(c.entries[ids[j]].createdAt)
	})

	for i := 0; i < evictCount && i < len(ids); i++ {
		delete(c.entries, ids[i])
	}
}

func (c *MemoryCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for id, e := range c.entries {
		if now.Sub(e.createdAt) >= c.ttl {
			delete(c.entries, id)
		}
	}
}

const redisKeyPrefix = "slideomni:presentation:"

// RedisCache stores JSON-encoded presentations in Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, id string) (*models.Presentation, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		return nil, false
	}
	var p models.Presentation
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *RedisCache) Set(ctx context.Context, p *models.Presentation) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, redisKeyPrefix+p.ID, raw, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, id string) {
	_ = c.client.Del(ctx, redisKeyPrefix+id).Err()
}

// Ping verifies the Redis connection is alive
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedPresentations fronts a Presentations store with a cache.
// Only canonical records are cached so legacy rows still reach normalization.
type CachedPresentations struct {
	Presentations
	cache PresentationCache
}

// NewCachedPresentations wraps store with cache
func NewCachedPresentations(store Presentations, cache PresentationCache) *CachedPresentations {
	return &CachedPresentations{Presentations: store, cache: cache}
}

func (s *CachedPresentations) Create(ctx context.Context, p *models.Presentation) error {
	if err := s.Presentations.Create(ctx, p); err != nil {
		return err
	}
	if p.IsCanonical() {
		s.cache.Set(ctx, p)
	}
	return nil
}

func (s *CachedPresentations) Get(ctx context.Context, id string) (*models.Presentation, error) {
	if p, ok := s.cache.Get(ctx, id); ok {
		return p, nil
	}
	p, err := s.Presentations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsCanonical() {
		s.cache.Set(ctx, p)
	}
	return p, nil
}

func (s *CachedPresentations) Update(ctx context.Context, p *models.Presentation) error {
	if err := s.Presentations.Update(ctx, p); err != nil {
		s.cache.Delete(ctx, p.ID)
		return err
	}
	if p.IsCanonical() {
		s.cache.Set(ctx, p)
	} else {
		s.cache.Delete(ctx, p.ID)
	}
	return nil
}
