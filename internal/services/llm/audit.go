package llm

import (
	"sync"
	"time"

	"github.com/findosh/slideomni/internal/logging"
	"github.com/findosh/slideomni/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AuditLogger records one entry per provider call and keeps a bounded
// in-memory window for the admin stats view
type AuditLogger struct {
	logger     *zap.Logger
	mu         sync.Mutex
	entries    []AuditEntry
	maxEntries int
}

// AuditEntry is one provider call
type AuditEntry struct {
	Timestamp time.Time           `json:"timestamp"`
	Provider  models.ProviderKind `json:"provider"`
	Model     string              `json:"model"`
	Tokens    TokenUsage          `json:"tokens"`
	Cost      decimal.Decimal     `json:"cost"`
	LatencyMs int64               `json:"latency_ms"`
	Error     string              `json:"error,omitempty"`
}

// AuditStats aggregates entries since a point in time
type AuditStats struct {
	Calls      int                         `json:"calls"`
	Failures   int                         `json:"failures"`
	Tokens     int                         `json:"tokens"`
	Cost       decimal.Decimal             `json:"cost"`
	ByProvider map[models.ProviderKind]int `json:"by_provider"`
}

// NewAuditLogger creates an audit logger; a nil logger discards output
func NewAuditLogger(logger *zap.Logger, maxEntries int) *AuditLogger {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &AuditLogger{
		logger:     logging.OrNop(logger).Named("llm.audit"),
		maxEntries: maxEntries,
	}
}

// Log records a finished call; failure is nil on success
func (al *AuditLogger) Log(c *Completion, failure error) {
	if al == nil {
		return
	}

	entry := AuditEntry{
		Timestamp: time.Now().UTC(),
		Provider:  c.Provider,
		Model:     c.Model,
		Tokens:    c.Usage,
		Cost:      c.Cost,
		LatencyMs: c.Latency.Milliseconds(),
	}
	if failure != nil {
		entry.Error = failure.Error()
	}

	al.mu.Lock()
	if len(al.entries) >= al.maxEntries {
		al.entries = al.entries[1:]
	}
	al.entries = append(al.entries, entry)
	al.mu.Unlock()

	fields := []zap.Field{
		zap.String("provider", string(entry.Provider)),
		zap.String("model", entry.Model),
		zap.Int("input_tokens", entry.Tokens.Input),
		zap.Int("output_tokens", entry.Tokens.Output),
		zap.String("cost_usd", entry.Cost.StringFixed(6)),
		zap.Int64("latency_ms", entry.LatencyMs),
	}
	if failure != nil {
		al.logger.Warn("provider call failed", append(fields, zap.Error(failure))...)
		return
	}
	al.logger.Info("provider call", fields...)
}

// Entries returns up to limit most recent entries, newest first
func (al *AuditLogger) Entries(limit int) []AuditEntry {
	al.mu.Lock()
	defer al.mu.Unlock()

	results := make([]AuditEntry, 0, limit)
	for i := len(al.entries) - 1; i >= 0 && len(results) < limit; i-- {
		results = append(results, al.entries[i])
	}
	return results
}

// Stats aggregates entries recorded after since
func (al *AuditLogger) Stats(since time.Time) AuditStats {
	al.mu.Lock()
	defer al.mu.Unlock()

	stats := AuditStats{Cost: decimal.Zero, ByProvider: make(map[models.ProviderKind]int)}
	for _, e := range al.entries {
		if e.Timestamp.Before(since) {
			continue
		}
		stats.Calls++
		if e.Error != "" {
			stats.Failures++
		}
		stats.Tokens += e.Tokens.Total
		stats.Cost = stats.Cost.Add(e.Cost)
		stats.ByProvider[e.Provider]++
	}
	return stats
}
