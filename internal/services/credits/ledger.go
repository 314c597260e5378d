// Package credits implements the per-user credit ledger.
//
// Each identity holds two counters, omnitokens (spent on generation) and
// omnicoins (spent on corrections). Both are restored to their baseline the
// first time the ledger touches an identity in a new UTC calendar month.
package credits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/findosh/slideomni/internal/logging"
	"github.com/findosh/slideomni/internal/metrics"
	"github.com/findosh/slideomni/internal/models"
	"github.com/findosh/slideomni/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrInvalidCharge      = errors.New("credits: invalid charge")
	ErrInsufficientCredit = errors.New("credits: insufficient credit")
	ErrUserNotFound       = errors.New("credits: user not found")
)

// Ledger charges and resets credit counters
type Ledger struct {
	users  storage.Users
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Ledger
type Option func(*Ledger)

// WithClock overrides the time source used for monthly resets
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates a ledger backed by users
func NewLedger(users storage.Users, logger *zap.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		users:  users,
		now:    time.Now,
		logger: logging.OrNop(logger).Named("credits"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Charge debits amount from counter. The check and the decrement are atomic
// per identity, so concurrent charges never drive a balance below zero.
// An unknown identity is reported as ErrInsufficientCredit.
func (l *Ledger) Charge(ctx context.Context, username string, counter models.Counter, amount int) error {
	if amount <= 0 || !counter.Valid() {
		return fmt.Errorf("%w: %d %s", ErrInvalidCharge, amount, counter)
	}

	remaining, err := l.users.Charge(ctx, username, counter, amount, l.now().UTC())
	switch {
	case err == nil:
		metrics.CreditCharges.WithLabelValues(string(counter), "ok").Inc()
		l.logger.Debug("charged",
			zap.String("username", username),
			zap.String("counter", string(counter)),
			zap.Int("amount", amount),
			zap.Int("remaining", counter.Of(remaining)),
		)
		return nil
	case errors.Is(err, storage.ErrInsufficientCredit), errors.Is(err, storage.ErrNotFound):
		metrics.CreditCharges.WithLabelValues(string(counter), "insufficient").Inc()
		return ErrInsufficientCredit
	default:
		metrics.CreditCharges.WithLabelValues(string(counter), "error").Inc()
		return fmt.Errorf("charge %s: %w", username, err)
	}
}

// Balance applies a lapsed monthly reset and returns both counters
func (l *Ledger) Balance(ctx context.Context, username string) (models.Credits, error) {
	c, err := l.users.Balance(ctx, username, l.now().UTC())
	if errors.Is(err, storage.ErrNotFound) {
		return models.Credits{}, ErrUserNotFound
	}
	return c, err
}

// Reset restores both counters to baseline regardless of month
func (l *Ledger) Reset(ctx context.Context, username string) (models.Credits, error) {
	c, err := l.users.ResetCredits(ctx, username, l.now().UTC())
	if errors.Is(err, storage.ErrNotFound) {
		return models.Credits{}, ErrUserNotFound
	}
	if err != nil {
		return models.Credits{}, err
	}
	l.logger.Info("credits reset", zap.String("username", username))
	return c, nil
}
