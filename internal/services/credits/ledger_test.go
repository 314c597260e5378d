package credits

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/findosh/slideomni/internal/models"
	"github.com/findosh/slideomni/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func seed(t *testing.T, users storage.Users, name string, tokens, coins int, lastReset time.Time) {
	t.Helper()
	u := models.NewUser(name, "", "h", "s", models.Permissions{})
	u.Omnitokens, u.Omnicoins, u.LastReset = tokens, coins, lastReset
	require.NoError(t, users.Create(context.Background(), u))
}

func TestChargeRejectsInvalidInput(t *testing.T) {
	l := NewLedger(storage.NewMemoryUsers(), nil)

	tests := []struct {
		name    string
		counter models.Counter
		amount  int
	}{
		{"zero amount", models.CounterTokens, 0},
		{"negative amount", models.CounterCoins, -1},
		{"unknown counter", models.Counter("gold"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.Charge(context.Background(), "ada", tt.counter, tt.amount)
			assert.ErrorIs(t, err, ErrInvalidCharge)
		})
	}
}

func TestChargeUnknownUserIsInsufficient(t *testing.T) {
	l := NewLedger(storage.NewMemoryUsers(), nil)
	err := l.Charge(context.Background(), "ghost", models.CounterTokens, 1)
	assert.ErrorIs(t, err, ErrInsufficientCredit)
}

func TestChargeDecrementsUntilEmpty(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)}
	users := storage.NewMemoryUsers()
	seed(t, users, "ada", 2, 1, clock.Now())
	l := NewLedger(users, nil, WithClock(clock.Now))

	require.NoError(t, l.Charge(ctx, "ada", models.CounterTokens, 1))
	require.NoError(t, l.Charge(ctx, "ada", models.CounterTokens, 1))
	assert.ErrorIs(t, l.Charge(ctx, "ada", models.CounterTokens, 1), ErrInsufficientCredit)

	require.NoError(t, l.Charge(ctx, "ada", models.CounterCoins, 1))
	assert.ErrorIs(t, l.Charge(ctx, "ada", models.CounterCoins, 1), ErrInsufficientCredit)

	bal, err := l.Balance(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, models.Credits{}, bal)
}

func TestMonthBoundaryReset(t *testing.T) {
	ctx := context.Background()
	endOfMonth := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
	clock := &fakeClock{now: endOfMonth}
	users := storage.NewMemoryUsers()
	seed(t, users, "ada", 0, 0, endOfMonth)
	l := NewLedger(users, nil, WithClock(clock.Now))

	assert.ErrorIs(t, l.Charge(ctx, "ada", models.CounterTokens, 1), ErrInsufficientCredit)

	clock.Set(time.Date(2026, 2, 1, 0, 0, 1, 0, time.UTC))
	require.NoError(t, l.Charge(ctx, "ada", models.CounterTokens, 1))

	bal, err := l.Balance(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, models.BaselineOmnitokens-1, bal.Omnitokens)
	assert.Equal(t, models.BaselineOmnicoins, bal.Omnicoins)
}

func TestResetIsIdempotentWithinMonth(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)}
	users := storage.NewMemoryUsers()
	seed(t, users, "ada", 4, 40, time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC))
	l := NewLedger(users, nil, WithClock(clock.Now))

	first, err := l.Balance(ctx, "ada")
	require.NoError(t, err)
	require.NoError(t, l.Charge(ctx, "ada", models.CounterTokens, 1))

	clock.Set(time.Date(2026, 3, 28, 0, 0, 0, 0, time.UTC))
	second, err := l.Balance(ctx, "ada")
	require.NoError(t, err)

	assert.Equal(t, models.BaselineOmnitokens, first.Omnitokens)
	assert.Equal(t, models.BaselineOmnitokens-1, second.Omnitokens, "a second check in the same month must not reset")
}

func TestYearRollover(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)}
	users := storage.NewMemoryUsers()
	// same month number, previous year
	seed(t, users, "ada", 0, 0, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	l := NewLedger(users, nil, WithClock(clock.Now))

	require.NoError(t, l.Charge(ctx, "ada", models.CounterCoins, 45))
}

func TestAdminReset(t *testing.T) {
	ctx := context.Background()
	users := storage.NewMemoryUsers()
	seed(t, users, "ada", 1, 2, time.Now())
	l := NewLedger(users, nil)

	c, err := l.Reset(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, models.Credits{Omnitokens: 10, Omnicoins: 45}, c)

	_, err = l.Reset(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = l.Balance(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestConcurrentChargesNeverOverspend(t *testing.T) {
	backends := map[string]func(t *testing.T) storage.Users{
		"memory": func(t *testing.T) storage.Users { return storage.NewMemoryUsers() },
		"sqlite": func(t *testing.T) storage.Users {
			db, err := storage.New(":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			require.NoError(t, db.Migrate(context.Background()))
			return storage.NewUserRepository(db)
		},
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			users := open(t)
			seed(t, users, "ada", 1, 45, time.Now())
			l := NewLedger(users, nil)

			var ok, insufficient atomic.Int32
			var wg sync.WaitGroup
			start := make(chan struct{})
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					switch err := l.Charge(ctx, "ada", models.CounterTokens, 1); err {
					case nil:
						ok.Add(1)
					case ErrInsufficientCredit:
						insufficient.Add(1)
					}
				}()
			}
			close(start)
			wg.Wait()

			assert.Equal(t, int32(1), ok.Load())
			assert.Equal(t, int32(1), insufficient.Load())
			bal, err := l.Balance(ctx, "ada")
			require.NoError(t, err)
			assert.Equal(t, 0, bal.Omnitokens)
		})
	}
}
