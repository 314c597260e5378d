package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

// storeSet bundles one tier so contract tests run against sqlite and memory
type storeSet struct {
	users         Users
	providers     Providers
	presentations Presentations
}

func tiers() map[string]func(t *testing.T) storeSet {
	return map[string]func(t *testing.T) storeSet{
		"sqlite": func(t *testing.T) storeSet {
			db := newTestDB(t)
			return storeSet{
				users:         NewUserRepository(db),
				providers:     NewProviderRepository(db),
				presentations: NewPresentationRepository(db),
			}
		},
		"memory": func(t *testing.T) storeSet {
			return storeSet{
				users:         NewMemoryUsers(),
				providers:     NewMemoryProviders(),
				presentations: NewMemoryPresentations(),
			}
		},
	}
}
