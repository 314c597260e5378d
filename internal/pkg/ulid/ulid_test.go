package ulid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsUniqueAndOrdered(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 1000; i++ {
		id := New()
		require.Len(t, id, 26)
		assert.False(t, seen[id], "duplicate id %s", id)
		assert.Greater(t, id, prev)
		seen[id] = true
		prev = id
	}
}

func TestTime(t *testing.T) {
	ts := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	got, err := Time(NewFromTime(ts))
	require.NoError(t, err)
	assert.True(t, got.Equal(ts), "Time() = %s, want %s", got, ts)

	_, err = Time("not-a-ulid")
	assert.Error(t, err)
}
