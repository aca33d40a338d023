package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowRemoveLifecycle(t *testing.T) {
	s := NewAllowlistService(newTestDB(t))

	allowed, err := s.IsAllowed("192.168.1.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	entry, err := s.Allow("192.168.1.1", AllowOptions{Description: "office", AddedBy: "admin"})
	require.NoError(t, err)
	assert.True(t, entry.IsActive)
	assert.Equal(t, "office", entry.Description)

	allowed, err = s.IsAllowed("192.168.1.1")
	require.NoError(t, err)
	assert.True(t, allowed)

	removed, err := s.Remove("192.168.1.1")
	require.NoError(t, err)
	assert.False(t, removed.IsActive)

	_, err = s.Remove("192.168.1.1")
	assert.ErrorIs(t, err, ErrAllowNotFound)
}

func TestAllowIsIdempotent(t *testing.T) {
	s := NewAllowlistService(newTestDB(t))

	first, err := s.Allow("192.168.1.2", AllowOptions{Description: "first"})
	require.NoError(t, err)
	second, err := s.Allow("192.168.1.2", AllowOptions{Description: "second"})
	require.NoError(t, err)

	assert.Equal(t, first.UUID, second.UUID)
	assert.Equal(t, "first", second.Description)
}

func TestAllowlistExpiry(t *testing.T) {
	s := NewAllowlistService(newTestDB(t))
	past := time.Now().Add(-time.Minute)

	_, err := s.Allow("192.168.1.3", AllowOptions{ExpiresAt: &past})
	require.NoError(t, err)

	allowed, err := s.IsAllowed("192.168.1.3")
	require.NoError(t, err)
	assert.False(t, allowed)

	swept, err := s.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, swept)
}

func TestAllowlistStats(t *testing.T) {
	s := NewAllowlistService(newTestDB(t))

	_, err := s.Allow("192.168.1.4", AllowOptions{})
	require.NoError(t, err)
	_, err = s.Allow("192.168.1.5", AllowOptions{})
	require.NoError(t, err)
	_, err = s.Remove("192.168.1.5")
	require.NoError(t, err)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalAllowed)
	assert.Equal(t, int64(1), stats.ActiveAllowed)
}
