package ratelimiter

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledReturnsNil(t *testing.T) {
	assert.Nil(t, New(0, 5, 0))
	assert.Nil(t, New(1, 0, 0))

	var l *KeyLimiter
	assert.True(t, l.Allow("203.0.113.9", time.Now()))
	assert.Equal(t, 0, l.Len())
}

func TestAllow_BurstThenRefill(t *testing.T) {
	l := New(1, 2, time.Minute)
	require.NotNil(t, l)

	now := time.Unix(1_700_000_000, 0)
	assert.True(t, l.Allow("203.0.113.9", now))
	assert.True(t, l.Allow("203.0.113.9", now))
	assert.False(t, l.Allow("203.0.113.9", now))

	// Other callers have their own bucket
	assert.True(t, l.Allow("198.51.100.7", now))

	assert.True(t, l.Allow("203.0.113.9", now.Add(time.Second)))
}

func TestAllow_EmptyKeyNeverLimited(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Now()
	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("  ", now))
	}
	assert.Equal(t, 0, l.Len())
}

func TestAllow_EvictsIdleKeys(t *testing.T) {
	l := New(100, 100, time.Minute)
	start := time.Unix(1_700_000_000, 0)

	for i := 0; i < evictEvery-1; i++ {
		l.Allow(fmt.Sprintf("old-%d", i), start)
	}
	require.Equal(t, evictEvery-1, l.Len())

	// The sweep runs on this call and drops every idle key
	l.Allow("fresh", start.Add(2*time.Minute))
	assert.Equal(t, 1, l.Len())
}
