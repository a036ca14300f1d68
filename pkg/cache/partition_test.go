package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }

	p := NewPartition(
		WithDefaultTTL(time.Minute),
		WithClock(clock),
	)

	p.Set("AAPL", 101.5, 0)

	v, ok := p.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, 101.5, v)

	// Just before expiry the entry is still live.
	now = now.Add(time.Minute)
	_, ok = p.Get("AAPL")
	assert.True(t, ok)

	// Past expiry the read misses and removes the entry.
	now = now.Add(time.Second)
	_, ok = p.Get("AAPL")
	assert.False(t, ok)
	assert.Equal(t, 0, p.Size())
}

func TestPartitionExplicitTTLOverridesDefault(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	p := NewPartition(
		WithDefaultTTL(time.Minute),
		WithClock(func() time.Time { return now }),
	)

	p.Set("short", 1, time.Second)
	p.Set("long", 2, time.Hour)

	now = now.Add(2 * time.Second)
	_, ok := p.Get("short")
	assert.False(t, ok)
	_, ok = p.Get("long")
	assert.True(t, ok)
}

func TestPartitionEvictsOldestInsertion(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	p := NewPartition(
		WithMaxSize(3),
		WithDefaultTTL(time.Hour),
		WithClock(func() time.Time { return now }),
	)

	for i := 0; i < 3; i++ {
		p.Set(fmt.Sprintf("k%d", i), i, 0)
		now = now.Add(time.Second)
	}

	// Re-reading the oldest key must not protect it: eviction is by
	// insertion time, not access time.
	_, ok := p.Get("k0")
	require.True(t, ok)

	p.Set("k3", 3, 0)

	_, ok = p.Get("k0")
	assert.False(t, ok, "oldest insertion should have been evicted")
	for i := 1; i <= 3; i++ {
		_, ok = p.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok)
	}
	assert.Equal(t, 3, p.Size())
}

func TestPartitionOverwriteDoesNotEvict(t *testing.T) {
	p := NewPartition(WithMaxSize(2), WithDefaultTTL(time.Hour))

	p.Set("a", 1, 0)
	p.Set("b", 2, 0)
	p.Set("a", 10, 0)

	assert.Equal(t, 2, p.Size())
	v, ok := p.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
	_, ok = p.Get("b")
	assert.True(t, ok)
}

func TestPartitionSweepRemovesLapsedEntries(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	p := NewPartition(
		WithDefaultTTL(time.Minute),
		WithCleanupInterval(10*time.Minute),
		WithClock(func() time.Time { return now }),
	)

	for i := 0; i < 5; i++ {
		p.Set(fmt.Sprintf("k%d", i), i, 0)
	}

	// Entries lapse but no sweep is due yet, so they linger in the map.
	now = now.Add(5 * time.Minute)
	p.Set("fresh", 1, 0)
	assert.Equal(t, 6, p.Size())

	// Once the cleanup interval has passed, the next operation sweeps.
	now = now.Add(6 * time.Minute)
	p.Set("fresh2", 2, 0)
	assert.Equal(t, 1, p.Size())
}

func TestPartitionInvalidateAndClear(t *testing.T) {
	p := NewPartition(WithDefaultTTL(time.Hour))

	p.Set("a", 1, 0)
	p.Set("b", 2, 0)

	p.Invalidate("a")
	_, ok := p.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, p.Size())

	p.Clear()
	assert.Equal(t, 0, p.Size())
}

func TestManagerReturnsSamePartition(t *testing.T) {
	m := NewManager()

	p1 := m.Partition("market_data", WithDefaultTTL(5*time.Minute))
	p2 := m.Partition("market_data")
	assert.Same(t, p1, p2)

	p1.Set("AAPL", 1, 0)
	m.Partition("technical_indicators").Set("AAPL", 2, 0)

	stats := m.Stats()
	assert.Equal(t, 1, stats["market_data"])
	assert.Equal(t, 1, stats["technical_indicators"])

	m.ClearAll()
	assert.Equal(t, 0, m.Partition("market_data").Size())
	assert.Equal(t, 0, m.Partition("technical_indicators").Size())
}
