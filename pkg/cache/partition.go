package cache

import (
	"sync"
	"time"
)

type entry struct {
	value      interface{}
	insertedAt time.Time
	expireAt   time.Time
}

// Partition is a bounded in-memory TTL cache. Expired entries are removed
// lazily on read; a full sweep runs opportunistically from Get/Set, at most
// once per cleanup interval, so no background goroutine is needed.
type Partition struct {
	mu         sync.Mutex
	entries    map[string]entry
	defaultTTL time.Duration
	maxSize    int
	sweepEvery time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

// NewPartition creates a partition with the given options.
func NewPartition(opts ...PartitionOption) *Partition {
	cfg := &PartitionConfig{
		DefaultTTL:      5 * time.Minute,
		MaxSize:         1000,
		CleanupInterval: 30 * time.Minute,
		Clock:           time.Now,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &Partition{
		entries:    make(map[string]entry),
		defaultTTL: cfg.DefaultTTL,
		maxSize:    cfg.MaxSize,
		sweepEvery: cfg.CleanupInterval,
		lastSweep:  cfg.Clock(),
		now:        cfg.Clock,
	}
}

// Get returns the value for key, or (nil, false) when the key is absent or
// its TTL has lapsed. A lapsed entry is deleted on the spot.
func (p *Partition) Get(key string) (interface{}, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	p.maybeSweep(now)

	e, ok := p.entries[key]
	if !ok {
		return nil, false
	}
	if now.After(e.expireAt) {
		delete(p.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key. A non-positive ttl means the partition default.
// When the partition is full, the entry with the oldest insertion time is
// evicted to make room.
func (p *Partition) Set(key string, value interface{}, ttl time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	p.maybeSweep(now)

	if ttl <= 0 {
		ttl = p.defaultTTL
	}

	if _, exists := p.entries[key]; !exists && len(p.entries) >= p.maxSize {
		p.evictOldest()
	}

	p.entries[key] = entry{
		value:      value,
		insertedAt: now,
		expireAt:   now.Add(ttl),
	}
}

// Invalidate removes key from the partition.
func (p *Partition) Invalidate(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, key)
}

// Clear removes all entries.
func (p *Partition) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = make(map[string]entry)
}

// Size returns the number of stored entries, expired or not.
func (p *Partition) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// maybeSweep drops every lapsed entry when the cleanup interval has passed
// since the previous sweep. Caller holds the lock.
func (p *Partition) maybeSweep(now time.Time) {
	if now.Sub(p.lastSweep) < p.sweepEvery {
		return
	}
	p.lastSweep = now

	for key, e := range p.entries {
		if now.After(e.expireAt) {
			delete(p.entries, key)
		}
	}
}

// evictOldest removes the entry inserted earliest. Caller holds the lock.
func (p *Partition) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	first := true

	for key, e := range p.entries {
		if first || e.insertedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.insertedAt
			first = false
		}
	}

	if oldestKey != "" {
		delete(p.entries, oldestKey)
	}
}
