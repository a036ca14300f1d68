package cache

import (
	"context"
	"time"
)

// Layered is a typed two-level cache: a local Partition in front of an
// optional Redis layer. With a nil RedisCache it degrades to L1 only.
type Layered[T any] struct {
	l1 *Partition
	l2 *RedisCache
}

// NewLayered wires a partition and an optional Redis layer together.
func NewLayered[T any](l1 *Partition, l2 *RedisCache) *Layered[T] {
	return &Layered[T]{l1: l1, l2: l2}
}

// Get checks L1 first, then Redis. A Redis hit is copied back into L1 so the
// next read is local. Redis errors are treated as misses.
func (lc *Layered[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T

	if v, ok := lc.l1.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, true
		}
		return zero, false
	}

	if lc.l2 == nil {
		return zero, false
	}

	var out T
	if err := lc.l2.Get(ctx, key, &out); err != nil {
		return zero, false
	}
	lc.l1.Set(key, out, 0)
	return out, true
}

// Set writes through both levels. The L1 write always happens; a Redis
// failure is reported but does not undo it.
func (lc *Layered[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	lc.l1.Set(key, value, ttl)
	if lc.l2 == nil {
		return nil
	}
	return lc.l2.Set(ctx, key, value, ttl)
}

// Invalidate removes key from both levels.
func (lc *Layered[T]) Invalidate(ctx context.Context, key string) {
	lc.l1.Invalidate(key)
	if lc.l2 != nil {
		_ = lc.l2.Delete(ctx, key)
	}
}
