package agents

import (
	"math/rand"
	"sync"

	"TradeDesk/internal/domain/models"
)

// lockedRand is a mutex-guarded rand.Rand. Agents are invoked concurrently
// across symbol pipelines, and the shared source must stay race-free while
// remaining seedable for tests.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

// Uniform draws from [lo, hi).
func (l *lockedRand) Uniform(lo, hi float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return lo + l.r.Float64()*(hi-lo)
}

// Float64 draws from [0, 1).
func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// IntBetween draws an integer from [lo, hi] inclusive.
func (l *lockedRand) IntBetween(lo, hi int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return lo + l.r.Intn(hi-lo+1)
}

// PickAction draws one of the given actions with equal probability.
func (l *lockedRand) PickAction(actions ...models.Action) models.Action {
	l.mu.Lock()
	defer l.mu.Unlock()
	return actions[l.r.Intn(len(actions))]
}
