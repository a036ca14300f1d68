package marketdata

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"TradeDesk/internal/domain/models"
)

// FallbackGenerator synthesizes market data when the real source is down.
// It keeps per-symbol state (last price, trend bias) so consecutive calls
// for the same symbol form a coherent random walk instead of independent
// noise: indicators computed across fallback calls stay meaningful.
type FallbackGenerator struct {
	mu         sync.Mutex
	rng        *rand.Rand
	basePrices map[string]float64
	trends     map[string]float64
}

// NewFallbackGenerator creates a generator seeded from the clock.
func NewFallbackGenerator() *FallbackGenerator {
	return NewSeededFallbackGenerator(time.Now().UnixNano())
}

// NewSeededFallbackGenerator creates a generator with a fixed seed.
func NewSeededFallbackGenerator(seed int64) *FallbackGenerator {
	return &FallbackGenerator{
		rng:        rand.New(rand.NewSource(seed)),
		basePrices: make(map[string]float64),
		trends:     make(map[string]float64),
	}
}

// Snapshot synthesizes the next market snapshot for symbol, advancing its
// random walk.
func (g *FallbackGenerator) Snapshot(symbol string) models.MarketSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	base, ok := g.basePrices[symbol]
	if !ok {
		base = g.uniform(50, 500)
		g.basePrices[symbol] = base
		g.trends[symbol] = g.uniform(-0.02, 0.02)
	}
	trend := g.trends[symbol]

	change := base * (trend + g.uniform(-0.05, 0.05))
	price := math.Max(1.0, base+change)
	g.basePrices[symbol] = price

	changePercent := (price - base) / base * 100

	return models.MarketSnapshot{
		Symbol:        symbol,
		Price:         round2(price),
		Volume:        1_000_000 + g.rng.Int63n(9_000_001),
		ChangePercent: round2(changePercent),
		MarketCap:     g.uniform(1e9, 1e12),
		PERatio:       g.uniform(10, 30),
		Timestamp:     time.Now(),
	}
}

// Indicators synthesizes a technical indicator set anchored to the
// symbol's current walk price.
func (g *FallbackGenerator) Indicators(symbol string) models.TechnicalIndicatorSet {
	g.mu.Lock()
	defer g.mu.Unlock()

	price, ok := g.basePrices[symbol]
	if !ok {
		price = g.uniform(50, 500)
	}

	ma20 := price * g.uniform(0.98, 1.02)
	ma50 := price * g.uniform(0.95, 1.05)

	volatility := price * 0.02
	upper := ma20 + 2*volatility
	lower := ma20 - 2*volatility

	rsi := 50.0
	if price > ma20 {
		rsi += g.uniform(0, 20)
	} else {
		rsi -= g.uniform(0, 20)
	}
	rsi = math.Max(0, math.Min(100, rsi+g.uniform(-10, 10)))

	return models.TechnicalIndicatorSet{
		Symbol:         symbol,
		RSI:            round2(rsi),
		MACD:           g.uniform(-2, 2),
		MovingAvg20:    round2(ma20),
		MovingAvg50:    round2(ma50),
		BollingerUpper: round2(upper),
		BollingerLower: round2(lower),
		VolumeSMA:      float64(500_000 + g.rng.Int63n(1_500_001)),
		Timestamp:      time.Now(),
	}
}

// Reset clears the walk state for one symbol.
func (g *FallbackGenerator) Reset(symbol string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.basePrices, symbol)
	delete(g.trends, symbol)
}

// ResetAll clears all walk state.
func (g *FallbackGenerator) ResetAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.basePrices = make(map[string]float64)
	g.trends = make(map[string]float64)
}

func (g *FallbackGenerator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
