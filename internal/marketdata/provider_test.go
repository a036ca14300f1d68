package marketdata

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"TradeDesk/internal/domain/models"
	"TradeDesk/internal/indicators"
	"TradeDesk/pkg/cache"
	applogger "TradeDesk/pkg/logger"
	"TradeDesk/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu        sync.Mutex
	quoteErrs int // fail the first N quote calls
	histErrs  int
	quotes    int
	histories int
	series    models.PriceSeries
}

func (f *fakeSource) Quote(_ context.Context, symbol string) (models.MarketSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes++
	if f.quoteErrs > 0 {
		f.quoteErrs--
		return models.MarketSnapshot{}, errors.New("upstream down")
	}
	return models.MarketSnapshot{
		Symbol:    symbol,
		Price:     150.25,
		Volume:    2_000_000,
		Timestamp: time.Now(),
	}, nil
}

func (f *fakeSource) History(_ context.Context, _ string) (models.PriceSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histories++
	if f.histErrs > 0 {
		f.histErrs--
		return nil, errors.New("upstream down")
	}
	return f.series, nil
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func newTestProvider(t *testing.T, source Source, opts ...ProviderOption) *Provider {
	t.Helper()
	base := []ProviderOption{WithRetries(3, time.Millisecond)}
	return NewProvider(
		source,
		NewSeededFallbackGenerator(42),
		indicators.NewCalculator(indicators.Config{}),
		cache.NewManager(),
		nil,
		metrics.Noop{},
		testLogger(t),
		append(base, opts...)...,
	)
}

func TestGetSnapshotCacheHitSkipsSource(t *testing.T) {
	src := &fakeSource{}
	p := newTestProvider(t, src)

	first, err := p.GetSnapshot(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, 1, src.quotes)

	// Second call must come from cache: call count stays put.
	second, err := p.GetSnapshot(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, src.quotes)
	assert.Equal(t, first.Price, second.Price)
}

func TestGetSnapshotRetriesThenSucceeds(t *testing.T) {
	src := &fakeSource{quoteErrs: 2}
	p := newTestProvider(t, src)

	snap, err := p.GetSnapshot(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 150.25, snap.Price)
	assert.Equal(t, 3, src.quotes)
}

func TestGetSnapshotFallbackDisabledReturnsErrNoData(t *testing.T) {
	src := &fakeSource{quoteErrs: 100}
	p := newTestProvider(t, src, WithFallbackEnabled(false))

	_, err := p.GetSnapshot(context.Background(), "TSLA")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, 3, src.quotes, "each failure consumes exactly one attempt")
}

func TestGetSnapshotFallbackProducesCoherentWalk(t *testing.T) {
	src := &fakeSource{quoteErrs: 100}
	p := newTestProvider(t, src)

	snap, err := p.GetSnapshot(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, snap.Price, 1.0)
	assert.Equal(t, "NVDA", snap.Symbol)

	// The synthetic snapshot is cached like a real one.
	again, err := p.GetSnapshot(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Equal(t, snap.Price, again.Price)
}

func TestGetIndicatorsComputedFromHistory(t *testing.T) {
	series := make(models.PriceSeries, 60)
	for i := range series {
		series[i] = models.PricePoint{Close: 100 + float64(i), Volume: 1_000_000}
	}
	src := &fakeSource{series: series}
	p := newTestProvider(t, src)

	set, err := p.GetIndicators(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 100.0, set.RSI, "monotone uptrend")
	assert.Equal(t, 1, src.histories)

	_, err = p.GetIndicators(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, src.histories, "second read served from cache")
}

func TestGetIndicatorsFallbackDisabledReturnsErrNoData(t *testing.T) {
	src := &fakeSource{histErrs: 100}
	p := newTestProvider(t, src, WithFallbackEnabled(false))

	_, err := p.GetIndicators(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	src := &fakeSource{}
	p := newTestProvider(t, src)

	_, err := p.GetSnapshot(context.Background(), "AAPL")
	require.NoError(t, err)

	p.Invalidate(context.Background(), "AAPL")

	_, err = p.GetSnapshot(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, src.quotes)
}

func TestRetrySleepHonorsCancellation(t *testing.T) {
	src := &fakeSource{quoteErrs: 100}
	p := NewProvider(
		src,
		NewSeededFallbackGenerator(1),
		indicators.NewCalculator(indicators.Config{}),
		cache.NewManager(),
		nil,
		metrics.Noop{},
		testLogger(t),
		WithRetries(3, time.Hour),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.GetSnapshot(ctx, "AAPL")
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("provider did not observe cancellation during retry sleep")
	}
}

func TestFallbackGeneratorResetStartsNewWalk(t *testing.T) {
	g := NewSeededFallbackGenerator(7)

	first := g.Snapshot("AAPL")
	second := g.Snapshot("AAPL")

	// Walk steps are bounded relative to the previous price.
	maxStep := first.Price * 0.08
	assert.InDelta(t, first.Price, second.Price, maxStep)

	g.Reset("AAPL")
	fresh := g.Snapshot("AAPL")
	assert.GreaterOrEqual(t, fresh.Price, 1.0)
	assert.LessOrEqual(t, fresh.Price, 550.0)
}
