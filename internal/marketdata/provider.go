package marketdata

import (
	"context"
	"fmt"
	"time"

	"TradeDesk/internal/domain/models"
	"TradeDesk/internal/domain/repository"
	"TradeDesk/internal/indicators"
	"TradeDesk/pkg/cache"
	applogger "TradeDesk/pkg/logger"
)

const (
	snapshotPartition  = "market_data"
	indicatorPartition = "technical_indicators"
)

// ProviderOption configures Provider.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	MaxRetries      int
	RetryDelay      time.Duration
	FallbackEnabled bool
	MinHistory      int
	SnapshotTTL     time.Duration
	IndicatorTTL    time.Duration
	CacheMaxSize    int
	CleanupInterval time.Duration
}

// WithRetries sets the attempt count and fixed delay between attempts.
func WithRetries(maxRetries int, delay time.Duration) ProviderOption {
	return func(c *providerConfig) {
		c.MaxRetries = maxRetries
		c.RetryDelay = delay
	}
}

// WithFallbackEnabled toggles synthetic data when the source is exhausted.
func WithFallbackEnabled(enabled bool) ProviderOption {
	return func(c *providerConfig) {
		c.FallbackEnabled = enabled
	}
}

// WithMinHistory sets the sample count below which indicator input is
// flagged as degraded.
func WithMinHistory(n int) ProviderOption {
	return func(c *providerConfig) {
		c.MinHistory = n
	}
}

// WithTTLs sets the snapshot and indicator cache TTLs.
func WithTTLs(snapshot, indicator time.Duration) ProviderOption {
	return func(c *providerConfig) {
		c.SnapshotTTL = snapshot
		c.IndicatorTTL = indicator
	}
}

// WithCacheLimits sets partition capacity and sweep interval.
func WithCacheLimits(maxSize int, cleanup time.Duration) ProviderOption {
	return func(c *providerConfig) {
		c.CacheMaxSize = maxSize
		c.CleanupInterval = cleanup
	}
}

// Provider serves snapshots and indicator sets through a layered TTL cache,
// retrying the upstream source and degrading to synthetic data when allowed.
type Provider struct {
	source    Source
	fallback  *FallbackGenerator
	calc      *indicators.Calculator
	manager   *cache.Manager
	snapshots *cache.Layered[models.MarketSnapshot]
	indicator *cache.Layered[models.TechnicalIndicatorSet]
	metrics   repository.Metrics
	logger    *applogger.Logger
	cfg       providerConfig
}

// NewProvider wires a provider. redis may be nil, in which case caching is
// in-memory only.
func NewProvider(
	source Source,
	fallback *FallbackGenerator,
	calc *indicators.Calculator,
	manager *cache.Manager,
	redis *cache.RedisCache,
	m repository.Metrics,
	log *applogger.Logger,
	opts ...ProviderOption,
) *Provider {
	cfg := providerConfig{
		MaxRetries:      3,
		RetryDelay:      time.Second,
		FallbackEnabled: true,
		MinHistory:      50,
		SnapshotTTL:     5 * time.Minute,
		IndicatorTTL:    10 * time.Minute,
		CacheMaxSize:    1000,
		CleanupInterval: 30 * time.Minute,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	snapPart := manager.Partition(snapshotPartition,
		cache.WithDefaultTTL(cfg.SnapshotTTL),
		cache.WithMaxSize(cfg.CacheMaxSize),
		cache.WithCleanupInterval(cfg.CleanupInterval),
	)
	indPart := manager.Partition(indicatorPartition,
		cache.WithDefaultTTL(cfg.IndicatorTTL),
		cache.WithMaxSize(cfg.CacheMaxSize),
		cache.WithCleanupInterval(cfg.CleanupInterval),
	)

	return &Provider{
		source:    source,
		fallback:  fallback,
		calc:      calc,
		manager:   manager,
		snapshots: cache.NewLayered[models.MarketSnapshot](snapPart, redis),
		indicator: cache.NewLayered[models.TechnicalIndicatorSet](indPart, redis),
		metrics:   m,
		logger:    log,
		cfg:       cfg,
	}
}

// GetSnapshot returns the market snapshot for symbol. A cache hit returns
// immediately with no upstream call; otherwise the source is retried, then
// the fallback generator used if enabled. Whatever is produced is cached.
func (p *Provider) GetSnapshot(ctx context.Context, symbol string) (models.MarketSnapshot, error) {
	key := cache.GenerateKey(snapshotPartition, symbol)

	if snap, ok := p.snapshots.Get(ctx, key); ok {
		p.metrics.RecordCacheHit(snapshotPartition)
		return snap, nil
	}
	p.metrics.RecordCacheMiss(snapshotPartition)

	for attempt := 1; attempt <= p.cfg.MaxRetries; attempt++ {
		p.metrics.RecordFetchAttempt(symbol)

		snap, err := p.source.Quote(ctx, symbol)
		if err == nil {
			p.metrics.RecordLastPrice(symbol, snap.Price)
			if err := p.snapshots.Set(ctx, key, snap, p.cfg.SnapshotTTL); err != nil {
				p.logger.Warn("snapshot cache write failed", applogger.Error(err))
			}
			return snap, nil
		}

		p.logger.Warn("snapshot fetch failed",
			applogger.String("symbol", symbol),
			applogger.Int("attempt", attempt),
			applogger.Error(err),
		)
		if attempt < p.cfg.MaxRetries {
			if err := sleepCtx(ctx, p.cfg.RetryDelay); err != nil {
				return models.MarketSnapshot{}, err
			}
		}
	}

	if !p.cfg.FallbackEnabled {
		p.metrics.RecordError("no_data")
		return models.MarketSnapshot{}, fmt.Errorf("snapshot %s: %w", symbol, ErrNoData)
	}

	p.metrics.RecordFallback(symbol)
	snap := p.fallback.Snapshot(symbol)
	p.logger.Info("using synthetic snapshot",
		applogger.String("symbol", symbol),
		applogger.Float64("price", snap.Price),
	)
	if err := p.snapshots.Set(ctx, key, snap, p.cfg.SnapshotTTL); err != nil {
		p.logger.Warn("snapshot cache write failed", applogger.Error(err))
	}
	return snap, nil
}

// GetIndicators returns the technical indicator set for symbol, computed
// from upstream history on a cache miss.
func (p *Provider) GetIndicators(ctx context.Context, symbol string) (models.TechnicalIndicatorSet, error) {
	// Keyed on the history window too, so a config change never serves
	// sets computed from a different lookback.
	key := cache.GenerateKeyWithParams(indicatorPartition, symbol, p.cfg.MinHistory)

	if set, ok := p.indicator.Get(ctx, key); ok {
		p.metrics.RecordCacheHit(indicatorPartition)
		return set, nil
	}
	p.metrics.RecordCacheMiss(indicatorPartition)

	for attempt := 1; attempt <= p.cfg.MaxRetries; attempt++ {
		p.metrics.RecordFetchAttempt(symbol)

		series, err := p.source.History(ctx, symbol)
		if err == nil {
			if len(series) < p.cfg.MinHistory {
				p.logger.Warn("short history, indicators degraded",
					applogger.String("symbol", symbol),
					applogger.Int("samples", len(series)),
					applogger.Int("wanted", p.cfg.MinHistory),
				)
			}
			set := p.calc.Calculate(symbol, series)
			if err := p.indicator.Set(ctx, key, set, p.cfg.IndicatorTTL); err != nil {
				p.logger.Warn("indicator cache write failed", applogger.Error(err))
			}
			return set, nil
		}

		p.logger.Warn("history fetch failed",
			applogger.String("symbol", symbol),
			applogger.Int("attempt", attempt),
			applogger.Error(err),
		)
		if attempt < p.cfg.MaxRetries {
			if err := sleepCtx(ctx, p.cfg.RetryDelay); err != nil {
				return models.TechnicalIndicatorSet{}, err
			}
		}
	}

	if !p.cfg.FallbackEnabled {
		p.metrics.RecordError("no_data")
		return models.TechnicalIndicatorSet{}, fmt.Errorf("indicators %s: %w", symbol, ErrNoData)
	}

	p.metrics.RecordFallback(symbol)
	set := p.fallback.Indicators(symbol)
	if err := p.indicator.Set(ctx, key, set, p.cfg.IndicatorTTL); err != nil {
		p.logger.Warn("indicator cache write failed", applogger.Error(err))
	}
	return set, nil
}

// Invalidate drops the cached snapshot and indicators for symbol.
func (p *Provider) Invalidate(ctx context.Context, symbol string) {
	p.snapshots.Invalidate(ctx, cache.GenerateKey(snapshotPartition, symbol))
	p.indicator.Invalidate(ctx, cache.GenerateKeyWithParams(indicatorPartition, symbol, p.cfg.MinHistory))
}

// ClearAll empties every cache partition.
func (p *Provider) ClearAll() {
	p.manager.ClearAll()
}

// MinHistory returns the sample count below which indicator input is
// considered degraded.
func (p *Provider) MinHistory() int {
	return p.cfg.MinHistory
}

// CacheStats returns entry counts per partition.
func (p *Provider) CacheStats() map[string]int {
	return p.manager.Stats()
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
