package usecase

import (
	"context"
	"math"
	"sync"
	"time"

	applogger "TradeDesk/pkg/logger"
)

type monitorConfig struct {
	interval      time.Duration
	moveThreshold float64
	rsiLow        float64
	rsiHigh       float64
}

type MonitorOption func(*monitorConfig)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) MonitorOption {
	return func(c *monitorConfig) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithMoveThreshold sets the absolute percent change that counts as a mover.
func WithMoveThreshold(pct float64) MonitorOption {
	return func(c *monitorConfig) {
		if pct > 0 {
			c.moveThreshold = pct
		}
	}
}

// WithRSIBounds sets the RSI extremes worth flagging.
func WithRSIBounds(low, high float64) MonitorOption {
	return func(c *monitorConfig) {
		if low > 0 && high > low {
			c.rsiLow = low
			c.rsiHigh = high
		}
	}
}

// Monitor polls market data on its own goroutine and logs notable
// movers and RSI extremes. It shares the provider (and its cache) with
// the analysis pipeline.
type Monitor struct {
	provider MarketData
	logger   *applogger.Logger
	symbols  []string
	cfg      monitorConfig

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewMonitor(provider MarketData, symbols []string, log *applogger.Logger, opts ...MonitorOption) *Monitor {
	cfg := monitorConfig{
		interval:      30 * time.Second,
		moveThreshold: 2,
		rsiLow:        25,
		rsiHigh:       75,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Monitor{
		provider: provider,
		logger:   log.With(applogger.String("component", "monitor")),
		symbols:  symbols,
		cfg:      cfg,
	}
}

// Start launches the polling loop. Calling Start on a running monitor
// is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true

	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.logger.Info("monitoring started",
		applogger.Strings("symbols", m.symbols),
		applogger.Duration("interval", m.cfg.interval),
	)

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.cfg.interval)
		defer ticker.Stop()
		m.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for the in-flight sweep to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	cancel()
	<-done
	m.logger.Info("monitoring stopped")
}

func (m *Monitor) sweep(ctx context.Context) {
	for _, symbol := range m.symbols {
		if ctx.Err() != nil {
			return
		}
		snapshot, err := m.provider.GetSnapshot(ctx, symbol)
		if err != nil {
			m.logger.Warn("monitor snapshot failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			continue
		}
		if math.Abs(snapshot.ChangePercent) > m.cfg.moveThreshold {
			m.logger.Info("notable move",
				applogger.String("symbol", symbol),
				applogger.Float64("change_percent", snapshot.ChangePercent),
				applogger.Float64("price", snapshot.Price),
			)
		}

		indicators, err := m.provider.GetIndicators(ctx, symbol)
		if err != nil {
			m.logger.Warn("monitor indicators failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			continue
		}
		if indicators.RSI < m.cfg.rsiLow || indicators.RSI > m.cfg.rsiHigh {
			m.logger.Info("rsi extreme",
				applogger.String("symbol", symbol),
				applogger.Float64("rsi", indicators.RSI),
			)
		}
	}
}
