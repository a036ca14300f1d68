package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "TradeDesk/pkg/logger"
)

func fileLogger(t *testing.T) (*applogger.Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "monitor.log")
	log, err := applogger.New(&applogger.Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)
	return log, path
}

func TestMonitorStartStopIsIdempotent(t *testing.T) {
	log := deskLogger(t)
	m := NewMonitor(&fakeMarket{}, []string{"AAPL"}, log, WithInterval(time.Hour))

	m.Start(context.Background())
	m.Start(context.Background())
	m.Stop()
	m.Stop()
}

func TestMonitorLogsIntervalAsDuration(t *testing.T) {
	log, path := fileLogger(t)
	m := NewMonitor(&fakeMarket{}, []string{"AAPL"}, log, WithInterval(time.Hour))

	m.Start(context.Background())
	m.Stop()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"interval"`)
	assert.NotContains(t, string(data), `"interval_ms"`)
}

func TestMonitorSweepFlagsMoversAndRSIExtremes(t *testing.T) {
	log, path := fileLogger(t)
	m := NewMonitor(&fakeMarket{}, []string{"AAPL"}, log,
		WithInterval(time.Hour),
		WithMoveThreshold(0.1),
		WithRSIBounds(49, 51),
	)

	// The fake feed reports a fixed positive move with RSI 50, inside
	// the configured band, so only the mover line fires.
	m.sweep(context.Background())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "notable move")
	assert.NotContains(t, string(data), "rsi extreme")
}
