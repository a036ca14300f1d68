package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeDesk/pkg/config"
	"TradeDesk/pkg/metrics"
)

func TestMarketDataProviderUsesConfiguredHistoryWindow(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Technical.MALongPeriod = 7

	log, err := ProvideLogger(cfg)
	require.NoError(t, err)

	provider := ProvideMarketDataProvider(
		cfg,
		ProvideMarketSource(cfg, log),
		ProvideFallbackGenerator(),
		ProvideCalculator(cfg),
		ProvideCacheManager(),
		nil,
		metrics.Noop{},
		log,
	)

	assert.Equal(t, 7, provider.MinHistory())
}
