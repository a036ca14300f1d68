package exchange

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeDesk/internal/domain/models"
	applogger "TradeDesk/pkg/logger"
	"TradeDesk/pkg/metrics"
)

type stubQuoter struct {
	price float64
	err   error
}

func (q *stubQuoter) GetSnapshot(_ context.Context, symbol string) (models.MarketSnapshot, error) {
	if q.err != nil {
		return models.MarketSnapshot{}, q.err
	}
	return models.MarketSnapshot{Symbol: symbol, Price: q.price, Timestamp: time.Now()}, nil
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func buyDecision(symbol string) *models.TradingDecision {
	return &models.TradingDecision{
		Symbol:     symbol,
		Action:     models.ActionBuy,
		Quantity:   100,
		Price:      50.0,
		Confidence: 80,
		RiskTier:   models.RiskMedium,
		Timestamp:  time.Now(),
	}
}

func TestExecuteTradeFillsAtCurrentPrice(t *testing.T) {
	ex := New(&stubQuoter{price: 123.45}, metrics.Noop{}, testLogger(t))

	trade, err := ex.ExecuteTrade(context.Background(), buyDecision("AAPL"))
	require.NoError(t, err)

	assert.Equal(t, "ORD_000001", trade.OrderID)
	assert.Equal(t, "AAPL", trade.Symbol)
	assert.Equal(t, models.ActionBuy, trade.Action)
	assert.Equal(t, "executed", trade.Status)
	assert.Equal(t, "123.45", trade.ExecutedPrice.StringFixed(2))
	assert.Equal(t, "50.00", trade.RequestedPrice.StringFixed(2))
}

func TestExecuteTradeFallsBackToDecisionPrice(t *testing.T) {
	ex := New(&stubQuoter{err: errors.New("feed down")}, metrics.Noop{}, testLogger(t))

	trade, err := ex.ExecuteTrade(context.Background(), buyDecision("MSFT"))
	require.NoError(t, err)
	assert.Equal(t, "50.00", trade.ExecutedPrice.StringFixed(2))
}

func TestExecuteTradeNilQuoterUsesDecisionPrice(t *testing.T) {
	ex := New(nil, metrics.Noop{}, testLogger(t))

	trade, err := ex.ExecuteTrade(context.Background(), buyDecision("GOOG"))
	require.NoError(t, err)
	assert.Equal(t, "50.00", trade.ExecutedPrice.StringFixed(2))
}

func TestExecuteTradeFillsHoldDecision(t *testing.T) {
	ex := New(&stubQuoter{price: 10}, metrics.Noop{}, testLogger(t))

	hold := buyDecision("AAPL")
	hold.Action = models.ActionHold
	trade, err := ex.ExecuteTrade(context.Background(), hold)
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, models.ActionHold, trade.Action)
	assert.Equal(t, "executed", trade.Status)
	assert.Len(t, ex.Trades(), 1)
}

func TestExecuteTradeNilDecision(t *testing.T) {
	ex := New(&stubQuoter{price: 10}, metrics.Noop{}, testLogger(t))

	_, err := ex.ExecuteTrade(context.Background(), nil)
	assert.Error(t, err)
	assert.Empty(t, ex.Trades())
}

func TestOrderIDsUniqueUnderConcurrency(t *testing.T) {
	ex := New(&stubQuoter{price: 10}, metrics.Noop{}, testLogger(t))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ex.ExecuteTrade(context.Background(), buyDecision(fmt.Sprintf("SYM%d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	trades := ex.Trades()
	require.Len(t, trades, n)
	seen := make(map[string]bool, n)
	for _, tr := range trades {
		assert.False(t, seen[tr.OrderID], "duplicate order id %s", tr.OrderID)
		seen[tr.OrderID] = true
	}
}

func TestPerformanceAggregatesLedger(t *testing.T) {
	ex := New(&stubQuoter{price: 10}, metrics.Noop{}, testLogger(t))

	for i := 0; i < 7; i++ {
		d := buyDecision(fmt.Sprintf("SYM%d", i))
		d.Quantity = 10
		if i%2 == 1 {
			d.Action = models.ActionSell
		}
		_, err := ex.ExecuteTrade(context.Background(), d)
		require.NoError(t, err)
	}

	perf := ex.Performance()
	assert.Equal(t, 7, perf.TotalTrades)
	assert.Equal(t, 4, perf.BuyTrades)
	assert.Equal(t, 3, perf.SellTrades)
	assert.Equal(t, "700", perf.TotalVolume.String())
	assert.Equal(t, "100.00", perf.AverageTradeSize.StringFixed(2))
	require.Len(t, perf.RecentTrades, 5)
	assert.Equal(t, "SYM2", perf.RecentTrades[0].Symbol)
	assert.Equal(t, "SYM6", perf.RecentTrades[4].Symbol)
}

func TestPerformanceEmptyLedger(t *testing.T) {
	ex := New(nil, metrics.Noop{}, testLogger(t))

	perf := ex.Performance()
	assert.Zero(t, perf.TotalTrades)
	assert.True(t, perf.TotalVolume.IsZero())
	assert.True(t, perf.AverageTradeSize.IsZero())
	assert.Empty(t, perf.RecentTrades)
}
