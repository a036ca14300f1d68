package indicators

import (
	"testing"

	"TradeDesk/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestRSIShortHistoryIsNeutral(t *testing.T) {
	c := NewCalculator(Config{})
	assert.Equal(t, 50.0, c.RSI(linearCloses(14, 100, 1)))
	assert.Equal(t, 50.0, c.RSI(nil))
}

func TestRSIZeroLossIsHundred(t *testing.T) {
	c := NewCalculator(Config{})
	assert.Equal(t, 100.0, c.RSI(linearCloses(20, 100, 1)))
}

func TestRSIWithinBounds(t *testing.T) {
	c := NewCalculator(Config{})

	closes := make([]float64, 60)
	price := 100.0
	for i := range closes {
		if i%3 == 0 {
			price -= 1.7
		} else {
			price += 0.9
		}
		closes[i] = price
	}

	rsi := c.RSI(closes)
	assert.Greater(t, rsi, 0.0)
	assert.Less(t, rsi, 100.0)
}

func TestRSIAllLosses(t *testing.T) {
	c := NewCalculator(Config{})
	rsi := c.RSI(linearCloses(30, 100, -1))
	assert.InDelta(t, 0.0, rsi, 1e-9)
}

func TestMACDShortHistoryIsZero(t *testing.T) {
	c := NewCalculator(Config{})
	assert.Equal(t, 0.0, c.MACD(linearCloses(34, 100, 0.5)))
}

func TestMACDUptrendPositive(t *testing.T) {
	c := NewCalculator(Config{})
	macd := c.MACD(linearCloses(60, 100, 1))
	assert.Greater(t, macd, 0.0, "fast EMA should sit above slow EMA in an uptrend")
}

func TestBollingerOrdering(t *testing.T) {
	c := NewCalculator(Config{})

	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}

	upper, middle, lower := c.Bollinger(closes)
	assert.Less(t, lower, middle)
	assert.Less(t, middle, upper)
}

func TestBollingerShortHistoryCollapses(t *testing.T) {
	c := NewCalculator(Config{})
	upper, middle, lower := c.Bollinger([]float64{100, 104})
	assert.Equal(t, 102.0, middle)
	assert.Equal(t, middle, upper)
	assert.Equal(t, middle, lower)
}

func TestSMADegradesToFullMean(t *testing.T) {
	assert.Equal(t, 2.0, SMA([]float64{1, 2, 3}, 20))
	assert.Equal(t, 0.0, SMA(nil, 20))
}

func TestSMAUsesTrailingWindow(t *testing.T) {
	values := []float64{1, 1, 1, 10, 10}
	assert.Equal(t, 10.0, SMA(values, 2))
}

func TestEMASeededWithSMA(t *testing.T) {
	// With exactly period values, EMA equals the seed SMA.
	values := []float64{2, 4, 6}
	assert.Equal(t, 4.0, EMA(values, 3))

	// Shorter than period degrades to the mean.
	assert.Equal(t, 3.0, EMA([]float64{2, 4}, 3))
}

func TestEMAFollowsRecentPrices(t *testing.T) {
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 100
	}
	jump := append(append([]float64{}, flat...), 120, 120, 120)

	assert.Equal(t, 100.0, EMA(flat, 12))
	assert.Greater(t, EMA(jump, 12), 100.0)
}

func TestCalculatePopulatesAllFields(t *testing.T) {
	c := NewCalculator(Config{})

	series := make(models.PriceSeries, 60)
	for i := range series {
		series[i] = models.PricePoint{
			Close:  100 + float64(i)*0.5,
			Volume: 1_000_000 + float64(i)*1000,
		}
	}

	set := c.Calculate("AAPL", series)
	require.Equal(t, "AAPL", set.Symbol)
	assert.Equal(t, 100.0, set.RSI, "monotone uptrend has zero losses")
	assert.Greater(t, set.MACD, 0.0)
	assert.Greater(t, set.MovingAvg20, set.MovingAvg50, "short MA leads in an uptrend")
	assert.Less(t, set.BollingerLower, set.BollingerUpper)
	assert.Greater(t, set.VolumeSMA, 1_000_000.0)
	assert.False(t, set.Timestamp.IsZero())
}
