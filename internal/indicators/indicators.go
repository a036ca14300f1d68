package indicators

import (
	"math"
	"time"

	"TradeDesk/internal/domain/models"
)

// Config holds the indicator periods. Zero values fall back to the
// conventional defaults.
type Config struct {
	RSIPeriod       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	MAShortPeriod   int
	MALongPeriod    int
	BollingerPeriod int
	BollingerK      float64
	VolumePeriod    int
}

func (c *Config) applyDefaults() {
	if c.RSIPeriod == 0 {
		c.RSIPeriod = 14
	}
	if c.MACDFast == 0 {
		c.MACDFast = 12
	}
	if c.MACDSlow == 0 {
		c.MACDSlow = 26
	}
	if c.MACDSignal == 0 {
		c.MACDSignal = 9
	}
	if c.MAShortPeriod == 0 {
		c.MAShortPeriod = 20
	}
	if c.MALongPeriod == 0 {
		c.MALongPeriod = 50
	}
	if c.BollingerPeriod == 0 {
		c.BollingerPeriod = 20
	}
	if c.BollingerK == 0 {
		c.BollingerK = 2
	}
	if c.VolumePeriod == 0 {
		c.VolumePeriod = 20
	}
}

// Calculator derives technical indicators from a price series. Series are
// ordered oldest first; every function degrades gracefully on short input
// instead of failing.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with the given periods.
func NewCalculator(cfg Config) *Calculator {
	cfg.applyDefaults()
	return &Calculator{cfg: cfg}
}

// Calculate computes the full indicator set for a symbol.
func (c *Calculator) Calculate(symbol string, series models.PriceSeries) models.TechnicalIndicatorSet {
	closes := series.Closes()
	volumes := series.Volumes()

	upper, _, lower := c.Bollinger(closes)

	return models.TechnicalIndicatorSet{
		Symbol:         symbol,
		RSI:            c.RSI(closes),
		MACD:           c.MACD(closes),
		MovingAvg20:    SMA(closes, c.cfg.MAShortPeriod),
		MovingAvg50:    SMA(closes, c.cfg.MALongPeriod),
		BollingerUpper: upper,
		BollingerLower: lower,
		VolumeSMA:      SMA(volumes, c.cfg.VolumePeriod),
		Timestamp:      time.Now(),
	}
}

// RSI computes the relative strength index over the last period deltas.
// Short history yields the neutral 50; a zero average loss yields 100.
func (c *Calculator) RSI(closes []float64) float64 {
	period := c.cfg.RSIPeriod
	if len(closes) < period+1 {
		return 50
	}

	var gains, losses float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD is the spread between the fast and slow EMAs. With fewer than
// slow+signal closes every EMA window would be unstable, so it reports 0.
func (c *Calculator) MACD(closes []float64) float64 {
	if len(closes) < c.cfg.MACDSlow+c.cfg.MACDSignal {
		return 0
	}
	return EMA(closes, c.cfg.MACDFast) - EMA(closes, c.cfg.MACDSlow)
}

// Bollinger returns (upper, middle, lower) bands using the population
// standard deviation. Short history collapses all three to the mean.
func (c *Calculator) Bollinger(closes []float64) (float64, float64, float64) {
	period := c.cfg.BollingerPeriod
	if len(closes) == 0 {
		return 0, 0, 0
	}
	if len(closes) < period {
		m := mean(closes)
		return m, m, m
	}

	window := closes[len(closes)-period:]
	m := mean(window)

	var variance float64
	for _, v := range window {
		d := v - m
		variance += d * d
	}
	variance /= float64(period)
	std := math.Sqrt(variance)

	return m + c.cfg.BollingerK*std, m, m - c.cfg.BollingerK*std
}

// SMA averages the last period values, or all of them when the series is
// shorter than the period.
func SMA(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) < period {
		return mean(values)
	}
	return mean(values[len(values)-period:])
}

// EMA computes an exponential moving average seeded with the SMA of the
// first period values. Short input degrades to the plain mean.
func EMA(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) < period {
		return mean(values)
	}

	ema := mean(values[:period])
	k := 2 / (float64(period) + 1)
	for _, v := range values[period:] {
		ema = v*k + ema*(1-k)
	}
	return ema
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
