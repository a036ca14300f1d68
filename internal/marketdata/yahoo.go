package marketdata

import (
	"context"
	"fmt"
	"math"
	"time"

	"TradeDesk/internal/domain/models"
	applogger "TradeDesk/pkg/logger"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
)

// YahooOption configures YahooSource.
type YahooOption func(*YahooSource)

// WithHistoryDays sets how many calendar days of daily bars History fetches.
func WithHistoryDays(days int) YahooOption {
	return func(s *YahooSource) {
		s.historyDays = days
	}
}

// WithRateLimit sets the per-symbol token bucket parameters.
func WithRateLimit(perSecond float64, burst int) YahooOption {
	return func(s *YahooSource) {
		s.refillPerSec = perSecond
		s.capacity = float64(burst)
	}
}

// YahooSource fetches quotes and daily history from Yahoo Finance. Calls
// are throttled per symbol with a token bucket.
type YahooSource struct {
	limiter      *Limiter
	capacity     float64
	refillPerSec float64
	historyDays  int
	logger       *applogger.Logger
}

// NewYahooSource creates a Yahoo Finance backed source.
func NewYahooSource(log *applogger.Logger, opts ...YahooOption) *YahooSource {
	s := &YahooSource{
		limiter:      NewLimiter(),
		capacity:     10,
		refillPerSec: 5,
		historyDays:  90,
		logger:       log,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *YahooSource) Quote(ctx context.Context, symbol string) (models.MarketSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.MarketSnapshot{}, err
	}
	if !s.limiter.Allow("quote:"+symbol, s.capacity, s.refillPerSec) {
		return models.MarketSnapshot{}, fmt.Errorf("quote %s: rate limited", symbol)
	}

	q, err := equity.Get(symbol)
	if err != nil {
		return models.MarketSnapshot{}, fmt.Errorf("quote %s: %w", symbol, err)
	}

	price := q.RegularMarketPrice
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return models.MarketSnapshot{}, fmt.Errorf("quote %s: malformed price %v", symbol, price)
	}

	return models.MarketSnapshot{
		Symbol:        symbol,
		Price:         price,
		Volume:        int64(q.RegularMarketVolume),
		ChangePercent: q.RegularMarketChangePercent,
		MarketCap:     float64(q.MarketCap),
		PERatio:       q.TrailingPE,
		Timestamp:     time.Now(),
	}, nil
}

func (s *YahooSource) History(ctx context.Context, symbol string) (models.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.limiter.Allow("history:"+symbol, s.capacity, s.refillPerSec) {
		return nil, fmt.Errorf("history %s: rate limited", symbol)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -s.historyDays)

	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var series models.PriceSeries
	for iter.Next() {
		bar := iter.Bar()
		closePrice, _ := bar.Close.Float64()
		series = append(series, models.PricePoint{
			Close:  closePrice,
			Volume: float64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("history %s: %w", symbol, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("history %s: empty series", symbol)
	}

	s.logger.Debug("history fetched",
		applogger.String("symbol", symbol),
		applogger.Int("bars", len(series)),
	)
	return series, nil
}
