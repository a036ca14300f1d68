package marketdata

import (
	"context"
	"errors"

	"TradeDesk/internal/domain/models"
)

// ErrNoData reports that a symbol could not be served: every upstream
// attempt failed and synthetic fallback is disabled.
var ErrNoData = errors.New("marketdata: no data available")

// Source supplies external market data.
type Source interface {
	// Quote returns the current snapshot for symbol.
	Quote(ctx context.Context, symbol string) (models.MarketSnapshot, error)
	// History returns the recent daily price series for symbol, oldest
	// first.
	History(ctx context.Context, symbol string) (models.PriceSeries, error)
}
