package exchange

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"TradeDesk/internal/domain/models"
	"TradeDesk/internal/domain/repository"
	applogger "TradeDesk/pkg/logger"
)

// PriceQuoter supplies the live price used to fill an order. The market
// data provider satisfies it.
type PriceQuoter interface {
	GetSnapshot(ctx context.Context, symbol string) (models.MarketSnapshot, error)
}

// PortfolioPerformance summarizes the ledger.
type PortfolioPerformance struct {
	TotalTrades      int                    `json:"total_trades"`
	BuyTrades        int                    `json:"buy_trades"`
	SellTrades       int                    `json:"sell_trades"`
	TotalVolume      decimal.Decimal        `json:"total_volume"`
	AverageTradeSize decimal.Decimal        `json:"average_trade_size"`
	RecentTrades     []models.ExecutedTrade `json:"recent_trades"`
}

// Exchange is a simulated execution venue. Orders fill immediately at the
// current market price; every fill is appended to an in-memory ledger.
type Exchange struct {
	quoter  PriceQuoter
	metrics repository.Metrics
	logger  *applogger.Logger

	orderSeq atomic.Int64

	mu     sync.Mutex
	trades []models.ExecutedTrade
}

// New builds an Exchange. quoter may be nil, in which case fills use the
// decision price.
func New(quoter PriceQuoter, m repository.Metrics, log *applogger.Logger) *Exchange {
	return &Exchange{
		quoter:  quoter,
		metrics: m,
		logger:  log.With(applogger.String("component", "exchange")),
	}
}

// ExecuteTrade fills an approved decision at the current market price,
// re-fetched at submission time. If no fresh quote is available the
// decision's own price is used. Every submission fills; approval is the
// caller's responsibility.
func (e *Exchange) ExecuteTrade(ctx context.Context, d *models.TradingDecision) (*models.ExecutedTrade, error) {
	if d == nil {
		return nil, fmt.Errorf("exchange: nil decision")
	}

	requested := decimal.NewFromFloat(d.Price)
	executed := requested
	if e.quoter != nil {
		if snap, err := e.quoter.GetSnapshot(ctx, d.Symbol); err == nil && snap.Price > 0 {
			executed = decimal.NewFromFloat(snap.Price)
		} else if err != nil {
			e.logger.Warn("fill price unavailable, using decision price",
				applogger.String("symbol", d.Symbol),
				applogger.Error(err),
			)
		}
	}

	trade := models.ExecutedTrade{
		OrderID:        fmt.Sprintf("ORD_%06d", e.orderSeq.Add(1)),
		Symbol:         d.Symbol,
		Action:         d.Action,
		Quantity:       d.Quantity,
		RequestedPrice: requested,
		ExecutedPrice:  executed,
		Timestamp:      time.Now(),
		Status:         "executed",
	}

	e.mu.Lock()
	e.trades = append(e.trades, trade)
	e.mu.Unlock()

	e.metrics.RecordExecution(trade.Symbol, string(trade.Action))
	e.logger.Info("trade executed",
		applogger.String("order_id", trade.OrderID),
		applogger.String("symbol", trade.Symbol),
		applogger.String("action", string(trade.Action)),
		applogger.Int("quantity", trade.Quantity),
		applogger.String("executed_price", trade.ExecutedPrice.StringFixed(2)),
	)
	return &trade, nil
}

// Trades returns a copy of the ledger, oldest first.
func (e *Exchange) Trades() []models.ExecutedTrade {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.ExecutedTrade, len(e.trades))
	copy(out, e.trades)
	return out
}

// Performance aggregates the ledger. Volume is executed price times
// quantity summed over all fills; RecentTrades holds the last five.
func (e *Exchange) Performance() PortfolioPerformance {
	e.mu.Lock()
	defer e.mu.Unlock()

	perf := PortfolioPerformance{
		TotalVolume:      decimal.Zero,
		AverageTradeSize: decimal.Zero,
	}
	for _, t := range e.trades {
		perf.TotalTrades++
		switch t.Action {
		case models.ActionBuy:
			perf.BuyTrades++
		case models.ActionSell:
			perf.SellTrades++
		}
		perf.TotalVolume = perf.TotalVolume.Add(t.ExecutedPrice.Mul(decimal.NewFromInt(int64(t.Quantity))))
	}
	if perf.TotalTrades > 0 {
		perf.AverageTradeSize = perf.TotalVolume.Div(decimal.NewFromInt(int64(perf.TotalTrades))).Round(2)
	}

	n := len(e.trades)
	start := n - 5
	if start < 0 {
		start = 0
	}
	perf.RecentTrades = make([]models.ExecutedTrade, n-start)
	copy(perf.RecentTrades, e.trades[start:])
	return perf
}
