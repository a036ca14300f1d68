package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TradeDesk/internal/domain/models"
	"TradeDesk/internal/domain/service"
	applogger "TradeDesk/pkg/logger"
)

const traderRole = `You are an experienced trader responsible for final trading decisions.
Weigh every analysis and research note to decide on entry and exit timing,
position sizing, risk management, and order execution.`

// Trader aggregates the desk's opinions into one trading decision by
// confidence-weighted vote.
type Trader struct {
	agentCore
}

// NewTrader builds the trading seat.
func NewTrader(gen service.TextGenerator, log *applogger.Logger, opts ...Option) *Trader {
	return &Trader{agentCore: newCore("Trading Agent", traderRole, gen, log, opts...)}
}

// MakeDecision sums confidence per recommended action; the action with the
// strictly greatest weight wins, and any tie falls through to hold.
// Decision confidence is the plain mean across all opinions.
func (t *Trader) MakeDecision(ctx context.Context, symbol string, opinions []models.Opinion) (models.TradingDecision, error) {
	if err := ctx.Err(); err != nil {
		return models.TradingDecision{}, err
	}
	if len(opinions) == 0 {
		return models.TradingDecision{
			Symbol:    symbol,
			Action:    models.ActionHold,
			Rationale: "no opinions to aggregate",
			RiskTier:  models.RiskMedium,
			Timestamp: time.Now(),
		}, nil
	}

	var summary strings.Builder
	var buyWeight, sellWeight, holdWeight, confSum float64
	for _, op := range opinions {
		fmt.Fprintf(&summary, "%s: recommends %s, confidence %.1f%%\n",
			op.Agent, op.Recommendation, op.Confidence)
		confSum += op.Confidence
		switch op.Recommendation {
		case models.ActionBuy:
			buyWeight += op.Confidence
		case models.ActionSell:
			sellWeight += op.Confidence
		default:
			holdWeight += op.Confidence
		}
	}

	action := models.ActionHold
	switch {
	case buyWeight > sellWeight && buyWeight > holdWeight:
		action = models.ActionBuy
	case sellWeight > buyWeight && sellWeight > holdWeight:
		action = models.ActionSell
	}

	prompt := fmt.Sprintf(`Make a trading decision for %s based on these analyses:

%s
Provide your final decision: action (buy/sell/hold), suggested quantity,
target price, reasoning, and confidence.`, symbol, summary.String())

	rationale := t.gen.Generate(ctx, prompt, t.role)

	decision := models.TradingDecision{
		Symbol:     symbol,
		Action:     action,
		Quantity:   t.rng.IntBetween(100, 1000),
		Price:      t.rng.Uniform(45, 55),
		Confidence: confSum / float64(len(opinions)),
		Rationale:  rationale,
		RiskTier:   models.RiskMedium,
		Timestamp:  time.Now(),
	}

	t.record(models.Opinion{
		Agent:          t.name,
		Rationale:      rationale,
		Confidence:     decision.Confidence,
		Recommendation: action,
		Timestamp:      decision.Timestamp,
	})

	t.logger.Info("trading decision",
		applogger.String("symbol", symbol),
		applogger.String("action", string(action)),
		applogger.Float64("confidence", decision.Confidence),
	)
	return decision, nil
}
