package agents

import (
	"context"
	"fmt"
	"math"
	"time"

	"TradeDesk/internal/domain/models"
	"TradeDesk/internal/domain/service"
	applogger "TradeDesk/pkg/logger"
)

const riskRole = `You are an experienced risk manager. Assess portfolio risk including
volatility and correlation, liquidity and concentration, sector exposure,
and market and credit risk.`

// RiskManager scores a decision against the current market snapshot.
type RiskManager struct {
	agentCore
}

// NewRiskManager builds the risk seat.
func NewRiskManager(gen service.TextGenerator, log *applogger.Logger, opts ...Option) *RiskManager {
	return &RiskManager{agentCore: newCore("Risk Manager", riskRole, gen, log, opts...)}
}

// AssessRisk derives volatility from the day's move, liquidity from volume,
// and a composite risk score clamped to [0, 100]. The uniform term stands
// in for unmodeled risk factors.
func (r *RiskManager) AssessRisk(ctx context.Context, symbol string, decision models.TradingDecision, snapshot models.MarketSnapshot) (models.RiskAssessment, error) {
	if err := ctx.Err(); err != nil {
		return models.RiskAssessment{}, err
	}

	prompt := fmt.Sprintf(`Assess the risk of this trading decision:

Symbol: %s
Action: %s
Quantity: %d
Price: $%.2f

Market data:
- Implied volatility: %.2f%%
- Volume: %d
- Market cap: $%.2fB

Provide a risk score (0-100), the main risk factors, mitigation
recommendations, and whether you would approve the trade.`,
		symbol, decision.Action, decision.Quantity, decision.Price,
		snapshot.ChangePercent, snapshot.Volume, snapshot.MarketCap/1e9)

	rationale := r.gen.Generate(ctx, prompt, r.role)

	volatility := math.Abs(snapshot.ChangePercent) / 100
	liquidity := math.Min(float64(snapshot.Volume)/1_000_000, 10) / 10
	riskScore := volatility*50 + (1-liquidity)*30 + r.rng.Uniform(0, 20)
	riskScore = math.Max(0, math.Min(riskScore, 100))

	assessment := models.RiskAssessment{
		Symbol:          symbol,
		RiskScore:       riskScore,
		Volatility:      volatility,
		LiquidityScore:  liquidity,
		CorrelationRisk: r.rng.Uniform(0.1, 0.8),
		Rationale:       rationale,
		Timestamp:       time.Now(),
	}

	r.record(models.Opinion{
		Agent:          r.name,
		Rationale:      rationale,
		Confidence:     100 - riskScore,
		Recommendation: decision.Action,
		Score:          riskScore,
		Timestamp:      assessment.Timestamp,
	})

	r.logger.Debug("risk assessed",
		applogger.String("symbol", symbol),
		applogger.Float64("risk_score", riskScore),
		applogger.Float64("liquidity", liquidity),
	)
	return assessment, nil
}
