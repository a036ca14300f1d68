package agents

import (
	"context"
	"fmt"
	"time"

	"TradeDesk/internal/domain/models"
	"TradeDesk/internal/domain/service"
	applogger "TradeDesk/pkg/logger"
)

const portfolioRole = `You are a senior portfolio manager. Make final calls on trade approval,
capital allocation, portfolio diversification, and return versus risk
objectives.`

// PortfolioManager gates executions with a three-part approval rule.
type PortfolioManager struct {
	agentCore
}

// NewPortfolioManager builds the portfolio seat.
func NewPortfolioManager(gen service.TextGenerator, log *applogger.Logger, opts ...Option) *PortfolioManager {
	return &PortfolioManager{agentCore: newCore("Portfolio Manager", portfolioRole, gen, log, opts...)}
}

// ApproveTrade approves only when all three conjuncts hold: risk score
// under 70, decision confidence over 60, and liquidity above 0.3.
func (p *PortfolioManager) ApproveTrade(ctx context.Context, decision models.TradingDecision, risk models.RiskAssessment) (bool, string, error) {
	if err := ctx.Err(); err != nil {
		return false, "", err
	}

	prompt := fmt.Sprintf(`Evaluate this trading decision for approval:

Decision: %s %d %s
Price: $%.2f
Confidence: %.1f%%

Risk assessment:
- Risk score: %.1f/100
- Volatility: %.2f
- Liquidity: %.2f

Answer APPROVE or REJECT with your justification.`,
		decision.Action, decision.Quantity, decision.Symbol, decision.Price,
		decision.Confidence, risk.RiskScore, risk.Volatility, risk.LiquidityScore)

	rationale := p.gen.Generate(ctx, prompt, p.role)

	approved := risk.RiskScore < 70 &&
		decision.Confidence > 60 &&
		risk.LiquidityScore > 0.3

	recommendation := models.ActionHold
	if approved {
		recommendation = decision.Action
	}
	p.record(models.Opinion{
		Agent:          p.name,
		Rationale:      rationale,
		Confidence:     decision.Confidence,
		Recommendation: recommendation,
		Timestamp:      time.Now(),
	})

	p.logger.Info("approval decided",
		applogger.String("symbol", decision.Symbol),
		applogger.Bool("approved", approved),
		applogger.Float64("risk_score", risk.RiskScore),
	)
	return approved, rationale, nil
}
