package agents

import (
	"context"
	"fmt"
	"strings"

	"TradeDesk/internal/domain/models"
	"TradeDesk/internal/domain/service"
	applogger "TradeDesk/pkg/logger"
)

// Stance is a researcher's assigned perspective.
type Stance string

const (
	StanceBullish Stance = "bullish"
	StanceBearish Stance = "bearish"
)

// Researcher critiques the analysts' output from an assigned stance. With
// 70% probability it recommends in the direction of its stance, otherwise
// it holds.
type Researcher struct {
	agentCore
	stance Stance
}

// NewResearcher builds a researcher with the given stance.
func NewResearcher(stance Stance, gen service.TextGenerator, log *applogger.Logger, opts ...Option) *Researcher {
	name := "Bullish Researcher"
	if stance == StanceBearish {
		name = "Bearish Researcher"
	}
	role := fmt.Sprintf(`You are an experienced %s researcher. Critically evaluate the
presented analyses from a %s perspective. Question assumptions and surface
risks or opportunities the analysts may have missed.`, stance, stance)

	return &Researcher{
		agentCore: newCore(name, role, gen, log, opts...),
		stance:    stance,
	}
}

// Stance returns the researcher's assigned perspective.
func (r *Researcher) Stance() Stance {
	return r.stance
}

func (r *Researcher) Review(ctx context.Context, symbol string, analyses []models.Opinion) (models.Opinion, error) {
	if err := ctx.Err(); err != nil {
		return models.Opinion{}, err
	}

	var summary strings.Builder
	for _, a := range analyses {
		fmt.Fprintf(&summary, "%s: %s (confidence %.1f%%)\n", a.Agent, a.Recommendation, a.Confidence)
	}

	prompt := fmt.Sprintf(`Critically evaluate these analyses of %s from a %s perspective:

%s
Provide strengths and weaknesses of the analyses, overlooked risks or
opportunities, challenges to their assumptions, and your final
recommendation.`, symbol, r.stance, summary.String())

	rationale := r.gen.Generate(ctx, prompt, r.role)

	action := models.ActionHold
	if r.rng.Float64() > 0.3 {
		if r.stance == StanceBullish {
			action = models.ActionBuy
		} else {
			action = models.ActionSell
		}
	}
	confidence := r.rng.Uniform(60, 85)

	r.logger.Debug("research complete",
		applogger.String("agent", r.name),
		applogger.String("symbol", symbol),
		applogger.String("action", string(action)),
	)

	return r.opinion(rationale, action, confidence, 0, map[string]string{
		"stance": string(r.stance),
	}), nil
}
