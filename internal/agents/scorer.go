package agents

import (
	"fmt"

	"TradeDesk/internal/domain/models"
	"TradeDesk/internal/domain/service"
)

// Rand is the bounded randomness the scoring rules draw from. It stands in
// for unmodeled signal extraction until a real scoring pipeline replaces it.
type Rand interface {
	Uniform(lo, hi float64) float64
	Float64() float64
	PickAction(actions ...models.Action) models.Action
}

// Verdict is a scorer's structured output, independent of the generated
// narrative text.
type Verdict struct {
	Action     models.Action
	Confidence float64
	Score      float64
	Signals    map[string]string
}

// Scorer derives a structured recommendation from an analysis input. Rules
// are deterministic given their inputs and draws, so a fixed seed yields a
// reproducible verdict.
type Scorer interface {
	Score(rng Rand, input service.AnalysisInput) Verdict
}

// FundamentalScorer picks uniformly among the three actions with
// confidence in [60, 90).
type FundamentalScorer struct{}

func (FundamentalScorer) Score(rng Rand, _ service.AnalysisInput) Verdict {
	return Verdict{
		Action:     rng.PickAction(models.ActionBuy, models.ActionHold, models.ActionSell),
		Confidence: rng.Uniform(60, 90),
	}
}

// SentimentScorer draws a sentiment score in [-0.8, 0.8); above 0.3 is a
// buy, below -0.3 a sell. Confidence in [70, 95).
type SentimentScorer struct{}

func (SentimentScorer) Score(rng Rand, _ service.AnalysisInput) Verdict {
	score := rng.Uniform(-0.8, 0.8)
	action := models.ActionHold
	switch {
	case score > 0.3:
		action = models.ActionBuy
	case score < -0.3:
		action = models.ActionSell
	}
	return Verdict{
		Action:     action,
		Confidence: rng.Uniform(70, 95),
		Score:      score,
		Signals: map[string]string{
			"sentiment_score": fmt.Sprintf("%.2f", score),
		},
	}
}

// NewsScorer draws a news-impact score in [-0.5, 0.5); above 0.2 is a buy,
// below -0.2 a sell. Confidence in [65, 85).
type NewsScorer struct{}

func (NewsScorer) Score(rng Rand, _ service.AnalysisInput) Verdict {
	impact := rng.Uniform(-0.5, 0.5)
	action := models.ActionHold
	switch {
	case impact > 0.2:
		action = models.ActionBuy
	case impact < -0.2:
		action = models.ActionSell
	}
	return Verdict{
		Action:     action,
		Confidence: rng.Uniform(65, 85),
		Score:      impact,
		Signals: map[string]string{
			"news_impact": fmt.Sprintf("%.2f", impact),
		},
	}
}

// TechnicalScorer is the one fully deterministic rule: RSI below 30 is a
// buy, above 70 a sell. Confidence in [75, 95).
type TechnicalScorer struct{}

func (TechnicalScorer) Score(rng Rand, input service.AnalysisInput) Verdict {
	ind := input.Indicators

	action := models.ActionHold
	rsiSignal := "neutral"
	switch {
	case ind.RSI < 30:
		action = models.ActionBuy
		rsiSignal = "oversold"
	case ind.RSI > 70:
		action = models.ActionSell
		rsiSignal = "overbought"
	}

	macdSignal := "bearish"
	if ind.MACD > 0 {
		macdSignal = "bullish"
	}
	maSignal := "bearish"
	if ind.MovingAvg20 > ind.MovingAvg50 {
		maSignal = "bullish"
	}

	return Verdict{
		Action:     action,
		Confidence: rng.Uniform(75, 95),
		Score:      ind.RSI,
		Signals: map[string]string{
			"rsi_signal":  rsiSignal,
			"macd_signal": macdSignal,
			"ma_signal":   maSignal,
		},
	}
}
