package service

import (
	"context"

	"TradeDesk/internal/domain/models"
)

// GenerationFailed is the sentinel text a TextGenerator yields when the
// underlying model call fails. Agents carry on with it; recommendation
// derivation never depends on the generated text.
const GenerationFailed = "analysis unavailable"

// TextGenerator produces free text from a prompt. Implementations never
// return an error to callers: on internal failure they log and return
// GenerationFailed.
type TextGenerator interface {
	Generate(ctx context.Context, prompt, systemPrompt string) string
}

// AnalysisInput is the data package handed to every analyst.
type AnalysisInput struct {
	Snapshot   models.MarketSnapshot
	Indicators models.TechnicalIndicatorSet
}

// Agent is the capability shared by every desk role: a stable name,
// participation in team discussions, and a bounded opinion history.
type Agent interface {
	Name() string
	Discuss(ctx context.Context, topic, discussionContext string) string
	History() []models.Opinion
}

// Analyst produces an opinion from market data.
type Analyst interface {
	Agent
	Analyze(ctx context.Context, in AnalysisInput) (models.Opinion, error)
}

// Researcher critiques a completed analyst set from a fixed stance.
type Researcher interface {
	Agent
	Review(ctx context.Context, symbol string, analyses []models.Opinion) (models.Opinion, error)
}
