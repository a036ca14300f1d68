package agents

import (
	"context"
	"fmt"

	"TradeDesk/internal/domain/models"
	"TradeDesk/internal/domain/service"
	applogger "TradeDesk/pkg/logger"
)

// Analyst produces one structured opinion per analysis pass: a generated
// narrative plus a scorer verdict derived independently of that text.
type Analyst struct {
	agentCore
	scorer Scorer
	prompt func(input service.AnalysisInput) string
}

// NewAnalyst assembles an analyst from a role, a scorer, and a prompt
// builder. The named constructors below cover the standard desk; custom
// scorers slot in here.
func NewAnalyst(
	name, role string,
	scorer Scorer,
	prompt func(input service.AnalysisInput) string,
	gen service.TextGenerator,
	log *applogger.Logger,
	opts ...Option,
) *Analyst {
	return &Analyst{
		agentCore: newCore(name, role, gen, log, opts...),
		scorer:    scorer,
		prompt:    prompt,
	}
}

func (a *Analyst) Analyze(ctx context.Context, input service.AnalysisInput) (models.Opinion, error) {
	if err := ctx.Err(); err != nil {
		return models.Opinion{}, err
	}

	rationale := a.gen.Generate(ctx, a.prompt(input), a.role)
	v := a.scorer.Score(a.rng, input)

	a.logger.Debug("analysis complete",
		applogger.String("agent", a.name),
		applogger.String("symbol", input.Snapshot.Symbol),
		applogger.String("action", string(v.Action)),
		applogger.Float64("confidence", v.Confidence),
	)

	return a.opinion(rationale, v.Action, v.Confidence, v.Score, v.Signals), nil
}

const fundamentalRole = `You are an experienced fundamental analyst. Study financial data,
performance metrics, and intrinsic company value. Focus on balance sheets,
cash flow and profitability, competitive position, and sustainable growth.`

// NewFundamentalAnalyst builds the fundamentals desk seat.
func NewFundamentalAnalyst(gen service.TextGenerator, log *applogger.Logger, opts ...Option) *Analyst {
	return NewAnalyst("Fundamental Analyst", fundamentalRole, FundamentalScorer{},
		func(in service.AnalysisInput) string {
			s := in.Snapshot
			return fmt.Sprintf(`Analyze the fundamentals of %s:

Current price: $%.2f
Market cap: $%.2fB
P/E ratio: %.2f
Change: %.2f%%

Provide a fundamental analysis covering intrinsic value, key risks and
opportunities, a buy/sell/hold recommendation, and your confidence (0-100%%).`,
				s.Symbol, s.Price, s.MarketCap/1e9, s.PERatio, s.ChangePercent)
		}, gen, log, opts...)
}

const sentimentRole = `You are a sentiment analyst for financial markets. Study social media,
news flow, and public opinion around assets. Focus on sentiment scoring,
opinion trends, and likely impact on market behavior.`

// NewSentimentAnalyst builds the sentiment desk seat.
func NewSentimentAnalyst(gen service.TextGenerator, log *applogger.Logger, opts ...Option) *Analyst {
	return NewAnalyst("Sentiment Analyst", sentimentRole, SentimentScorer{},
		func(in service.AnalysisInput) string {
			return fmt.Sprintf(`Analyze market sentiment for %s at $%.2f (%.2f%% today).

Provide a sentiment analysis covering the current mood around the asset,
public opinion trends, likely price impact, and a sentiment-based
recommendation.`,
				in.Snapshot.Symbol, in.Snapshot.Price, in.Snapshot.ChangePercent)
		}, gen, log, opts...)
}

const newsRole = `You are a news analyst specialized in macroeconomic impact. Study global
news, economic indicators, and geopolitical events. Focus on monetary
policy, sector trends, and event-driven moves.`

// NewNewsAnalyst builds the news desk seat.
func NewNewsAnalyst(gen service.TextGenerator, log *applogger.Logger, opts ...Option) *Analyst {
	return NewAnalyst("News Analyst", newsRole, NewsScorer{},
		func(in service.AnalysisInput) string {
			return fmt.Sprintf(`Analyze the news impact for %s in the current macro context.

Provide a news analysis covering the main events affecting the asset,
macroeconomic impact, sector trends, and a news-driven recommendation.`,
				in.Snapshot.Symbol)
		}, gen, log, opts...)
}

const technicalRole = `You are a technical analyst specialized in indicators and price patterns.
Study RSI, MACD, Bollinger bands, moving averages and momentum. Focus on
entry signals, support and resistance.`

// NewTechnicalAnalyst builds the technicals desk seat.
func NewTechnicalAnalyst(gen service.TextGenerator, log *applogger.Logger, opts ...Option) *Analyst {
	return NewAnalyst("Technical Analyst", technicalRole, TechnicalScorer{},
		func(in service.AnalysisInput) string {
			t := in.Indicators
			return fmt.Sprintf(`Analyze the technical indicators for %s:

RSI: %.2f
MACD: %.2f
MA20: $%.2f
MA50: $%.2f
Bollinger upper: $%.2f
Bollinger lower: $%.2f

Provide a technical analysis covering indicator interpretation, buy/sell
signals, support and resistance levels, and a technical recommendation.`,
				in.Snapshot.Symbol, t.RSI, t.MACD, t.MovingAvg20, t.MovingAvg50,
				t.BollingerUpper, t.BollingerLower)
		}, gen, log, opts...)
}
