package agents

import (
	"context"
	"fmt"
	"testing"

	"TradeDesk/internal/domain/models"
	"TradeDesk/internal/domain/service"
	applogger "TradeDesk/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGen struct {
	reply string
}

func (g stubGen) Generate(_ context.Context, _, _ string) string {
	if g.reply == "" {
		return "generated rationale"
	}
	return g.reply
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func opinion(action models.Action, confidence float64) models.Opinion {
	return models.Opinion{Agent: "x", Recommendation: action, Confidence: confidence}
}

func TestMakeDecisionWeightedVote(t *testing.T) {
	trader := NewTrader(stubGen{}, testLogger(t), WithSeed(1))

	opinions := []models.Opinion{
		opinion(models.ActionBuy, 80),
		opinion(models.ActionBuy, 10),
		opinion(models.ActionSell, 50),
		opinion(models.ActionHold, 5),
	}

	d, err := trader.MakeDecision(context.Background(), "AAPL", opinions)
	require.NoError(t, err)
	assert.Equal(t, models.ActionBuy, d.Action, "buy weight 90 beats sell 50 and hold 5")
	assert.InDelta(t, (80.0+10+50+5)/4, d.Confidence, 1e-9)
	assert.Equal(t, "AAPL", d.Symbol)
}

func TestMakeDecisionTieFallsToHold(t *testing.T) {
	trader := NewTrader(stubGen{}, testLogger(t), WithSeed(1))

	d, err := trader.MakeDecision(context.Background(), "AAPL", []models.Opinion{
		opinion(models.ActionBuy, 50),
		opinion(models.ActionSell, 50),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActionHold, d.Action)
}

func TestMakeDecisionNoOpinionsHolds(t *testing.T) {
	trader := NewTrader(stubGen{}, testLogger(t), WithSeed(1))

	d, err := trader.MakeDecision(context.Background(), "AAPL", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ActionHold, d.Action)
	assert.Zero(t, d.Confidence)
}

func TestApprovalGateBoundaries(t *testing.T) {
	pm := NewPortfolioManager(stubGen{}, testLogger(t), WithSeed(1))

	decision := models.TradingDecision{Symbol: "AAPL", Action: models.ActionBuy, Confidence: 60.1}
	risk := models.RiskAssessment{RiskScore: 69.9, LiquidityScore: 0.31}

	approved, rationale, err := pm.ApproveTrade(context.Background(), decision, risk)
	require.NoError(t, err)
	assert.True(t, approved)
	assert.NotEmpty(t, rationale)

	cases := []struct {
		name       string
		riskScore  float64
		confidence float64
		liquidity  float64
	}{
		{"risk at threshold", 70, 60.1, 0.31},
		{"confidence at threshold", 69.9, 60, 0.31},
		{"liquidity at threshold", 69.9, 60.1, 0.3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := models.TradingDecision{Symbol: "AAPL", Action: models.ActionBuy, Confidence: tc.confidence}
			r := models.RiskAssessment{RiskScore: tc.riskScore, LiquidityScore: tc.liquidity}
			approved, _, err := pm.ApproveTrade(context.Background(), d, r)
			require.NoError(t, err)
			assert.False(t, approved)
		})
	}
}

func TestTechnicalAnalystRSIRule(t *testing.T) {
	analyst := NewTechnicalAnalyst(stubGen{}, testLogger(t), WithSeed(1))

	cases := []struct {
		rsi  float64
		want models.Action
	}{
		{25, models.ActionBuy},
		{30, models.ActionHold},
		{50, models.ActionHold},
		{70, models.ActionHold},
		{75, models.ActionSell},
	}
	for _, tc := range cases {
		op, err := analyst.Analyze(context.Background(), service.AnalysisInput{
			Snapshot:   models.MarketSnapshot{Symbol: "AAPL", Price: 100},
			Indicators: models.TechnicalIndicatorSet{Symbol: "AAPL", RSI: tc.rsi},
		})
		require.NoError(t, err)
		assert.Equal(t, tc.want, op.Recommendation, "rsi %.0f", tc.rsi)
		assert.GreaterOrEqual(t, op.Confidence, 75.0)
		assert.Less(t, op.Confidence, 95.0)
	}
}

func TestAnalystConfidenceRanges(t *testing.T) {
	log := testLogger(t)
	input := service.AnalysisInput{
		Snapshot:   models.MarketSnapshot{Symbol: "AAPL", Price: 100, Volume: 1_000_000},
		Indicators: models.TechnicalIndicatorSet{Symbol: "AAPL", RSI: 50},
	}

	cases := []struct {
		analyst *Analyst
		lo, hi  float64
	}{
		{NewFundamentalAnalyst(stubGen{}, log, WithSeed(2)), 60, 90},
		{NewSentimentAnalyst(stubGen{}, log, WithSeed(3)), 70, 95},
		{NewNewsAnalyst(stubGen{}, log, WithSeed(4)), 65, 85},
		{NewTechnicalAnalyst(stubGen{}, log, WithSeed(5)), 75, 95},
	}
	for _, tc := range cases {
		for i := 0; i < 50; i++ {
			op, err := tc.analyst.Analyze(context.Background(), input)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, op.Confidence, tc.lo, tc.analyst.Name())
			assert.Less(t, op.Confidence, tc.hi, tc.analyst.Name())
		}
	}
}

func TestResearcherStanceBias(t *testing.T) {
	bull := NewResearcher(StanceBullish, stubGen{}, testLogger(t), WithSeed(6))
	bear := NewResearcher(StanceBearish, stubGen{}, testLogger(t), WithSeed(7))

	const n = 500
	var bullBuys, bearSells int
	for i := 0; i < n; i++ {
		op, err := bull.Review(context.Background(), "AAPL", nil)
		require.NoError(t, err)
		require.Contains(t, []models.Action{models.ActionBuy, models.ActionHold}, op.Recommendation)
		if op.Recommendation == models.ActionBuy {
			bullBuys++
		}

		op, err = bear.Review(context.Background(), "AAPL", nil)
		require.NoError(t, err)
		require.Contains(t, []models.Action{models.ActionSell, models.ActionHold}, op.Recommendation)
		if op.Recommendation == models.ActionSell {
			bearSells++
		}
	}

	// 70% bias toward the stance, with generous slack for a 500-draw sample.
	assert.InDelta(t, 0.7, float64(bullBuys)/n, 0.1)
	assert.InDelta(t, 0.7, float64(bearSells)/n, 0.1)
}

func TestRiskFormulas(t *testing.T) {
	rm := NewRiskManager(stubGen{}, testLogger(t), WithSeed(8))

	decision := models.TradingDecision{Symbol: "AAPL", Action: models.ActionBuy, Quantity: 100, Price: 50}
	snapshot := models.MarketSnapshot{
		Symbol:        "AAPL",
		Price:         100,
		Volume:        5_000_000,
		ChangePercent: -3.5,
	}

	risk, err := rm.AssessRisk(context.Background(), "AAPL", decision, snapshot)
	require.NoError(t, err)

	assert.InDelta(t, 0.035, risk.Volatility, 1e-9)
	assert.InDelta(t, 0.5, risk.LiquidityScore, 1e-9)

	// score = vol*50 + (1-liq)*30 + U(0,20) = 1.75 + 15 + noise
	assert.GreaterOrEqual(t, risk.RiskScore, 16.75)
	assert.LessOrEqual(t, risk.RiskScore, 36.75)
	assert.GreaterOrEqual(t, risk.CorrelationRisk, 0.1)
	assert.LessOrEqual(t, risk.CorrelationRisk, 0.8)
}

func TestHistoryRingBufferRetention(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Add(models.Opinion{Agent: fmt.Sprintf("op%d", i), Confidence: float64(i)})
	}

	all := h.All()
	require.Len(t, all, 3)
	assert.Equal(t, "op2", all[0].Agent)
	assert.Equal(t, "op4", all[2].Agent)

	recent := h.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "op3", recent[0].Agent)
	assert.Equal(t, "op4", recent[1].Agent)
}

func TestHistorySummary(t *testing.T) {
	h := NewHistory(10)
	h.Add(models.Opinion{Recommendation: models.ActionBuy, Confidence: 80})
	h.Add(models.Opinion{Recommendation: models.ActionBuy, Confidence: 60})
	h.Add(models.Opinion{Recommendation: models.ActionHold, Confidence: 70})

	s := h.Summary()
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Actions[string(models.ActionBuy)])
	assert.Equal(t, 1, s.Actions[string(models.ActionHold)])
	assert.InDelta(t, 70.0, s.AvgConfidence, 1e-9)
}

func TestAnalystRecordsHistory(t *testing.T) {
	analyst := NewTechnicalAnalyst(stubGen{}, testLogger(t), WithSeed(9))

	_, err := analyst.Analyze(context.Background(), service.AnalysisInput{
		Snapshot:   models.MarketSnapshot{Symbol: "AAPL"},
		Indicators: models.TechnicalIndicatorSet{RSI: 20},
	})
	require.NoError(t, err)

	hist := analyst.History()
	require.Len(t, hist, 1)
	assert.Equal(t, models.ActionBuy, hist[0].Recommendation)
}

func TestDiscussUsesGenerator(t *testing.T) {
	analyst := NewNewsAnalyst(stubGen{reply: "my two cents"}, testLogger(t), WithSeed(10))
	msg := analyst.Discuss(context.Background(), "AAPL outlook", "prior messages")
	assert.Equal(t, "my two cents", msg)
}
