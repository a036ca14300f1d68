package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action is a trading recommendation or order side.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// RiskTier buckets a decision by riskiness.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// Opinion is one agent's structured view on a symbol: a recommendation,
// a confidence in [0,100] and a free-text rationale. Score carries the
// agent-specific scalar (sentiment score, news impact) when the role has
// one; Signals carries categorical labels (technical analyst only).
type Opinion struct {
	Agent          string            `json:"agent"`
	Rationale      string            `json:"rationale"`
	Confidence     float64           `json:"confidence"`
	Recommendation Action            `json:"recommendation"`
	Score          float64           `json:"score,omitempty"`
	Signals        map[string]string `json:"signals,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
}

// TradingDecision is the aggregated outcome of all opinions for a symbol.
// Written once; treated as immutable downstream.
type TradingDecision struct {
	Symbol     string    `json:"symbol"`
	Action     Action    `json:"action"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"`
	Confidence float64   `json:"confidence"`
	Rationale  string    `json:"rationale"`
	RiskTier   RiskTier  `json:"risk_tier"`
	Timestamp  time.Time `json:"timestamp"`
}

// RiskAssessment scores a decision against current market conditions.
type RiskAssessment struct {
	Symbol          string    `json:"symbol"`
	RiskScore       float64   `json:"risk_score"`
	Volatility      float64   `json:"volatility"`
	LiquidityScore  float64   `json:"liquidity_score"`
	CorrelationRisk float64   `json:"correlation_risk"`
	Rationale       string    `json:"rationale"`
	Timestamp       time.Time `json:"timestamp"`
}

// ExecutedTrade is one entry of the exchange's append-only ledger.
type ExecutedTrade struct {
	OrderID        string          `json:"order_id"`
	Symbol         string          `json:"symbol"`
	Action         Action          `json:"action"`
	Quantity       int             `json:"quantity"`
	RequestedPrice decimal.Decimal `json:"requested_price"`
	ExecutedPrice  decimal.Decimal `json:"executed_price"`
	Timestamp      time.Time       `json:"timestamp"`
	Status         string          `json:"status"`
}
