package models

import "time"

// SymbolResult collects every artifact produced while analyzing one symbol.
// A failed pipeline leaves only Symbol, Err and Timestamp populated.
type SymbolResult struct {
	Symbol       string                 `json:"symbol"`
	Snapshot     *MarketSnapshot        `json:"market_data,omitempty"`
	Indicators   *TechnicalIndicatorSet `json:"technical_data,omitempty"`
	Opinions     []Opinion              `json:"analyses,omitempty"`
	Research     []Opinion              `json:"research,omitempty"`
	Discussion   []string               `json:"discussion_messages,omitempty"`
	Decision     *TradingDecision       `json:"trading_decision,omitempty"`
	Risk         *RiskAssessment        `json:"risk_assessment,omitempty"`
	Approved     bool                   `json:"approval"`
	ApprovalNote string                 `json:"approval_reasoning,omitempty"`
	Trade        *ExecutedTrade         `json:"executed_trade,omitempty"`
	Err          string                 `json:"error,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

// Failed reports whether this symbol's pipeline ended in its error slot.
func (r *SymbolResult) Failed() bool { return r.Err != "" }

// SessionSummary aggregates a finished session.
type SessionSummary struct {
	TotalSymbols       int     `json:"total_symbols"`
	SuccessfulAnalyses int     `json:"successful_analyses"`
	ApprovedTrades     int     `json:"approved_trades"`
	ExecutedTrades     int     `json:"executed_trades"`
	ApprovalRate       float64 `json:"approval_rate"`
	ExecutionRate      float64 `json:"execution_rate"`
}

// SessionResult is the outcome of one orchestrator run over a symbol set.
type SessionResult struct {
	SessionID string                   `json:"session_id"`
	Symbols   []string                 `json:"symbols"`
	StartTime time.Time                `json:"start_time"`
	EndTime   time.Time                `json:"end_time"`
	Duration  time.Duration            `json:"duration"`
	Results   map[string]*SymbolResult `json:"results"`
	Summary   SessionSummary           `json:"summary"`
}

// EventType identifies a streamed session event.
type EventType string

const (
	EventAnalysisStarted   EventType = "analysis_started"
	EventSymbolStarted     EventType = "symbol_started"
	EventAgentMessage      EventType = "agent_message"
	EventSymbolCompleted   EventType = "symbol_completed"
	EventAnalysisCompleted EventType = "analysis_completed"
	EventAnalysisError     EventType = "analysis_error"
)

// Event is one entry of the session event stream consumed by the
// presentation layer (websocket clients, Kafka).
type Event struct {
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	Symbol    string      `json:"symbol,omitempty"`
	Agent     string      `json:"agent,omitempty"`
	Message   string      `json:"message,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
