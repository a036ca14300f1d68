package repository

import (
	"context"

	"TradeDesk/internal/domain/models"
)

// DecisionStore persists decisions, assessments and discussion transcripts.
// All writes are fire-and-forget: implementations must never block the
// analysis pipeline and must swallow (but record) their own failures.
type DecisionStore interface {
	SaveDecision(ctx context.Context, d *models.TradingDecision, agentType string)
	SaveRiskAssessment(ctx context.Context, a *models.RiskAssessment)
	SaveDiscussion(ctx context.Context, sessionID, agentName, message string)
	Close() error
}

// EventSink receives session events for an external consumer.
type EventSink interface {
	Publish(ctx context.Context, ev models.Event) error
	Close() error
}

// Metrics records operational metrics for the desk.
type Metrics interface {
	RecordCacheHit(partition string)
	RecordCacheMiss(partition string)
	RecordFetchAttempt(symbol string)
	RecordFallback(symbol string)
	RecordError(kind string)
	RecordLLMLatency(seconds float64)
	RecordAnalysis(symbol string, action string)
	RecordApproval(approved bool)
	RecordExecution(symbol string, action string)
	RecordLastPrice(symbol string, price float64)
	IncInFlight()
	DecInFlight()
	RecordLatency(op string, seconds float64)
}
