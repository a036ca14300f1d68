package repository

import (
	"context"

	"TradeDesk/internal/domain/models"
)

// NoopStore discards everything. Used when persistence is disabled.
type NoopStore struct{}

func (NoopStore) SaveDecision(context.Context, *models.TradingDecision, string) {}
func (NoopStore) SaveRiskAssessment(context.Context, *models.RiskAssessment)   {}
func (NoopStore) SaveDiscussion(context.Context, string, string, string)       {}
func (NoopStore) Close() error                                                 { return nil }

// NoopSink drops events. Used when no external event consumer is wired.
type NoopSink struct{}

func (NoopSink) Publish(context.Context, models.Event) error { return nil }
func (NoopSink) Close() error                                { return nil }
