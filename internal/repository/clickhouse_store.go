package repository

import (
	"context"
	"database/sql"
	"time"

	"TradeDesk/internal/domain/models"
	pkgch "TradeDesk/pkg/clickhouse"
	applogger "TradeDesk/pkg/logger"
)

// Schema holds the tables backing the decision store. Run through
// Client.InitSchema at startup.
var Schema = []string{
	`CREATE DATABASE IF NOT EXISTS tradedesk`,
	`CREATE TABLE IF NOT EXISTS tradedesk.decisions (
        ts          DateTime64(3),
        symbol      LowCardinality(String),
        agent_type  LowCardinality(String),
        action      LowCardinality(String),
        quantity    Int64,
        price       Float64,
        confidence  Float64,
        risk_tier   LowCardinality(String),
        rationale   String
    ) ENGINE = MergeTree ORDER BY (symbol, ts)`,
	`CREATE TABLE IF NOT EXISTS tradedesk.risk_assessments (
        ts               DateTime64(3),
        symbol           LowCardinality(String),
        risk_score       Float64,
        volatility       Float64,
        liquidity_score  Float64,
        correlation_risk Float64,
        rationale        String
    ) ENGINE = MergeTree ORDER BY (symbol, ts)`,
	`CREATE TABLE IF NOT EXISTS tradedesk.discussions (
        ts         DateTime64(3),
        session_id String,
        agent      LowCardinality(String),
        message    String
    ) ENGINE = MergeTree ORDER BY (session_id, ts)`,
}

// CHDecisionStore persists analysis artifacts to ClickHouse. Writes run
// on their own goroutine with a detached context: a slow or failing
// store never stalls a session.
type CHDecisionStore struct {
	db           *sql.DB
	logger       *applogger.Logger
	writeTimeout time.Duration
}

func NewCHDecisionStore(ch *pkgch.Client, log *applogger.Logger) *CHDecisionStore {
	return &CHDecisionStore{
		db:           ch.DB(),
		logger:       log.With(applogger.String("component", "decision_store")),
		writeTimeout: 10 * time.Second,
	}
}

func (s *CHDecisionStore) SaveDecision(_ context.Context, d *models.TradingDecision, agentType string) {
	if d == nil {
		return
	}
	dec := *d
	s.async("decision", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO tradedesk.decisions
             (ts, symbol, agent_type, action, quantity, price, confidence, risk_tier, rationale)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			dec.Timestamp, dec.Symbol, agentType, string(dec.Action),
			int64(dec.Quantity), dec.Price, dec.Confidence, string(dec.RiskTier), dec.Rationale,
		)
		return err
	})
}

func (s *CHDecisionStore) SaveRiskAssessment(_ context.Context, a *models.RiskAssessment) {
	if a == nil {
		return
	}
	ass := *a
	s.async("risk_assessment", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO tradedesk.risk_assessments
             (ts, symbol, risk_score, volatility, liquidity_score, correlation_risk, rationale)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ass.Timestamp, ass.Symbol, ass.RiskScore, ass.Volatility,
			ass.LiquidityScore, ass.CorrelationRisk, ass.Rationale,
		)
		return err
	})
}

func (s *CHDecisionStore) SaveDiscussion(_ context.Context, sessionID, agentName, message string) {
	s.async("discussion", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO tradedesk.discussions (ts, session_id, agent, message) VALUES (?, ?, ?, ?)`,
			time.Now(), sessionID, agentName, message,
		)
		return err
	})
}

func (s *CHDecisionStore) Close() error { return nil }

func (s *CHDecisionStore) async(what string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("store write panic",
					applogger.String("what", what),
					applogger.Any("panic", r),
				)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Error("store write failed",
				applogger.String("what", what),
				applogger.Error(err),
			)
		}
	}()
}
