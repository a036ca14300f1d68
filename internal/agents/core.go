package agents

import (
	"context"
	"fmt"
	"time"

	"TradeDesk/internal/domain/models"
	"TradeDesk/internal/domain/service"
	applogger "TradeDesk/pkg/logger"
)

// Option configures the shared agent core.
type Option func(*agentCore)

// WithSeed fixes the agent's random source. Tests use this for
// reproducible verdicts.
func WithSeed(seed int64) Option {
	return func(c *agentCore) {
		c.rng = newLockedRand(seed)
	}
}

// WithHistoryCapacity bounds the agent's opinion retention.
func WithHistoryCapacity(capacity int) Option {
	return func(c *agentCore) {
		c.history = NewHistory(capacity)
	}
}

// agentCore carries what every desk agent shares: a name, a role prompt,
// the text generator, bounded opinion history, and a concurrency-safe
// random source.
type agentCore struct {
	name    string
	role    string
	gen     service.TextGenerator
	history *History
	rng     *lockedRand
	logger  *applogger.Logger
}

func newCore(name, role string, gen service.TextGenerator, log *applogger.Logger, opts ...Option) agentCore {
	c := agentCore{
		name:    name,
		role:    role,
		gen:     gen,
		history: NewHistory(DefaultHistoryCapacity),
		rng:     newLockedRand(time.Now().UnixNano()),
		logger:  log,
	}

	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *agentCore) Name() string {
	return c.name
}

func (c *agentCore) History() []models.Opinion {
	return c.history.All()
}

// HistorySummary aggregates the agent's retained opinions.
func (c *agentCore) HistorySummary() HistorySummary {
	return c.history.Summary()
}

// Discuss contributes one message to a desk discussion, speaking from the
// agent's specialty with the given running context.
func (c *agentCore) Discuss(ctx context.Context, topic, discussionContext string) string {
	prompt := fmt.Sprintf(`You are %s. Join the discussion on: %s

Context so far:
%s

Give your perspective from your specialty. Be concise but informative.`,
		c.name, topic, discussionContext)

	return c.gen.Generate(ctx, prompt, c.role)
}

func (c *agentCore) record(op models.Opinion) {
	c.history.Add(op)
}

func (c *agentCore) opinion(rationale string, action models.Action, confidence, score float64, signals map[string]string) models.Opinion {
	op := models.Opinion{
		Agent:          c.name,
		Rationale:      rationale,
		Confidence:     confidence,
		Recommendation: action,
		Score:          score,
		Signals:        signals,
		Timestamp:      time.Now(),
	}
	c.record(op)
	return op
}
