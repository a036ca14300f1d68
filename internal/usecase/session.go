package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"TradeDesk/internal/agents"
	"TradeDesk/internal/domain/models"
	"TradeDesk/internal/domain/repository"
	"TradeDesk/internal/domain/service"
	"TradeDesk/internal/exchange"
	applogger "TradeDesk/pkg/logger"
	"TradeDesk/pkg/util"
)

// MarketData is the slice of the provider the desk needs.
type MarketData interface {
	GetSnapshot(ctx context.Context, symbol string) (models.MarketSnapshot, error)
	GetIndicators(ctx context.Context, symbol string) (models.TechnicalIndicatorSet, error)
}

// AgentPerformance summarizes one agent's opinion history.
type AgentPerformance struct {
	TotalAnalyses     int            `json:"total_analyses"`
	AverageConfidence float64        `json:"average_confidence"`
	Recommendations   map[string]int `json:"recommendations"`
	LastAnalysis      time.Time      `json:"last_analysis"`
}

type deskConfig struct {
	batchSize        int
	maxParallel      int
	discussionRounds int
	contextWindow    int
	agentOpts        []agents.Option
}

type DeskOption func(*deskConfig)

// WithBatchSize sets how many symbols form one batch.
func WithBatchSize(n int) DeskOption {
	return func(c *deskConfig) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithMaxParallel caps concurrent symbol pipelines within a batch.
func WithMaxParallel(n int) DeskOption {
	return func(c *deskConfig) {
		if n > 0 {
			c.maxParallel = n
		}
	}
}

// WithDiscussionRounds sets how many table rounds the team holds.
func WithDiscussionRounds(n int) DeskOption {
	return func(c *deskConfig) {
		if n > 0 {
			c.discussionRounds = n
		}
	}
}

// WithContextWindow bounds how many prior messages a discussion prompt
// carries.
func WithContextWindow(n int) DeskOption {
	return func(c *deskConfig) {
		if n > 0 {
			c.contextWindow = n
		}
	}
}

// WithAgentOptions forwards options (seed, history capacity) to every
// agent the desk builds.
func WithAgentOptions(opts ...agents.Option) DeskOption {
	return func(c *deskConfig) { c.agentOpts = append(c.agentOpts, opts...) }
}

// Desk runs the multi-agent analysis pipeline: four analysts, two
// researchers, a trader, a risk manager and a portfolio manager around
// one market data provider and one simulated exchange.
type Desk struct {
	provider MarketData
	exchange *exchange.Exchange
	store    repository.DecisionStore
	events   repository.EventSink
	metrics  repository.Metrics
	logger   *applogger.Logger
	cfg      deskConfig

	analysts    []service.Analyst
	researchers []service.Researcher
	trader      *agents.Trader
	risk        *agents.RiskManager
	portfolio   *agents.PortfolioManager
	allAgents   []service.Agent
}

// NewDesk assembles the full desk. store and events may be the noop
// implementations but must not be nil.
func NewDesk(
	provider MarketData,
	ex *exchange.Exchange,
	store repository.DecisionStore,
	events repository.EventSink,
	m repository.Metrics,
	gen service.TextGenerator,
	log *applogger.Logger,
	opts ...DeskOption,
) *Desk {
	cfg := deskConfig{
		batchSize:        4,
		maxParallel:      4,
		discussionRounds: 2,
		contextWindow:    5,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Desk{
		provider: provider,
		exchange: ex,
		store:    store,
		events:   events,
		metrics:  m,
		logger:   log.With(applogger.String("component", "desk")),
		cfg:      cfg,
	}

	d.analysts = []service.Analyst{
		agents.NewFundamentalAnalyst(gen, log, cfg.agentOpts...),
		agents.NewSentimentAnalyst(gen, log, cfg.agentOpts...),
		agents.NewNewsAnalyst(gen, log, cfg.agentOpts...),
		agents.NewTechnicalAnalyst(gen, log, cfg.agentOpts...),
	}
	d.researchers = []service.Researcher{
		agents.NewResearcher(agents.StanceBullish, gen, log, cfg.agentOpts...),
		agents.NewResearcher(agents.StanceBearish, gen, log, cfg.agentOpts...),
	}
	d.trader = agents.NewTrader(gen, log, cfg.agentOpts...)
	d.risk = agents.NewRiskManager(gen, log, cfg.agentOpts...)
	d.portfolio = agents.NewPortfolioManager(gen, log, cfg.agentOpts...)

	// fixed discussion order: analysts, researchers, then the decision chain
	d.allAgents = []service.Agent{
		d.analysts[0], d.analysts[1], d.analysts[2], d.analysts[3],
		d.researchers[0], d.researchers[1],
		d.trader, d.risk, d.portfolio,
	}
	return d
}

// Agents returns the desk roster in discussion order.
func (d *Desk) Agents() []service.Agent { return d.allAgents }

// Exchange exposes the desk's execution venue.
func (d *Desk) Exchange() *exchange.Exchange { return d.exchange }

// AnalyzeSymbol runs the full single-symbol pipeline.
func (d *Desk) AnalyzeSymbol(ctx context.Context, symbol string) (*models.SymbolResult, error) {
	sessionID := fmt.Sprintf("session_%s_%d", symbol, time.Now().Unix())
	return d.analyzeSymbol(ctx, sessionID, symbol)
}

func (d *Desk) analyzeSymbol(ctx context.Context, sessionID, symbol string) (*models.SymbolResult, error) {
	start := time.Now()
	d.metrics.IncInFlight()
	defer func() {
		d.metrics.DecInFlight()
		d.metrics.RecordLatency("analyze_symbol", time.Since(start).Seconds())
	}()

	d.logger.Info("starting analysis", applogger.String("symbol", symbol))

	snapshot, err := d.provider.GetSnapshot(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("market data for %s: %w", symbol, err)
	}
	indicators, err := d.provider.GetIndicators(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("indicators for %s: %w", symbol, err)
	}
	input := service.AnalysisInput{Snapshot: snapshot, Indicators: indicators}

	analyses, err := d.runAnalysts(ctx, input)
	if err != nil {
		return nil, err
	}
	research, err := d.runResearchers(ctx, symbol, analyses)
	if err != nil {
		return nil, err
	}

	discussion := d.conductDiscussion(ctx, sessionID, symbol, snapshot, analyses, research)

	all := make([]models.Opinion, 0, len(analyses)+len(research))
	all = append(all, analyses...)
	all = append(all, research...)

	decision, err := d.trader.MakeDecision(ctx, symbol, all)
	if err != nil {
		return nil, fmt.Errorf("trading decision for %s: %w", symbol, err)
	}
	d.metrics.RecordAnalysis(symbol, string(decision.Action))
	d.store.SaveDecision(ctx, &decision, "trading_agent")

	assessment, err := d.risk.AssessRisk(ctx, symbol, decision, snapshot)
	if err != nil {
		return nil, fmt.Errorf("risk assessment for %s: %w", symbol, err)
	}
	d.store.SaveRiskAssessment(ctx, &assessment)

	approved, note, err := d.portfolio.ApproveTrade(ctx, decision, assessment)
	if err != nil {
		return nil, fmt.Errorf("approval for %s: %w", symbol, err)
	}
	d.metrics.RecordApproval(approved)

	result := &models.SymbolResult{
		Symbol:       symbol,
		Snapshot:     &snapshot,
		Indicators:   &indicators,
		Opinions:     analyses,
		Research:     research,
		Discussion:   discussion,
		Decision:     &decision,
		Risk:         &assessment,
		Approved:     approved,
		ApprovalNote: note,
		Timestamp:    time.Now(),
	}

	if approved {
		trade, execErr := d.exchange.ExecuteTrade(ctx, &decision)
		if execErr != nil {
			d.logger.Warn("execution failed",
				applogger.String("symbol", symbol),
				applogger.Error(execErr),
			)
		} else {
			result.Trade = trade
		}
	}

	d.logger.Info("analysis completed",
		applogger.String("symbol", symbol),
		applogger.String("action", string(decision.Action)),
		applogger.Bool("approved", approved),
	)
	return result, nil
}

func (d *Desk) runAnalysts(ctx context.Context, input service.AnalysisInput) ([]models.Opinion, error) {
	type slot struct {
		op  models.Opinion
		err error
	}
	slots := make([]slot, len(d.analysts))
	var wg sync.WaitGroup
	for i, a := range d.analysts {
		wg.Add(1)
		go func(i int, a service.Analyst) {
			defer wg.Done()
			op, err := a.Analyze(ctx, input)
			slots[i] = slot{op: op, err: err}
		}(i, a)
	}
	wg.Wait()

	out := make([]models.Opinion, 0, len(slots))
	for _, s := range slots {
		if s.err != nil {
			return nil, fmt.Errorf("analyst stage: %w", s.err)
		}
		out = append(out, s.op)
	}
	return out, nil
}

func (d *Desk) runResearchers(ctx context.Context, symbol string, analyses []models.Opinion) ([]models.Opinion, error) {
	type slot struct {
		op  models.Opinion
		err error
	}
	slots := make([]slot, len(d.researchers))
	var wg sync.WaitGroup
	for i, r := range d.researchers {
		wg.Add(1)
		go func(i int, r service.Researcher) {
			defer wg.Done()
			op, err := r.Review(ctx, symbol, analyses)
			slots[i] = slot{op: op, err: err}
		}(i, r)
	}
	wg.Wait()

	out := make([]models.Opinion, 0, len(slots))
	for _, s := range slots {
		if s.err != nil {
			return nil, fmt.Errorf("research stage: %w", s.err)
		}
		out = append(out, s.op)
	}
	return out, nil
}

// conductDiscussion runs the sequential table rounds. Each agent in the
// fixed order contributes one message per round and sees the most
// recent messages, bounded by the context window.
func (d *Desk) conductDiscussion(
	ctx context.Context,
	sessionID, symbol string,
	snapshot models.MarketSnapshot,
	analyses, research []models.Opinion,
) []string {
	topic := fmt.Sprintf("Trading strategy for %s", symbol)
	base := discussionBase(symbol, snapshot, analyses, research)

	var messages []string
	for round := 1; round <= d.cfg.discussionRounds; round++ {
		d.logger.Debug("discussion round",
			applogger.String("symbol", symbol),
			applogger.Int("round", round),
		)
		for _, agent := range d.allAgents {
			prompt := base
			if len(messages) > 0 {
				prompt += "\n\nPrior discussion:\n" + strings.Join(util.Tail(messages, d.cfg.contextWindow), "\n")
			}
			msg := agent.Discuss(ctx, topic, prompt)
			formatted := fmt.Sprintf("%s: %s", agent.Name(), msg)
			messages = append(messages, formatted)

			d.store.SaveDiscussion(ctx, sessionID, agent.Name(), msg)
			d.emit(ctx, models.Event{
				Type:      models.EventAgentMessage,
				SessionID: sessionID,
				Symbol:    symbol,
				Agent:     agent.Name(),
				Message:   msg,
			})
		}
	}
	return messages
}

func discussionBase(symbol string, snapshot models.MarketSnapshot, analyses, research []models.Opinion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis of %s:\n", symbol)
	fmt.Fprintf(&b, "Current price: $%.2f\n", snapshot.Price)
	fmt.Fprintf(&b, "Change: %.2f%%\n", snapshot.ChangePercent)
	fmt.Fprintf(&b, "Volume: %d\n", snapshot.Volume)
	b.WriteString("Specialist analyses:\n")
	for _, a := range analyses {
		fmt.Fprintf(&b, "- %s: %s\n", a.Agent, a.Recommendation)
	}
	b.WriteString("Research:\n")
	for _, r := range research {
		fmt.Fprintf(&b, "- %s: %s\n", r.Agent, r.Recommendation)
	}
	return b.String()
}

// RunSession analyzes every symbol in fixed-size batches. Batches run
// strictly in order; within a batch, symbols run concurrently under the
// parallelism cap. One symbol's failure lands in its own error slot and
// never aborts siblings.
func (d *Desk) RunSession(ctx context.Context, symbols []string) *models.SessionResult {
	return d.RunSessionWithID(ctx, NewSessionID(), symbols)
}

// NewSessionID mints an identifier for one session run.
func NewSessionID() string {
	return fmt.Sprintf("session_%d", time.Now().UnixNano())
}

// RunSessionWithID is RunSession under a caller-chosen identifier, so a
// caller can hand out the id before the run completes.
func (d *Desk) RunSessionWithID(ctx context.Context, sessionID string, symbols []string) *models.SessionResult {
	session := &models.SessionResult{
		SessionID: sessionID,
		Symbols:   symbols,
		StartTime: time.Now(),
		Results:   make(map[string]*models.SymbolResult, len(symbols)),
	}
	d.logger.Info("starting trading session",
		applogger.String("session_id", session.SessionID),
		applogger.Int("symbols", len(symbols)),
	)
	d.emit(ctx, models.Event{
		Type:      models.EventAnalysisStarted,
		SessionID: session.SessionID,
		Payload:   symbols,
	})

	var mu sync.Mutex
	for _, batch := range util.Batch(symbols, d.cfg.batchSize) {
		sem := make(chan struct{}, d.cfg.maxParallel)
		var wg sync.WaitGroup
		for _, symbol := range batch {
			wg.Add(1)
			go func(symbol string) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				res := d.analyzeGuarded(ctx, session.SessionID, symbol)
				mu.Lock()
				session.Results[symbol] = res
				mu.Unlock()
			}(symbol)
		}
		wg.Wait()
	}

	session.EndTime = time.Now()
	session.Duration = session.EndTime.Sub(session.StartTime)
	session.Summary = summarize(symbols, session.Results)

	d.emit(ctx, models.Event{
		Type:      models.EventAnalysisCompleted,
		SessionID: session.SessionID,
		Payload:   session.Summary,
	})
	d.logger.Info("session completed",
		applogger.String("session_id", session.SessionID),
		applogger.Int("successful", session.Summary.SuccessfulAnalyses),
		applogger.Int("approved", session.Summary.ApprovedTrades),
		applogger.Int("executed", session.Summary.ExecutedTrades),
	)
	return session
}

// analyzeGuarded isolates one symbol's pipeline: panics and errors both
// end up in the symbol's error slot.
func (d *Desk) analyzeGuarded(ctx context.Context, sessionID, symbol string) (res *models.SymbolResult) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.RecordError("pipeline_panic")
			d.logger.Error("analysis panic",
				applogger.String("symbol", symbol),
				applogger.Any("panic", r),
			)
			res = &models.SymbolResult{
				Symbol:    symbol,
				Err:       fmt.Sprintf("panic: %v", r),
				Timestamp: time.Now(),
			}
			d.emit(ctx, models.Event{
				Type:      models.EventAnalysisError,
				SessionID: sessionID,
				Symbol:    symbol,
				Message:   res.Err,
			})
		}
	}()

	d.emit(ctx, models.Event{
		Type:      models.EventSymbolStarted,
		SessionID: sessionID,
		Symbol:    symbol,
	})

	res, err := d.analyzeSymbol(ctx, sessionID, symbol)
	if err != nil {
		d.metrics.RecordError("pipeline")
		d.logger.Error("analysis failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		res = &models.SymbolResult{
			Symbol:    symbol,
			Err:       err.Error(),
			Timestamp: time.Now(),
		}
		d.emit(ctx, models.Event{
			Type:      models.EventAnalysisError,
			SessionID: sessionID,
			Symbol:    symbol,
			Message:   err.Error(),
		})
		return res
	}

	d.emit(ctx, models.Event{
		Type:      models.EventSymbolCompleted,
		SessionID: sessionID,
		Symbol:    symbol,
		Payload:   res,
	})
	return res
}

func summarize(symbols []string, results map[string]*models.SymbolResult) models.SessionSummary {
	s := models.SessionSummary{TotalSymbols: len(symbols)}
	for _, r := range results {
		if r == nil || r.Failed() {
			continue
		}
		s.SuccessfulAnalyses++
		if r.Approved {
			s.ApprovedTrades++
		}
		if r.Trade != nil {
			s.ExecutedTrades++
		}
	}
	if s.SuccessfulAnalyses > 0 {
		s.ApprovalRate = float64(s.ApprovedTrades) / float64(s.SuccessfulAnalyses)
	}
	if s.ApprovedTrades > 0 {
		s.ExecutionRate = float64(s.ExecutedTrades) / float64(s.ApprovedTrades)
	}
	return s
}

// PortfolioPerformance aggregates the exchange ledger.
func (d *Desk) PortfolioPerformance() exchange.PortfolioPerformance {
	return d.exchange.Performance()
}

// AgentPerformance summarizes every agent's opinion history, keyed by
// agent name. Agents with no history are omitted.
func (d *Desk) AgentPerformance() map[string]AgentPerformance {
	out := make(map[string]AgentPerformance, len(d.allAgents))
	for _, agent := range d.allAgents {
		history := agent.History()
		if len(history) == 0 {
			continue
		}
		perf := AgentPerformance{
			TotalAnalyses:   len(history),
			Recommendations: map[string]int{"buy": 0, "sell": 0, "hold": 0},
		}
		var confSum float64
		for _, op := range history {
			confSum += op.Confidence
			perf.Recommendations[string(op.Recommendation)]++
		}
		perf.AverageConfidence = confSum / float64(len(history))
		perf.LastAnalysis = history[len(history)-1].Timestamp
		out[agent.Name()] = perf
	}
	return out
}

func (d *Desk) emit(ctx context.Context, ev models.Event) {
	ev.Timestamp = time.Now()
	if err := d.events.Publish(ctx, ev); err != nil {
		d.metrics.RecordError("event_publish")
	}
}
