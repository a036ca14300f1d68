package middleware

import (
	"context"
	"sync"
	"time"

	"TradeDesk/internal/domain/models"
	domrepo "TradeDesk/internal/domain/repository"
	applogger "TradeDesk/pkg/logger"
)

// EventPipeline is a middleware between the analysis pipeline and the
// event consumers (websocket hub, Kafka). Publishing never blocks the
// caller: events go through a bounded buffer and a background worker
// fans them out; when the buffer is full the event is dropped and
// counted.
type EventPipeline struct {
	metrics domrepo.Metrics
	logger  *applogger.Logger

	sinkMu sync.RWMutex
	sinks  []domrepo.EventSink

	bufCh       chan models.Event
	stopCh      chan struct{}
	flushWindow time.Duration

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

type PipelineOption func(*EventPipeline)

// WithBufferSize sets the event buffer capacity.
func WithBufferSize(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.bufCh = make(chan models.Event, n)
		}
	}
}

// WithFlushWindow caps how long one fan-out to a sink may take.
func WithFlushWindow(d time.Duration) PipelineOption {
	return func(p *EventPipeline) {
		if d > 0 {
			p.flushWindow = d
		}
	}
}

// NewEventPipeline creates a pipeline with no sinks attached yet.
func NewEventPipeline(metrics domrepo.Metrics, log *applogger.Logger, opts ...PipelineOption) *EventPipeline {
	p := &EventPipeline{
		metrics:     metrics,
		logger:      log.With(applogger.String("component", "event_pipeline")),
		bufCh:       make(chan models.Event, 256),
		stopCh:      make(chan struct{}),
		flushWindow: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddSink registers a downstream consumer. Safe to call while running.
func (p *EventPipeline) AddSink(s domrepo.EventSink) {
	if s == nil {
		return
	}
	p.sinkMu.Lock()
	p.sinks = append(p.sinks, s)
	p.sinkMu.Unlock()
}

// Start launches the background fan-out worker.
func (p *EventPipeline) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-p.stopCh:
				// drain what is already buffered before exiting
				for {
					select {
					case ev := <-p.bufCh:
						p.fanOut(ev)
					default:
						return
					}
				}
			case ev := <-p.bufCh:
				p.fanOut(ev)
			}
		}
	}()
}

// Publish enqueues an event without blocking. Full buffer drops the
// event and records it.
func (p *EventPipeline) Publish(_ context.Context, ev models.Event) error {
	select {
	case p.bufCh <- ev:
	default:
		p.metrics.RecordError("event_buffer_full")
		p.logger.Warn("event dropped, buffer full",
			applogger.String("type", string(ev.Type)),
			applogger.String("symbol", ev.Symbol),
		)
	}
	return nil
}

// Close stops the worker, flushes the buffer, and closes every sink.
func (p *EventPipeline) Close() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return p.closeSinks()
	}
	p.started = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	return p.closeSinks()
}

func (p *EventPipeline) closeSinks() error {
	p.sinkMu.RLock()
	defer p.sinkMu.RUnlock()
	var firstErr error
	for _, s := range p.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *EventPipeline) fanOut(ev models.Event) {
	p.sinkMu.RLock()
	sinks := make([]domrepo.EventSink, len(p.sinks))
	copy(sinks, p.sinks)
	p.sinkMu.RUnlock()

	start := time.Now()
	for _, s := range sinks {
		ctx, cancel := context.WithTimeout(context.Background(), p.flushWindow)
		if err := s.Publish(ctx, ev); err != nil {
			p.metrics.RecordError("event_sink")
			p.logger.Warn("event sink publish failed",
				applogger.String("type", string(ev.Type)),
				applogger.Error(err),
			)
		}
		cancel()
	}
	p.metrics.RecordLatency("event_fanout", time.Since(start).Seconds())
}
