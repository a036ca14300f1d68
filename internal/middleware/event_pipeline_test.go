package middleware

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeDesk/internal/domain/models"
	applogger "TradeDesk/pkg/logger"
	"TradeDesk/pkg/metrics"
)

type recordingSink struct {
	mu     sync.Mutex
	events []models.Event
	closed bool
}

func (s *recordingSink) Publish(_ context.Context, ev models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) snapshot() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}

func pipelineLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func TestPipelineDeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	p := NewEventPipeline(metrics.Noop{}, pipelineLogger(t))
	p.AddSink(sink)
	p.Start()

	for i := 0; i < 10; i++ {
		require.NoError(t, p.Publish(context.Background(), models.Event{
			Type:   models.EventAgentMessage,
			Symbol: "AAPL",
			Agent:  "technical_analyst",
		}))
	}
	require.NoError(t, p.Close())

	got := sink.snapshot()
	assert.Len(t, got, 10)
	assert.True(t, sink.closed)
}

func TestPipelinePublishNeverBlocksWhenFull(t *testing.T) {
	sink := &recordingSink{}
	p := NewEventPipeline(metrics.Noop{}, pipelineLogger(t), WithBufferSize(2))
	p.AddSink(sink)
	// worker not started: buffer fills after two events

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			_ = p.Publish(context.Background(), models.Event{Type: models.EventAgentMessage})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on full buffer")
	}
}

func TestPipelineCloseFlushesBuffered(t *testing.T) {
	sink := &recordingSink{}
	p := NewEventPipeline(metrics.Noop{}, pipelineLogger(t), WithBufferSize(16))
	p.AddSink(sink)

	for i := 0; i < 5; i++ {
		require.NoError(t, p.Publish(context.Background(), models.Event{Type: models.EventSymbolCompleted}))
	}
	p.Start()
	require.NoError(t, p.Close())

	assert.Len(t, sink.snapshot(), 5)
}
