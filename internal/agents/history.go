package agents

import (
	"sync"

	"TradeDesk/internal/domain/models"
)

// DefaultHistoryCapacity bounds per-agent opinion retention when no
// explicit capacity is configured.
const DefaultHistoryCapacity = 256

// History is a fixed-capacity ring buffer of opinions. Once full, each new
// opinion overwrites the oldest one, so long-running desks hold memory flat.
type History struct {
	mu    sync.Mutex
	buf   []models.Opinion
	next  int
	count int
}

// HistorySummary aggregates an agent's retained opinions.
type HistorySummary struct {
	Total         int            `json:"total"`
	Actions       map[string]int `json:"actions"`
	AvgConfidence float64        `json:"avg_confidence"`
}

// NewHistory creates a history retaining up to capacity opinions.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{buf: make([]models.Opinion, capacity)}
}

// Add appends an opinion, overwriting the oldest when full.
func (h *History) Add(op models.Opinion) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf[h.next] = op
	h.next = (h.next + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

// All returns the retained opinions oldest first.
func (h *History) All() []models.Opinion {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.copyLocked(h.count)
}

// Recent returns the most recent n opinions, oldest first.
func (h *History) Recent(n int) []models.Opinion {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n > h.count {
		n = h.count
	}
	return h.copyLocked(n)
}

// Len returns the number of retained opinions.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Summary returns counts per recommendation and the mean confidence.
func (h *History) Summary() HistorySummary {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := HistorySummary{Actions: make(map[string]int)}
	var confSum float64
	for _, op := range h.copyLocked(h.count) {
		s.Total++
		s.Actions[string(op.Recommendation)]++
		confSum += op.Confidence
	}
	if s.Total > 0 {
		s.AvgConfidence = confSum / float64(s.Total)
	}
	return s
}

// copyLocked returns the last n opinions oldest first. Caller holds the lock.
func (h *History) copyLocked(n int) []models.Opinion {
	out := make([]models.Opinion, 0, n)
	start := h.next - n
	for i := 0; i < n; i++ {
		idx := (start + i + len(h.buf)) % len(h.buf)
		out = append(out, h.buf[idx])
	}
	return out
}
