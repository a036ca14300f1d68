package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	fetchAttempts *prometheus.CounterVec
	fallbacks     *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	llmLatency    prometheus.Histogram
	analyses      *prometheus.CounterVec
	approvals     *prometheus.CounterVec
	executions    *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	inFlight      prometheus.Gauge
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradedesk_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"partition"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradedesk_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"partition"},
		),
		fetchAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradedesk_fetch_attempts_total",
				Help: "Total number of upstream market data fetch attempts",
			},
			[]string{"symbol"},
		),
		fallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradedesk_fallbacks_total",
				Help: "Total number of synthetic data fallbacks",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradedesk_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		llmLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tradedesk_llm_duration_seconds",
				Help:    "Duration of text generation calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		analyses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradedesk_analyses_total",
				Help: "Total number of completed symbol analyses",
			},
			[]string{"symbol", "action"},
		),
		approvals: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradedesk_approvals_total",
				Help: "Total number of portfolio approval outcomes",
			},
			[]string{"approved"},
		),
		executions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradedesk_executions_total",
				Help: "Total number of simulated trade executions",
			},
			[]string{"symbol", "action"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradedesk_last_price",
				Help: "Last observed price for a symbol",
			},
			[]string{"symbol"},
		),
		inFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradedesk_pipelines_in_flight",
				Help: "Number of symbol pipelines currently running",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradedesk_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordCacheHit(partition string) {
	r.cacheHits.WithLabelValues(partition).Inc()
}

func (r *Recorder) RecordCacheMiss(partition string) {
	r.cacheMisses.WithLabelValues(partition).Inc()
}

func (r *Recorder) RecordFetchAttempt(symbol string) {
	r.fetchAttempts.WithLabelValues(symbol).Inc()
}

func (r *Recorder) RecordFallback(symbol string) {
	r.fallbacks.WithLabelValues(symbol).Inc()
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordLLMLatency(seconds float64) {
	r.llmLatency.Observe(seconds)
}

func (r *Recorder) RecordAnalysis(symbol, action string) {
	r.analyses.WithLabelValues(symbol, action).Inc()
}

func (r *Recorder) RecordApproval(approved bool) {
	if approved {
		r.approvals.WithLabelValues("true").Inc()
	} else {
		r.approvals.WithLabelValues("false").Inc()
	}
}

func (r *Recorder) RecordExecution(symbol, action string) {
	r.executions.WithLabelValues(symbol, action).Inc()
}

func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) IncInFlight() {
	r.inFlight.Inc()
}

func (r *Recorder) DecInFlight() {
	r.inFlight.Dec()
}

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
