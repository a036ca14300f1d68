package metrics

// Noop discards every observation. Tests use it to avoid registering
// collectors on the global Prometheus registry.
type Noop struct{}

func (Noop) RecordCacheHit(string)          {}
func (Noop) RecordCacheMiss(string)         {}
func (Noop) RecordFetchAttempt(string)      {}
func (Noop) RecordFallback(string)          {}
func (Noop) RecordError(string)             {}
func (Noop) RecordLLMLatency(float64)       {}
func (Noop) RecordAnalysis(string, string)  {}
func (Noop) RecordApproval(bool)            {}
func (Noop) RecordExecution(string, string) {}
func (Noop) RecordLastPrice(string, float64) {}
func (Noop) IncInFlight()                   {}
func (Noop) DecInFlight()                   {}
func (Noop) RecordLatency(string, float64)  {}
