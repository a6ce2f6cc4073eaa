package coverage

import "time"

// Metrics receives the engine's instrumentation.  The prometheus AppMetrics
// satisfies it; tests use NopMetrics.
type Metrics interface {
	ObserveComputation(kind, status string, d time.Duration)
	CacheRequest(result string)
	CacheInvalidation(scope string)
	FounderFallbackHit()
	SnapshotPublished(sink, status string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) ObserveComputation(string, string, time.Duration) {}
func (NopMetrics) CacheRequest(string)                              {}
func (NopMetrics) CacheInvalidation(string)                         {}
func (NopMetrics) FounderFallbackHit()                              {}
func (NopMetrics) SnapshotPublished(string, string)                 {}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
