// Package metrics records resolution, cache and export counters.
//
// Components take a Recorder and default to NoopRecorder, so metrics stay
// optional. PrometheusRecorder is the real implementation served on /metrics.
package metrics

import "time"

// Outcome labels for resolution counters.
const (
	OutcomeFound     = "found"
	OutcomeNotFound  = "not_found"
	OutcomeSentinel  = "sentinel"
	OutcomeSkipped   = "skipped"
	OutcomeViolation = "contract_violation"
	OutcomeError     = "error"
)

// Cache result labels.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheDedup = "dedup"
	CachePurge = "purge"
)

// Recorder is the set of observability hooks used across the site.
type Recorder interface {
	ObserveStoreQuery(collection string, d time.Duration, err error)
	IncResolve(collection, outcome string)
	IncRedirect(found bool)
	IncGlobalCache(key, result string)
	IncArchiveCache(result string)
	IncExportPage(success bool)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStoreQuery(string, time.Duration, error) {}
func (NoopRecorder) IncResolve(string, string)                      {}
func (NoopRecorder) IncRedirect(bool)                               {}
func (NoopRecorder) IncGlobalCache(string, string)                  {}
func (NoopRecorder) IncArchiveCache(string)                         {}
func (NoopRecorder) IncExportPage(bool)                             {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
