package metrics

import (
	"os"
	"sync"
	"time"
)

// Package metrics provides a minimal instrumentation interface with a no-op
// default and optional Prometheus-backed implementation enabled via env.

// Expansion outcomes used as the "outcome" label.
const (
	OutcomeExpanded = "expanded"
	OutcomeCached   = "cached"
	OutcomeFailed   = "failed"
)

// Recorder defines the metrics surface used by the expansion engine.
type Recorder interface {
	IncExpansion(outcome string)
	ObserveExpansionSeconds(outcome string, seconds float64)
	IncCacheLookup(hit bool)
	IncSynthesis(entity string)
}

// noopRecorder implements Recorder with no-ops.
type noopRecorder struct{}

func (n *noopRecorder) IncExpansion(string)                    {}
func (n *noopRecorder) ObserveExpansionSeconds(string, float64) {}
func (n *noopRecorder) IncCacheLookup(bool)                     {}
func (n *noopRecorder) IncSynthesis(string)                     {}

// Noop returns a Recorder that discards everything.
func Noop() Recorder {
	return &noopRecorder{}
}

var (
	recMu    sync.RWMutex
	recorder Recorder = &noopRecorder{}
)

// Default returns the current recorder.
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder swaps the global recorder implementation.
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	if r == nil {
		r = &noopRecorder{}
	}
	recorder = r
}

// TimeExpansion starts timing one Select call. The returned func records
// the outcome and the elapsed time on r.
func TimeExpansion(r Recorder) func(outcome string) {
	start := time.Now()
	return func(outcome string) {
		dur := time.Since(start).Seconds()
		r.IncExpansion(outcome)
		r.ObserveExpansionSeconds(outcome, dur)
	}
}

// InitFromEnv enables the Prometheus exporter if DYNSEL_METRICS_PROMETHEUS
// is set. It also starts a small HTTP server on DYNSEL_METRICS_ADDR
// (default :9090) with endpoints: /metrics (prom) and /healthz (200 ok).
func InitFromEnv() {
	if os.Getenv("DYNSEL_METRICS_PROMETHEUS") == "" {
		return
	}
	addr := os.Getenv("DYNSEL_METRICS_ADDR")
	if addr == "" {
		addr = ":9090"
	}
	// Try to install prometheus recorder; if it fails, keep noop.
	_ = enablePrometheus(addr)
}

// enablePrometheus is provided by build-tagged files.
