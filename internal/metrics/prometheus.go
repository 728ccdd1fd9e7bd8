//go:build !noprom

package metrics

import (
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

type promRecorder struct {
	expansionTotal   *prom.CounterVec
	expansionSeconds *prom.HistogramVec
	cacheLookups     *prom.CounterVec
	synthesisTotal   *prom.CounterVec
}

func (p *promRecorder) IncExpansion(outcome string) {
	p.expansionTotal.WithLabelValues(outcome).Inc()
}

func (p *promRecorder) ObserveExpansionSeconds(outcome string, seconds float64) {
	p.expansionSeconds.WithLabelValues(outcome).Observe(seconds)
}

func (p *promRecorder) IncCacheLookup(hit bool) {
	p.cacheLookups.WithLabelValues(strconv.FormatBool(hit)).Inc()
}

func (p *promRecorder) IncSynthesis(entity string) {
	p.synthesisTotal.WithLabelValues(entity).Inc()
}

// NewPrometheusRecorder creates a Recorder whose collectors are registered
// on reg. Registration panics on duplicate collectors, like MustRegister.
func NewPrometheusRecorder(reg prom.Registerer) Recorder {
	p := &promRecorder{
		expansionTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "dynsel_expansions_total",
			Help: "Total number of Select calls by outcome",
		}, []string{"outcome"}),
		expansionSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "dynsel_expansion_seconds",
			Help:    "Select call duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"outcome"}),
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Name: "dynsel_cache_lookups_total",
			Help: "Expansion cache lookups by hit",
		}, []string{"hit"}),
		synthesisTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "dynsel_syntheses_total",
			Help: "Selections synthesized per entity",
		}, []string{"entity"}),
	}

	reg.MustRegister(p.expansionTotal, p.expansionSeconds, p.cacheLookups, p.synthesisTotal)
	return p
}

func enablePrometheus(addr string) error {
	registry := prom.NewRegistry()
	SetRecorder(NewPrometheusRecorder(registry))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() { _ = http.ListenAndServe(addr, mux) }()
	return nil
}
