package workspace

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"weblint/internal/diag"
)

// Metrics are the workspace counters exported on --metrics-addr.
type Metrics struct {
	filesAnalyzed prometheus.Counter
	diagnostics   *prometheus.CounterVec
	ruleDuration  *prometheus.HistogramVec
	fixIterations prometheus.Histogram
	cacheHits     prometheus.Counter
}

// NewMetrics registers the workspace metrics on reg. A nil reg uses a
// private registry, which keeps tests independent.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		filesAnalyzed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "weblint",
			Name:      "files_analyzed_total",
			Help:      "Files analyzed, cache hits included.",
		}),
		// Labels: severity (hint, info, warn, error, fatal)
		diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weblint",
			Name:      "diagnostics_total",
			Help:      "Diagnostics emitted by severity.",
		}, []string{"severity"}),
		// Labels: language
		ruleDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weblint",
			Name:      "rule_duration_seconds",
			Help:      "Time spent analyzing one file with every enabled rule.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"language"}),
		fixIterations: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weblint",
			Name:      "fix_iterations",
			Help:      "Analyze/apply rounds needed per fixed file.",
			Buckets:   []float64{1, 2, 3, 5, 8, 10},
		}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "weblint",
			Name:      "cache_hits_total",
			Help:      "Files answered from the on-disk result cache.",
		}),
	}
}

func (m *Metrics) observeFile(lang string, dur time.Duration, diags []diag.Diagnostic) {
	if m == nil {
		return
	}
	m.filesAnalyzed.Inc()
	if dur > 0 {
		m.ruleDuration.WithLabelValues(lang).Observe(dur.Seconds())
	}
	for i := range diags {
		m.diagnostics.WithLabelValues(diags[i].Severity.String()).Inc()
	}
}

func (m *Metrics) observeFix(iterations int) {
	if m == nil || iterations == 0 {
		return
	}
	m.fixIterations.Observe(float64(iterations))
}

func (m *Metrics) observeCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}
