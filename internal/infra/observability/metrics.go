package observability

import (
	"time"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const (
	metricUpstreamDuration = "shopboard_upstream_request_duration_seconds"
	metricUpstreamErrors   = "shopboard_upstream_errors_total"
	metricWorkflowActions  = "shopboard_workflow_actions_total"
	metricForcedLogouts    = "shopboard_forced_logouts_total"
	metricStubActions      = "shopboard_stub_actions_total"
	metricCacheHits        = "shopboard_cache_hits_total"
	metricCacheMisses      = "shopboard_cache_misses_total"
)

// Metrics holds all Prometheus metrics for the dashboard.
// All methods are safe on a nil receiver so tests may pass nil.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	upstreamDuration *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec
	workflowActions  *prometheus.CounterVec
	forcedLogouts    prometheus.Counter
	stubActions      *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricUpstreamDuration,
				Help:    "Duration of calls to the shopboard backend by endpoint.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "method"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricUpstreamErrors,
				Help: "Failed backend calls by status class (4xx, 5xx, auth, transport, rejected).",
			},
			[]string{"class"},
		),
		workflowActions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricWorkflowActions,
				Help: "Workflow actions performed from a request screen.",
			},
			[]string{"action", "outcome"},
		),
		forcedLogouts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: metricForcedLogouts,
				Help: "Sessions cleared because the backend answered 401/403.",
			},
		),
		stubActions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricStubActions,
				Help: "Invocations of actions that have no backend effect yet.",
			},
			[]string{"action"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricCacheHits,
				Help: "Total lookup cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricCacheMisses,
				Help: "Total lookup cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordUpstream records the duration of one backend call.
func (m *Metrics) RecordUpstream(endpoint, method string, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(endpoint, method).Observe(d.Seconds())
}

// IncrUpstreamError increments the upstream error counter for a class.
func (m *Metrics) IncrUpstreamError(class string) {
	if m == nil {
		return
	}
	m.upstreamErrors.WithLabelValues(class).Inc()
}

// IncrWorkflowAction counts a workflow action with its outcome (ok, error, rejected).
func (m *Metrics) IncrWorkflowAction(action, outcome string) {
	if m == nil {
		return
	}
	m.workflowActions.WithLabelValues(action, outcome).Inc()
}

// IncrForcedLogout counts a session cleared by a 401/403.
func (m *Metrics) IncrForcedLogout() {
	if m == nil {
		return
	}
	m.forcedLogouts.Inc()
}

// IncrStubAction counts an action that only logs.
func (m *Metrics) IncrStubAction(action string) {
	if m == nil {
		return
	}
	m.stubActions.WithLabelValues(action).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// Snapshot returns the counter part of GET /v1/diagnostics. Values are read
// back from the registry, so they match what /metrics exposes.
func (m *Metrics) Snapshot() *domain.Diagnostics {
	d := &domain.Diagnostics{
		UpstreamErrors:  map[string]int64{},
		WorkflowActions: map[string]int64{},
		StubActions:     map[string]int64{},
	}
	if m == nil {
		return d
	}

	families, err := m.Registry.Gather()
	if err != nil {
		return d
	}

	var hits, misses, durationSum float64
	for _, mf := range families {
		switch mf.GetName() {
		case metricUpstreamDuration:
			for _, metric := range mf.GetMetric() {
				h := metric.GetHistogram()
				d.UpstreamCalls += int64(h.GetSampleCount())
				durationSum += h.GetSampleSum()
			}
		case metricUpstreamErrors:
			for _, metric := range mf.GetMetric() {
				d.UpstreamErrors[labelValue(metric, "class")] += counterValue(metric)
			}
		case metricWorkflowActions:
			for _, metric := range mf.GetMetric() {
				key := labelValue(metric, "action") + ":" + labelValue(metric, "outcome")
				d.WorkflowActions[key] += counterValue(metric)
			}
		case metricForcedLogouts:
			for _, metric := range mf.GetMetric() {
				d.ForcedLogouts += counterValue(metric)
			}
		case metricStubActions:
			for _, metric := range mf.GetMetric() {
				d.StubActions[labelValue(metric, "action")] += counterValue(metric)
			}
		case metricCacheHits:
			for _, metric := range mf.GetMetric() {
				hits += metric.GetCounter().GetValue()
			}
		case metricCacheMisses:
			for _, metric := range mf.GetMetric() {
				misses += metric.GetCounter().GetValue()
			}
		}
	}

	if hits+misses > 0 {
		d.CacheHitRate = hits / (hits + misses)
	}
	if d.UpstreamCalls > 0 {
		d.AvgUpstreamMs = durationSum * 1000 / float64(d.UpstreamCalls)
	}
	return d
}

func counterValue(m *dto.Metric) int64 {
	return int64(m.GetCounter().GetValue())
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
