// Package metrics exposes trainfit's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Optimizer run outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid"
	OutcomeOverflow   = "overflow"
	OutcomeInfeasible = "infeasible"
	OutcomeError      = "error"
)

// Recorder holds every trainfit collector, registered on one registry.
type Recorder struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	assigned    prometheus.Counter
	cost        prometheus.Counter
	requests    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
}

// New creates a Recorder on a fresh registry that also carries the Go,
// process and build info collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trainfit_optimizer_runs_total",
			Help: "Optimizer runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trainfit_optimizer_duration_seconds",
			Help:    "Time spent in one optimizer run.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		assigned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trainfit_parcels_assigned_total",
			Help: "Parcels linked to trains by fills.",
		}),
		cost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trainfit_assignment_cost_total",
			Help: "Cumulative cost of the trains used by fills.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trainfit_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "path", "status"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trainfit_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
	}

	r.registry.MustRegister(
		r.runs, r.runDuration, r.assigned, r.cost, r.requests, r.reqDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		versioncollector.NewCollector("trainfit"),
	)
	return r
}

// Registry returns the registry the collectors live on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveRun records one optimizer run.
func (r *Recorder) ObserveRun(outcome string, d time.Duration) {
	r.runs.WithLabelValues(outcome).Inc()
	r.runDuration.Observe(d.Seconds())
}

// ObserveFill records the outcome of a persisted fill.
func (r *Recorder) ObserveFill(assigned int, cost float64) {
	r.assigned.Add(float64(assigned))
	r.cost.Add(cost)
}

// ObserveRequest records one served HTTP request. path must be the route
// pattern, not the raw URL, to keep label cardinality bounded.
func (r *Recorder) ObserveRequest(method, path string, status int, d time.Duration) {
	r.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.reqDuration.WithLabelValues(path).Observe(d.Seconds())
}
