// Package metrics exposes the lifecycle counters of the device on a
// private Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sentinel"

// Collector holds every device metric. The zero value is not usable; build
// one with NewCollector.
type Collector struct {
	registry *prometheus.Registry

	cyclesTransmitted prometheus.Counter
	captureFailures   prometheus.Counter
	stateDuration     *prometheus.HistogramVec
	syncOutcomes      *prometheus.CounterVec
	decisions         *prometheus.CounterVec
	cycleRuntime      prometheus.Gauge
}

// LogStats reports the remote log queue counters.
type LogStats interface {
	Dropped() uint64
	Failed() uint64
}

// NewCollector registers the device metrics on a fresh registry. When logs
// is non-nil its counters are exported too.
func NewCollector(logs LogStats) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		cyclesTransmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_transmitted_total",
			Help:      "Telemetry messages published on the image topic.",
		}),
		captureFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_failures_total",
			Help:      "Cycles whose image was replaced by the failure sentinel.",
		}),
		stateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "state_duration_seconds",
			Help:      "Wall time spent in each lifecycle state.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"state"}),
		syncOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_outcomes_total",
			Help:      "Config sync exchanges by outcome.",
		}, []string{"outcome"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_decisions_total",
			Help:      "Idle decisions by kind.",
		}, []string{"kind"}),
		cycleRuntime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycle_runtime_seconds",
			Help:      "Processing time accumulated by the last completed cycle.",
		}),
	}

	c.registry.MustRegister(
		c.cyclesTransmitted,
		c.captureFailures,
		c.stateDuration,
		c.syncOutcomes,
		c.decisions,
		c.cycleRuntime,
		collectors.NewGoCollector(),
	)
	if logs != nil {
		c.registry.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_lines_dropped_total",
				Help:      "Log lines discarded because the remote queue was full.",
			}, func() float64 { return float64(logs.Dropped()) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_lines_failed_total",
				Help:      "Log lines the transport refused.",
			}, func() float64 { return float64(logs.Failed()) }),
		)
	}
	return c
}

func (c *Collector) ObserveState(state string, seconds float64) {
	c.stateDuration.WithLabelValues(state).Observe(seconds)
}

func (c *Collector) RecordSync(outcome string) { c.syncOutcomes.WithLabelValues(outcome).Inc() }

func (c *Collector) RecordDecision(kind string, runtimeSeconds float64) {
	c.decisions.WithLabelValues(kind).Inc()
	c.cycleRuntime.Set(runtimeSeconds)
}

func (c *Collector) RecordTransmit() { c.cyclesTransmitted.Inc() }

func (c *Collector) RecordCaptureFailure() { c.captureFailures.Inc() }

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
