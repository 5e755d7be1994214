// Package metrics holds the Prometheus collectors for tool calls and
// configuration reloads.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/creditwatch/internal/model"
)

const namespace = "creditwatch"

// Collector records tool call counts and latencies.
type Collector struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	reloads  *prometheus.CounterVec
	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Tool invocation latency.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"tool"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_reloads_total",
			Help:      "Configuration reload attempts by result.",
		}, []string{"result"}),
		gatherer: reg,
	}
	reg.MustRegister(c.calls, c.duration, c.reloads)
	return c
}

// Observe records one tool call. Its signature matches tools.Observer.
func (c *Collector) Observe(_ context.Context, tool string, elapsed time.Duration, err error) {
	c.calls.WithLabelValues(tool, Outcome(err)).Inc()
	c.duration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// Reload records a configuration reload attempt.
func (c *Collector) Reload(err error) {
	result := "applied"
	if err != nil {
		result = "rejected"
	}
	c.reloads.WithLabelValues(result).Inc()
}

// Handler serves the Prometheus exposition for this collector.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Outcome is the outcome label for a call error: "ok", the typed error
// kind, or "internal".
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if me, ok := model.AsError(err); ok {
		return string(me.Kind)
	}
	return "internal"
}
