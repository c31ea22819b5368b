// Package metrics exposes collector counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "logcollector"

// States lists the loop states in gauge order.
var States = []string{"idle", "running", "draining", "stopped"}

// Recorder owns a registry and the collector's metric families.
type Recorder struct {
	registry *prometheus.Registry

	linesRead    prometheus.Counter
	linesWritten *prometheus.CounterVec
	linesDropped prometheus.Counter
	clears       *prometheus.CounterVec
	bytesWritten prometheus.Counter
	state        *prometheus.GaugeVec
}

// New registers the collector metrics on a fresh registry, alongside the Go
// runtime and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		linesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_read_total",
			Help:      "Lines read from the capture process.",
		}),
		linesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_written_total",
			Help:      "Lines written to the sink, by category.",
		}, []string{"category"}),
		linesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_dropped_total",
			Help:      "Lines rejected by the filter.",
		}),
		clears: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buffer_clears_total",
			Help:      "Clear commands run against the external log buffer.",
		}, []string{"result"}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_bytes_written_total",
			Help:      "Bytes written to the sink file.",
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loop_state",
			Help:      "1 for the current collection loop state, 0 otherwise.",
		}, []string{"state"}),
	}
	r.registry.MustRegister(
		r.linesRead,
		r.linesWritten,
		r.linesDropped,
		r.clears,
		r.bytesWritten,
		r.state,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r.SetState("idle")
	return r
}

// LineRead counts one line read from the source.
func (r *Recorder) LineRead() { r.linesRead.Inc() }

// LineWritten counts one unit written for category ("" when uncategorized).
func (r *Recorder) LineWritten(category string, bytes int) {
	if category == "" {
		category = "none"
	}
	r.linesWritten.WithLabelValues(category).Inc()
	r.bytesWritten.Add(float64(bytes))
}

// LineDropped counts one filtered-out line.
func (r *Recorder) LineDropped() { r.linesDropped.Inc() }

// Cleared counts one clear attempt.
func (r *Recorder) Cleared(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.clears.WithLabelValues(result).Inc()
}

// SetState flags state as the current loop state.
func (r *Recorder) SetState(state string) {
	for _, s := range States {
		v := 0.0
		if s == state {
			v = 1
		}
		r.state.WithLabelValues(s).Set(v)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
