package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mudatech/healthmon/internal/domain"
)

// Metrics instruments the probe loop. Collectors live on a private registry
// so multiple instances (tests) never collide.
type Metrics struct {
	ProbesTotal   *prometheus.CounterVec
	ProbeDuration prometheus.Histogram
	CyclesTotal   prometheus.Counter
	CycleDuration prometheus.Histogram

	reg *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		ProbesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthmon",
			Name:      "probes_total",
			Help:      "Probe outcomes by service and status.",
		}, []string{"service", "status"}),
		ProbeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "healthmon",
			Name:      "probe_duration_seconds",
			Help:      "Wall-clock duration of individual probes.",
			Buckets:   prometheus.DefBuckets,
		}),
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "healthmon",
			Name:      "check_cycles_total",
			Help:      "Completed check cycles.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "healthmon",
			Name:      "check_cycle_duration_seconds",
			Help:      "Wall-clock duration of full check cycles.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		reg: prometheus.NewRegistry(),
	}
	m.reg.MustRegister(
		m.ProbesTotal, m.ProbeDuration, m.CyclesTotal, m.CycleDuration,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) ObserveProbe(service string, status domain.Status, elapsed time.Duration) {
	m.ProbesTotal.WithLabelValues(service, string(status)).Inc()
	m.ProbeDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCycle(elapsed time.Duration) {
	m.CyclesTotal.Inc()
	m.CycleDuration.Observe(elapsed.Seconds())
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
