package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const namespace = "orderdesk"

// Metrics owns the service collectors and the registry they live in.
type Metrics struct {
	registry         *prometheus.Registry
	mutations        *prometheus.CounterVec
	snapshotDuration *prometheus.HistogramVec
	snapshotFailures *prometheus.CounterVec
}

// New registers the service collectors plus the Go and process collectors on
// a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Mutating record operations by kind, operation and outcome.",
		}, []string{"kind", "operation", "outcome"}),
		snapshotDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Time spent writing or reading a full table snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"table", "operation"}),
		snapshotFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_failures_total",
			Help:      "Snapshot saves or loads rejected by the storage sink.",
		}, []string{"table", "operation"}),
	}
	reg.MustRegister(
		m.mutations,
		m.snapshotDuration,
		m.snapshotFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveMutation(kind, operation, outcome string) {
	m.mutations.WithLabelValues(kind, operation, outcome).Inc()
}

func (m *Metrics) ObserveSnapshot(table, operation string, took time.Duration, err error) {
	m.snapshotDuration.WithLabelValues(table, operation).Observe(took.Seconds())
	if err != nil {
		m.snapshotFailures.WithLabelValues(table, operation).Inc()
	}
}

// TrackStore exposes the live record count of one store as a gauge.
func (m *Metrics) TrackStore(kind string, size func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "records",
		Help:        "Records currently held in memory.",
		ConstLabels: prometheus.Labels{"kind": kind},
	}, func() float64 { return float64(size()) }))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
