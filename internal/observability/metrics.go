package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the gazetteer's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	DatasetLoadsTotal   *prometheus.CounterVec
	DatasetLoadDuration prometheus.Histogram
	DatasetRecords      prometheus.Gauge
	FilterResults       prometheus.Histogram
	FocusConsumedTotal  *prometheus.CounterVec
}

// NewMetrics registers all collectors plus the Go runtime collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gazetteer_http_requests_total",
			Help: "Total number of HTTP requests by route and status class.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gazetteer_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DatasetLoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gazetteer_dataset_loads_total",
			Help: "Dataset fetch attempts by outcome.",
		}, []string{"outcome"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gazetteer_dataset_load_duration_seconds",
			Help:    "Time spent fetching and decoding the dataset.",
			Buckets: prometheus.DefBuckets,
		}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gazetteer_dataset_records",
			Help: "Number of records in the loaded dataset.",
		}),
		FilterResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gazetteer_filter_results",
			Help:    "Number of records returned per explore render.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		FocusConsumedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gazetteer_map_focus_consumed_total",
			Help: "Deep-link focus flags consumed by the map view.",
		}, []string{"matched"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DatasetLoadsTotal,
		m.DatasetLoadDuration,
		m.DatasetRecords,
		m.FilterResults,
		m.FocusConsumedTotal,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveRequest records one completed request.
func (m *Metrics) ObserveRequest(method, route string, status int, latency time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(latency.Seconds())
}

// ObserveDatasetLoad records a dataset fetch attempt.
func (m *Metrics) ObserveDatasetLoad(elapsed time.Duration, records int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.DatasetLoadsTotal.WithLabelValues(outcome).Inc()
	m.DatasetLoadDuration.Observe(elapsed.Seconds())
	if err == nil {
		m.DatasetRecords.Set(float64(records))
	}
}

// ObserveFilter records the size of an explore result set.
func (m *Metrics) ObserveFilter(results int) {
	m.FilterResults.Observe(float64(results))
}

// ObserveFocus records a consumed focus flag.
func (m *Metrics) ObserveFocus(matched bool) {
	label := "false"
	if matched {
		label = "true"
	}
	m.FocusConsumedTotal.WithLabelValues(label).Inc()
}
