// Package metrics exposes prometheus instrumentation for dataset loads, searches and HTTP traffic.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics holds every collector of the service.
type Metrics struct {
	DatasetLoads          *prometheus.CounterVec
	DatasetLoadDuration   prometheus.Histogram
	DatasetShapes         prometheus.Gauge
	DatasetSkipped        prometheus.Gauge
	DatasetOutOfState     prometheus.Gauge
	SearchesTotal         *prometheus.CounterVec
	ClassificationsTotal  *prometheus.CounterVec
	GeocoderRequests      *prometheus.CounterVec
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	ReloadEventsProcessed *prometheus.CounterVec
}

// New registers all collectors on reg. Pass a fresh registry in tests to avoid
// duplicate registration panics.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DatasetLoads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "postcode_dataset_loads_total",
			Help: "Dataset loads by source and result",
		}, []string{"source", "result"}),
		DatasetLoadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "postcode_dataset_load_duration_seconds",
			Help:    "Duration of fetching and normalizing the boundary dataset",
			Buckets: durationBuckets,
		}),
		DatasetShapes: f.NewGauge(prometheus.GaugeOpts{
			Name: "postcode_dataset_shapes",
			Help: "Render shapes in the active dataset",
		}),
		DatasetSkipped: f.NewGauge(prometheus.GaugeOpts{
			Name: "postcode_dataset_skipped_features",
			Help: "Malformed features skipped in the active dataset",
		}),
		DatasetOutOfState: f.NewGauge(prometheus.GaugeOpts{
			Name: "postcode_dataset_out_of_state_features",
			Help: "Features dropped by the state filter in the active dataset",
		}),
		SearchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "postcode_searches_total",
			Help: "Searches by result kind",
		}, []string{"kind"}),
		ClassificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "postcode_classifications_total",
			Help: "Eligibility lookups by priority category",
		}, []string{"category"}),
		GeocoderRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "postcode_geocoder_requests_total",
			Help: "Reverse geocoder calls by result",
		}, []string{"result"}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "postcode_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "postcode_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: durationBuckets,
		}, []string{"route", "method"}),
		ReloadEventsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "postcode_reload_events_total",
			Help: "Reload stream events processed by result",
		}, []string{"result"}),
	}
}

// ObserveDatasetLoad records one load attempt. Call with time.Now() at the start.
func (m *Metrics) ObserveDatasetLoad(source string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.DatasetLoads.WithLabelValues(source, result).Inc()
	m.DatasetLoadDuration.Observe(time.Since(start).Seconds())
}

// SetDatasetStats publishes the counters of the active dataset.
func (m *Metrics) SetDatasetStats(shapes, skipped, outOfState int) {
	m.DatasetShapes.Set(float64(shapes))
	m.DatasetSkipped.Set(float64(skipped))
	m.DatasetOutOfState.Set(float64(outOfState))
}

func (m *Metrics) IncSearch(kind string) {
	m.SearchesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncClassification(category string) {
	m.ClassificationsTotal.WithLabelValues(category).Inc()
}

func (m *Metrics) IncGeocoder(result string) {
	m.GeocoderRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) IncReloadEvent(result string) {
	m.ReloadEventsProcessed.WithLabelValues(result).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method, status string, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
