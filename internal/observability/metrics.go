package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rainfall_anomaly"

// Metrics holds the Prometheus counters, histograms, and gauges for the anomaly service.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec // labels: outcome={success,error}
	AnalysisDuration prometheus.Histogram
	StageDuration    *prometheus.HistogramVec // labels: stage={baseline,current,anomaly,classify,zonal}
	ServiceRunning   prometheus.Gauge
	ReportsPublished prometheus.Counter
	EmptyRegions     prometheus.Counter

	// Raster source metrics.
	SourceRequests *prometheus.CounterVec // labels: outcome={success,error,retry}
	SourceDuration prometheus.Histogram
	SourceCache    *prometheus.CounterVec // labels: result={hit,miss}
	ImagesFetched  *prometheus.CounterVec // labels: period={baseline,current}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed anomaly analyses by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete anomaly analysis run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each analysis stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		ServiceRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_running",
			Help:      "1 when the analysis loop is active, 0 when shut down.",
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      "Total anomaly reports written to the sink topic.",
		}),
		EmptyRegions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_region_total",
			Help:      "Analyses whose region covered no raster pixels.",
		}),
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Raster source requests by outcome.",
		}, []string{"outcome"}),
		SourceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Raster source request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SourceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_cache_total",
			Help:      "Raster source cache lookups by result.",
		}, []string{"result"}),
		ImagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_fetched_total",
			Help:      "Raster images fetched by analysis period.",
		}, []string{"period"}),
	}

	prometheus.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.StageDuration,
		m.ServiceRunning,
		m.ReportsPublished,
		m.EmptyRegions,
		m.SourceRequests,
		m.SourceDuration,
		m.SourceCache,
		m.ImagesFetched,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		AnalysesTotal:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "analyses_total"}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "analysis_duration_seconds"}),
		StageDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "stage_duration_seconds"}, []string{"stage"}),
		ServiceRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "service_running"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "reports_published_total"}),
		EmptyRegions:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "empty_region_total"}),
		SourceRequests:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "source_requests_total"}, []string{"outcome"}),
		SourceDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "source_request_duration_seconds"}),
		SourceCache:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "source_cache_total"}, []string{"result"}),
		ImagesFetched:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "images_fetched_total"}, []string{"period"}),
	}
}
