// Package metrics exposes Prometheus instrumentation for route analysis.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routesafe",
		Subsystem: "analysis",
		Name:      "runs_total",
		Help:      "Total route analyses by mode and outcome",
	}, []string{"mode", "outcome"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routesafe",
		Subsystem: "analysis",
		Name:      "duration_seconds",
		Help:      "End to end route analysis latency",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"mode"})

	RoutePoints = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routesafe",
		Subsystem: "analysis",
		Name:      "route_points",
		Help:      "Route point counts before and after simplification",
		Buckets:   prometheus.ExponentialBuckets(10, 4, 7),
	}, []string{"stage"})

	SegmentsByLevel = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routesafe",
		Subsystem: "risk",
		Name:      "segments_total",
		Help:      "Scored segments by risk level",
	}, []string{"level"})

	Degradations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routesafe",
		Subsystem: "risk",
		Name:      "degradations_total",
		Help:      "Factors or stages omitted because a lookup failed",
	}, []string{"stage"})

	ProviderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routesafe",
		Subsystem: "provider",
		Name:      "call_duration_seconds",
		Help:      "Latency of external provider calls",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
	}, []string{"provider"})

	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routesafe",
		Subsystem: "provider",
		Name:      "errors_total",
		Help:      "Failed external provider calls",
	}, []string{"provider"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routesafe",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routesafe",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// ObserveProvider records the latency and outcome of a provider call
func ObserveProvider(provider string, start time.Time, err error) {
	ProviderDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		ProviderErrors.WithLabelValues(provider).Inc()
	}
}

// ObserveAnalysis records a finished analysis run
func ObserveAnalysis(mode string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	AnalysesTotal.WithLabelValues(mode, outcome).Inc()
	AnalysisDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

// WriteTextfile dumps the default registry in the node_exporter textfile
// format, for batch runs that have no scrape endpoint
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
