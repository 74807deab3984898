// Package metrics exposes Prometheus collectors for the enrichment pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	articlesTotal        *prometheus.CounterVec
	geolocationTotal     *prometheus.CounterVec
	iconFallbackTotal    prometheus.Counter
	llmRetriesTotal      prometheus.Counter
	runsTotal            *prometheus.CounterVec
	runDurationSeconds   prometheus.Histogram
	manifestEntriesGauge prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		articlesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsmapper_articles_total",
				Help: "Total number of articles handled, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		geolocationTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsmapper_geolocation_total",
				Help: "Total number of geolocation attempts, labeled by result.",
			},
			[]string{"result"},
		)

		iconFallbackTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "newsmapper_icon_fallback_total",
				Help: "Total number of articles published with the default icon.",
			},
		)

		llmRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "newsmapper_llm_retries_total",
				Help: "Total number of LLM gateway retries after transport failures.",
			},
		)

		runsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsmapper_runs_total",
				Help: "Total number of pipeline runs, labeled by status.",
			},
			[]string{"status"},
		)

		runDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "newsmapper_run_duration_seconds",
				Help:    "Histogram of full pipeline run durations.",
				Buckets: []float64{1, 5, 15, 60, 300, 900, 1800},
			},
		)

		manifestEntriesGauge = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "newsmapper_manifest_entries",
				Help: "Number of entries in the published manifest after the last run.",
			},
		)
	})
}

// ArticleOutcome counts one handled article ("published" or "review").
func ArticleOutcome(outcome string) {
	if articlesTotal != nil {
		articlesTotal.WithLabelValues(outcome).Inc()
	}
}

// GeolocationResult counts one geolocation attempt ("resolved" or "failed").
func GeolocationResult(result string) {
	if geolocationTotal != nil {
		geolocationTotal.WithLabelValues(result).Inc()
	}
}

// IconFallback counts one article published with the default icon.
func IconFallback() {
	if iconFallbackTotal != nil {
		iconFallbackTotal.Inc()
	}
}

// LLMRetry counts one gateway retry.
func LLMRetry() {
	if llmRetriesTotal != nil {
		llmRetriesTotal.Inc()
	}
}

// RunCompleted counts one pipeline run ("published", "skipped", "failed").
func RunCompleted(status string) {
	if runsTotal != nil {
		runsTotal.WithLabelValues(status).Inc()
	}
}

// ObserveRunDuration records one full run duration in seconds.
func ObserveRunDuration(seconds float64) {
	if runDurationSeconds != nil {
		runDurationSeconds.Observe(seconds)
	}
}

// SetManifestEntries records the manifest length after a publish.
func SetManifestEntries(n int) {
	if manifestEntriesGauge != nil {
		manifestEntriesGauge.Set(float64(n))
	}
}
