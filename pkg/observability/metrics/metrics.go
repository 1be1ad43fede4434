// Package metrics exposes Prometheus instrumentation for the hazmat
// classification engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClassificationsTotal counts finished classifications by the layer
	// that produced the result and by backend.
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hazmat_classifications_total",
			Help: "Total classifications by result source and backend.",
		},
		[]string{"source", "backend"},
	)

	// ClassificationDuration observes end-to-end classification latency.
	ClassificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hazmat_classification_duration_seconds",
			Help:    "End-to-end classification latency by backend.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend"},
	)

	// FallbackActivations counts orchestrator fallbacks to the
	// file-backed classifier, labeled by the reason.
	FallbackActivations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hazmat_fallback_activations_total",
			Help: "Fallbacks to the secondary classifier by reason.",
		},
		[]string{"reason"},
	)

	// CacheOperations counts result-cache operations by backend and outcome.
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hazmat_result_cache_operations_total",
			Help: "Result cache operations by backend and outcome.",
		},
		[]string{"backend", "operation", "status"},
	)

	// RetrievalCandidates observes how many candidates hybrid search
	// produced before reranking.
	RetrievalCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hazmat_retrieval_candidates",
			Help:    "Candidate count returned by hybrid retrieval.",
			Buckets: []float64{0, 1, 5, 10, 25, 50},
		},
	)

	// BatchItems observes batch classification sizes.
	BatchItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hazmat_batch_items",
			Help:    "Item count per batch classification call.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)
)

// RecordClassification records one finished classification.
func RecordClassification(source, backend string, seconds float64) {
	ClassificationsTotal.WithLabelValues(source, backend).Inc()
	ClassificationDuration.WithLabelValues(backend).Observe(seconds)
}

// RecordFallback records one fallback activation.
func RecordFallback(reason string) {
	FallbackActivations.WithLabelValues(reason).Inc()
}

// RecordCacheOperation records one result-cache operation.
func RecordCacheOperation(backend, operation, status string) {
	CacheOperations.WithLabelValues(backend, operation, status).Inc()
}
