// Package services is the library boundary consumed by the HTTP layer
// and the CLI. It hides backend wiring behind the classification
// entry points.
package services

import (
	"context"
	"fmt"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/classifier"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/confidence"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/validation"
)

// ClassificationService provides hazmat classification functionality.
type ClassificationService struct {
	cfg          *config.EngineConfig
	fileBackend  classifier.Classifier
	orchestrator *classifier.Orchestrator
}

// NewClassificationService wires the service from config. No external
// connection is opened until the first database-backed call.
func NewClassificationService(cfg *config.EngineConfig) *ClassificationService {
	if cfg == nil {
		cfg = config.Get()
	}
	return &ClassificationService{
		cfg:          cfg,
		fileBackend:  classifier.NewFileClassifier(cfg, classifier.FileClassifierDeps{}),
		orchestrator: classifier.NewOrchestrator(cfg),
	}
}

// Classify is the single-backend entry point over the bundled
// reference files. It never returns an error.
func (s *ClassificationService) Classify(ctx context.Context, sku, productName string) *hazmat.Classification {
	// The file-backed classifier degrades internally; an error here
	// still must not surface as a nil result.
	result, err := s.fileBackend.Classify(ctx, sku, productName)
	if err != nil || result == nil {
		logging.Warnf("File-backed classification failed for %q: %v", sku, err)
		return &hazmat.Classification{
			Confidence:  0,
			Source:      hazmat.SourceError,
			Explanation: fmt.Sprintf("Classification unavailable: %v. Retry later or classify manually.", err),
		}
	}
	return result
}

// ClassifyWithEnhancedRAG is the orchestrated entry point: a database
// primary with file-backed fallback, low-confidence cross-checking,
// and telemetry stamping.
func (s *ClassificationService) ClassifyWithEnhancedRAG(ctx context.Context, sku, productName string, opts classifier.ClassifyOptions) *hazmat.Classification {
	return s.orchestrator.Classify(ctx, sku, productName, opts)
}

// BatchClassify classifies every item with bounded concurrency and
// per-item failure isolation.
func (s *ClassificationService) BatchClassify(ctx context.Context, items []classifier.BatchItem, opts classifier.BatchOptions) map[string]*hazmat.Classification {
	return s.orchestrator.ClassifyBatch(ctx, items, opts)
}

// ValidateClassification checks a finished classification against
// DOT structural rules.
func (s *ClassificationService) ValidateClassification(c *hazmat.Classification) validation.Report {
	return validation.ValidateClassification(c)
}

// GetConfidenceScore computes the secondary scoring view for
// downstream ranking.
func (s *ClassificationService) GetConfidenceScore(c *hazmat.Classification) confidence.ScoreView {
	return confidence.GetConfidenceScore(c)
}

// DefaultOptions resolves per-call options from config.
func (s *ClassificationService) DefaultOptions() classifier.ClassifyOptions {
	return classifier.ClassifyOptions{
		PreferDatabase:  s.cfg.PreferDatabase(),
		EnableTelemetry: s.cfg.TelemetryEnabled(),
	}
}

// Close releases backend resources.
func (s *ClassificationService) Close() error {
	return s.orchestrator.Close()
}
