package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/metrics"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/query"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/resultcache"
)

// ClassifyOptions tune one orchestrated classification call.
type ClassifyOptions struct {
	// PreferDatabase selects the database-backed classifier as primary.
	PreferDatabase bool
	// EnableTelemetry stamps SearchMethod and SearchTimeMs on the result.
	EnableTelemetry bool
}

// Orchestrator decides which backend's result to trust and shields
// callers from backend failures. It always returns a well-formed
// Classification; callers judge trust from Confidence and Source.
type Orchestrator struct {
	primary       Classifier
	secondary     Classifier
	lowConfidence float64
	cache         resultcache.Cache
}

// NewOrchestrator builds the two-backend orchestrator from config.
func NewOrchestrator(cfg *config.EngineConfig) *Orchestrator {
	cache, err := resultcache.New(cfg.ResultCache)
	if err != nil {
		logging.Warnf("Result cache disabled: %v", err)
		cache = nil
	}
	return &Orchestrator{
		primary:       NewDatabaseClassifier(cfg),
		secondary:     NewFileClassifier(cfg, FileClassifierDeps{}),
		lowConfidence: cfg.Thresholds.LowConfidence,
		cache:         cache,
	}
}

// NewOrchestratorFromBackends wires explicit backends, for tests and
// embedding callers that bring their own.
func NewOrchestratorFromBackends(primary, secondary Classifier, lowConfidence float64) *Orchestrator {
	return &Orchestrator{primary: primary, secondary: secondary, lowConfidence: lowConfidence}
}

// Classify runs the primary/fallback decision. It never returns an
// error: total failure of both backends yields a zero-confidence
// result tagged with the error source.
func (o *Orchestrator) Classify(ctx context.Context, sku, productName string, opts ClassifyOptions) *hazmat.Classification {
	start := time.Now()
	requestID := uuid.New().String()

	if c := o.cacheGet(ctx, productName); c != nil {
		o.stamp(c, "cache", opts, start)
		return c
	}

	result, method := o.resolve(ctx, requestID, sku, productName, opts)
	o.stamp(result, method, opts, start)

	elapsed := time.Since(start)
	metrics.RecordClassification(string(result.Source), method, elapsed.Seconds())
	logging.LogEvent("classification_completed", map[string]interface{}{
		"request_id":    requestID,
		"sku":           sku,
		"product_name":  productName,
		"source":        result.Source,
		"search_method": method,
		"confidence":    result.Confidence,
		"elapsed_ms":    elapsed.Milliseconds(),
	})

	o.cacheSet(ctx, productName, result)
	return result
}

func (o *Orchestrator) resolve(ctx context.Context, requestID, sku, productName string, opts ClassifyOptions) (*hazmat.Classification, string) {
	if !opts.PreferDatabase {
		result, err := o.secondary.Classify(ctx, sku, productName)
		if err != nil {
			logging.Errorf("request %s: %s backend failed: %v", requestID, o.secondary.Name(), err)
			return errorResult(err), "error"
		}
		return result, o.secondary.Name()
	}

	primaryResult, err := o.primary.Classify(ctx, sku, productName)
	if err != nil {
		logging.Warnf("request %s: %s backend failed, falling back to %s: %v",
			requestID, o.primary.Name(), o.secondary.Name(), err)
		metrics.RecordFallback("primary_error")
		fallbackResult, fbErr := o.secondary.Classify(ctx, sku, productName)
		if fbErr != nil {
			logging.Errorf("request %s: both backends failed: %v; %v", requestID, err, fbErr)
			return errorResult(fmt.Errorf("%v; fallback: %v", err, fbErr)), "error"
		}
		return fallbackResult, o.secondary.Name()
	}

	if primaryResult.Confidence < o.lowConfidence {
		metrics.RecordFallback("low_confidence")
		secondaryResult, sErr := o.secondary.Classify(ctx, sku, productName)
		if sErr != nil {
			logging.Warnf("request %s: low-confidence consult of %s failed: %v",
				requestID, o.secondary.Name(), sErr)
			return primaryResult, o.primary.Name()
		}
		if secondaryResult.Confidence > primaryResult.Confidence {
			secondaryResult.Source = hazmat.SourceJSON
			return secondaryResult, string(hazmat.SourceJSON)
		}
		primaryResult.Source = hazmat.SourceHybrid
		return primaryResult, string(hazmat.SourceHybrid)
	}

	return primaryResult, o.primary.Name()
}

func (o *Orchestrator) stamp(c *hazmat.Classification, method string, opts ClassifyOptions, start time.Time) {
	if !opts.EnableTelemetry {
		return
	}
	c.SearchMethod = method
	c.SearchTimeMs = time.Since(start).Milliseconds()
}

// errorResult is the defined shape for total backend failure.
func errorResult(cause error) *hazmat.Classification {
	return &hazmat.Classification{
		Confidence:  0,
		Source:      hazmat.SourceError,
		Explanation: fmt.Sprintf("Classification unavailable: %v. Retry later or classify manually.", cause),
	}
}

func (o *Orchestrator) cacheGet(ctx context.Context, productName string) *hazmat.Classification {
	if o.cache == nil {
		return nil
	}
	c, ok := o.cache.Get(ctx, cacheKey(productName))
	if !ok {
		return nil
	}
	return c
}

func (o *Orchestrator) cacheSet(ctx context.Context, productName string, c *hazmat.Classification) {
	if o.cache == nil || c == nil || c.Source == hazmat.SourceError {
		return
	}
	o.cache.Set(ctx, cacheKey(productName), c)
}

// cacheKey normalizes the product name so trivially different phrasings
// of the same product share a cache entry.
func cacheKey(productName string) string {
	return strings.ToLower(strings.TrimSpace(query.Normalize(productName)))
}

// Close releases backend resources.
func (o *Orchestrator) Close() error {
	var firstErr error
	if closer, ok := o.primary.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			firstErr = err
		}
	}
	if o.cache != nil {
		if err := o.cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
