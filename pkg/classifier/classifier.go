// Package classifier assembles the classification pipeline and the
// dual-backend orchestration on top of it. The database-backed and
// file-backed classifiers are two implementations of one Classifier
// interface; the orchestrator depends only on that interface.
package classifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/confidence"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/query"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/rerank"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/rules"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/vectorindex"
)

// Classifier classifies one product description. Implementations may
// reach external systems and return errors; the orchestrator converts
// errors into fallbacks.
type Classifier interface {
	Classify(ctx context.Context, sku, productName string) (*hazmat.Classification, error)
	// Name identifies the backend in telemetry.
	Name() string
}

// retriever abstracts where candidates come from (local index, Milvus).
type retriever interface {
	Retrieve(ctx context.Context, expandedQuery string, filter *hazmat.GatingFilter) ([]vectorindex.Candidate, error)
}

// missConfidence is stamped on retrieval misses. Misses must carry
// confidence <= 0.2 so downstream consumers treat them as unknowns.
const missConfidence = 0.15

// degradedConfidence is stamped when the index cannot be consulted at all.
const degradedConfidence = 0.1

// pipeline runs the layered classification flow shared by both
// backends: rules short-circuit first, then gated retrieval, reranking,
// overrides, and confidence synthesis.
type pipeline struct {
	nonHazard *rules.NonHazardTable
	direct    *rules.DirectRuleMapper
	retriever retriever
	synth     *confidence.Synthesizer
	rerankTop int
	// degradeOnRetrievalFailure converts retrieval failures into the
	// fixed low-confidence result instead of propagating them. The
	// file-backed classifier degrades; the database-backed classifier
	// propagates so the orchestrator can fall back.
	degradeOnRetrievalFailure bool
}

func (p *pipeline) classify(ctx context.Context, sku, productName string) (*hazmat.Classification, error) {
	if c := p.nonHazard.Evaluate(productName); c != nil {
		return c, nil
	}
	if c := p.direct.Evaluate(productName); c != nil {
		return c, nil
	}

	expanded := query.Normalize(productName)
	filter := query.DetectGatingFilter(expanded)

	candidates, err := p.retriever.Retrieve(ctx, expanded, filter)
	if err != nil {
		if p.degradeOnRetrievalFailure && errors.Is(err, vectorindex.ErrIndexUnavailable) {
			logging.Warnf("Retrieval degraded for %q: %v", productName, err)
			return degradedResult(err), nil
		}
		return nil, fmt.Errorf("retrieval failed for %q: %w", productName, err)
	}
	if len(candidates) == 0 {
		return missResult(productName), nil
	}

	top, adjusted := rerank.Rerank(candidates, productName, p.rerankTop)
	top, overrideName := rerank.ApplyOverrides(top, productName)

	return p.synth.Synthesize(confidence.Input{
		Candidate:      top[0],
		Score:          top[0].Score,
		SKU:            sku,
		ProductName:    productName,
		RerankAdjusted: adjusted,
		OverrideName:   overrideName,
	}), nil
}

// degradedResult is the fixed non-throwing answer when the index is
// unusable for this call.
func degradedResult(cause error) *hazmat.Classification {
	return &hazmat.Classification{
		Confidence:  degradedConfidence,
		Source:      hazmat.SourceRAG,
		Explanation: fmt.Sprintf("Vector index unavailable (%v). Rebuild the index with the ingestion tooling and retry.", cause),
	}
}

// missResult is returned when retrieval produced no candidates.
func missResult(productName string) *hazmat.Classification {
	return &hazmat.Classification{
		Confidence:  missConfidence,
		Source:      hazmat.SourceCFRHMT,
		Explanation: fmt.Sprintf("No regulatory entry matched %q. Classify manually or extend the rule tables.", productName),
	}
}
