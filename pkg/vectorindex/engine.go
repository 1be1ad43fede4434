package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/embedding"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/metrics"
)

// ErrIndexUnavailable wraps any failure that prevents retrieval from
// producing candidates at all: an unloadable index file, or an
// embedding call that failed or timed out. Callers convert it into the
// fixed low-confidence degraded result instead of propagating.
var ErrIndexUnavailable = errors.New("vector index unavailable")

// Engine performs gated hybrid retrieval over the loaded index.
type Engine struct {
	index    *Index
	provider embedding.Provider
	alpha    float64
	topK     int
}

// NewEngine wires the retrieval engine.
func NewEngine(index *Index, provider embedding.Provider, cfg config.RetrievalConfig) *Engine {
	return &Engine{
		index:    index,
		provider: provider,
		alpha:    cfg.Alpha,
		topK:     cfg.TopK,
	}
}

// Retrieve embeds the expanded query and returns the top candidates.
// When the gated search yields nothing the engine retries ungated:
// gating is a precision aid, never a hard requirement.
func (e *Engine) Retrieve(ctx context.Context, expandedQuery string, filter *hazmat.GatingFilter) ([]Candidate, error) {
	queryVector, err := e.provider.Embed(ctx, expandedQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	candidates, err := e.index.Search(queryVector, expandedQuery, filter, e.alpha, e.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	if len(candidates) == 0 && filter != nil {
		logging.Debugf("Gated retrieval empty for %q, retrying ungated", expandedQuery)
		candidates, err = e.index.Search(queryVector, expandedQuery, nil, e.alpha, e.topK)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
		}
	}
	metrics.RetrievalCandidates.Observe(float64(len(candidates)))
	return candidates, nil
}
