package classifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/metrics"
)

// BatchItem is one unit of batch classification input.
type BatchItem struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// BatchOptions tune one batch run.
type BatchOptions struct {
	// Concurrency is the window size; items within a window run
	// concurrently and each window is awaited fully before the next.
	Concurrency    int
	PreferDatabase bool
}

const defaultBatchConcurrency = 5

// ClassifyBatch classifies every item, isolating per-item failures.
// The returned map always has one entry per distinct SKU; duplicate
// SKUs overwrite earlier entries in input order.
func (o *Orchestrator) ClassifyBatch(ctx context.Context, items []BatchItem, opts BatchOptions) map[string]*hazmat.Classification {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	results := make([]*hazmat.Classification, len(items))
	for windowStart := 0; windowStart < len(items); windowStart += concurrency {
		windowEnd := windowStart + concurrency
		if windowEnd > len(items) {
			windowEnd = len(items)
		}
		var wg sync.WaitGroup
		for i := windowStart; i < windowEnd; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = o.classifyItem(ctx, items[i], opts)
			}(i)
		}
		wg.Wait()
	}

	out := make(map[string]*hazmat.Classification, len(items))
	for i, item := range items {
		out[item.SKU] = results[i]
	}
	metrics.BatchItems.Observe(float64(len(items)))
	return out
}

// classifyItem never panics or errors; any failure becomes a
// zero-confidence entry so one bad item cannot abort the batch.
func (o *Orchestrator) classifyItem(ctx context.Context, item BatchItem, opts BatchOptions) (result *hazmat.Classification) {
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("Batch item %s panicked: %v", item.SKU, r)
			result = errorResult(fmt.Errorf("internal failure classifying %s: %v", item.SKU, r))
		}
	}()
	return o.Classify(ctx, item.SKU, item.Name, ClassifyOptions{
		PreferDatabase:  opts.PreferDatabase,
		EnableTelemetry: true,
	})
}
