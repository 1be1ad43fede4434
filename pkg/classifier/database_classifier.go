package classifier

import (
	"context"
	"sync"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/confidence"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/embedding"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/refdata"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/rules"
)

// DatabaseClassifier classifies against the Postgres regulatory table
// and the Milvus vector collection. Unlike the file-backed classifier
// it propagates connection and retrieval errors, so the orchestrator
// can fall back to the file-backed path.
type DatabaseClassifier struct {
	cfg     *config.EngineConfig
	rows    *pgRowStore
	milvus  *milvusRetriever
	erg     *refdata.ERGStore
	history *refdata.HistoryStore

	mu   sync.Mutex
	pipe *pipeline
}

// NewDatabaseClassifier wires the database-backed pipeline. All
// connections are deferred to the first Classify call.
func NewDatabaseClassifier(cfg *config.EngineConfig) *DatabaseClassifier {
	provider := embedding.NewOpenAIProvider(cfg.Embedding)
	return &DatabaseClassifier{
		cfg:     cfg,
		rows:    newPGRowStore(cfg.Database),
		milvus:  newMilvusRetriever(cfg.Database, provider, cfg.Retrieval),
		erg:     refdata.NewERGStore(cfg.ReferenceData.ERGPath),
		history: refdata.NewHistoryStore(cfg.ReferenceData.HistoryPath),
	}
}

// ensure builds the pipeline on first use. Only a successful build is
// cached; a failed connection is retried on the next call so a
// transient database outage does not poison the process.
func (c *DatabaseClassifier) ensure(ctx context.Context) (*pipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pipe != nil {
		return c.pipe, nil
	}
	store, err := c.rows.corpusStore(ctx)
	if err != nil {
		return nil, err
	}
	c.pipe = &pipeline{
		nonHazard:                 rules.NewNonHazardTable(c.cfg.Thresholds),
		direct:                    rules.NewDirectRuleMapper(store, c.cfg.Thresholds),
		retriever:                 c.milvus,
		synth:                     confidence.NewSynthesizer(c.erg, c.history),
		rerankTop:                 c.cfg.Retrieval.RerankTopK,
		degradeOnRetrievalFailure: false,
	}
	return c.pipe, nil
}

// Name implements Classifier.
func (c *DatabaseClassifier) Name() string { return "database" }

// Classify implements Classifier.
func (c *DatabaseClassifier) Classify(ctx context.Context, sku, productName string) (*hazmat.Classification, error) {
	pipe, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return pipe.classify(ctx, sku, productName)
}

// Close releases the Milvus connection.
func (c *DatabaseClassifier) Close() error {
	return c.milvus.Close()
}
