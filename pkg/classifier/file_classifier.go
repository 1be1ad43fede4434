package classifier

import (
	"context"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/confidence"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/corpus"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/embedding"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/refdata"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/rules"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/vectorindex"
)

// FileClassifier classifies against the bundled JSON corpus and
// vector index. It never returns an error from Classify: an unusable
// index degrades to the fixed low-confidence result.
type FileClassifier struct {
	pipeline pipeline
}

// FileClassifierDeps are the injected stores, overridable in tests.
type FileClassifierDeps struct {
	Corpus   *corpus.Store
	Index    *vectorindex.Index
	Provider embedding.Provider
	ERG      *refdata.ERGStore
	History  *refdata.HistoryStore
}

// NewFileClassifier wires the file-backed pipeline. Nil deps are
// filled in from the configured reference file paths.
func NewFileClassifier(cfg *config.EngineConfig, deps FileClassifierDeps) *FileClassifier {
	if deps.Corpus == nil {
		deps.Corpus = corpus.NewStore(cfg.ReferenceData.CorpusPath)
	}
	if deps.Index == nil {
		deps.Index = vectorindex.NewIndex(cfg.ReferenceData.IndexPath)
	}
	if deps.Provider == nil {
		deps.Provider = embedding.NewOpenAIProvider(cfg.Embedding)
	}
	if deps.ERG == nil {
		deps.ERG = refdata.NewERGStore(cfg.ReferenceData.ERGPath)
	}
	if deps.History == nil {
		deps.History = refdata.NewHistoryStore(cfg.ReferenceData.HistoryPath)
	}

	return &FileClassifier{
		pipeline: pipeline{
			nonHazard:                 rules.NewNonHazardTable(cfg.Thresholds),
			direct:                    rules.NewDirectRuleMapper(deps.Corpus, cfg.Thresholds),
			retriever:                 vectorindex.NewEngine(deps.Index, deps.Provider, cfg.Retrieval),
			synth:                     confidence.NewSynthesizer(deps.ERG, deps.History),
			rerankTop:                 cfg.Retrieval.RerankTopK,
			degradeOnRetrievalFailure: true,
		},
	}
}

// Name implements Classifier.
func (c *FileClassifier) Name() string { return "json" }

// Classify implements Classifier.
func (c *FileClassifier) Classify(ctx context.Context, sku, productName string) (*hazmat.Classification, error) {
	return c.pipeline.classify(ctx, sku, productName)
}
