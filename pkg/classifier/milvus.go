package classifier

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/embedding"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/vectorindex"
)

const milvusVectorField = "vector"

var milvusOutputFields = []string{
	"id_number", "base_name", "qualifier", "class_or_division",
	"packing_group", "erg_guide", "text",
}

// milvusRetriever searches the indexed corpus collection in Milvus and
// blends the vector score with a lexical overlap score, mirroring the
// file-backed hybrid search. Gating filters are applied client-side
// over the over-fetched hit set, with the same retry-ungated semantics.
type milvusRetriever struct {
	address    string
	collection string
	provider   embedding.Provider
	alpha      float64
	topK       int
	timeout    time.Duration

	mu sync.Mutex
	mc client.Client
}

func newMilvusRetriever(cfg config.DatabaseConfig, provider embedding.Provider, retrieval config.RetrievalConfig) *milvusRetriever {
	return &milvusRetriever{
		address:    cfg.MilvusAddress,
		collection: cfg.MilvusCollection,
		provider:   provider,
		alpha:      retrieval.Alpha,
		topK:       retrieval.TopK,
		timeout:    time.Duration(cfg.ConnectTimeoutSeconds) * time.Second,
	}
}

func (r *milvusRetriever) connect(ctx context.Context) (client.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mc != nil {
		return r.mc, nil
	}
	if r.address == "" {
		return nil, fmt.Errorf("milvus_address is not configured")
	}
	dialCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	mc, err := client.NewGrpcClient(dialCtx, r.address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus at %s: %w", r.address, err)
	}
	if err := mc.LoadCollection(ctx, r.collection, false); err != nil {
		mc.Close()
		return nil, fmt.Errorf("failed to load milvus collection %s: %w", r.collection, err)
	}
	r.mc = mc
	return mc, nil
}

// Retrieve implements the retriever interface over Milvus.
func (r *milvusRetriever) Retrieve(ctx context.Context, expandedQuery string, filter *hazmat.GatingFilter) ([]vectorindex.Candidate, error) {
	queryVector, err := r.provider.Embed(ctx, expandedQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	mc, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}

	searchParam, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}
	// Over-fetch so client-side gating and lexical blending have room.
	results, err := mc.Search(
		ctx,
		r.collection,
		[]string{},
		"",
		milvusOutputFields,
		[]entity.Vector{entity.FloatVector(queryVector)},
		milvusVectorField,
		entity.COSINE,
		r.topK*2,
		searchParam,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	all := r.parseHits(results[0], expandedQuery)

	candidates := gateCandidates(all, filter)
	if len(candidates) == 0 && filter != nil {
		logging.Debugf("Gated milvus retrieval empty for %q, using ungated hits", expandedQuery)
		candidates = all
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if len(candidates) > r.topK {
		candidates = candidates[:r.topK]
	}
	return candidates, nil
}

func (r *milvusRetriever) parseHits(result client.SearchResult, expandedQuery string) []vectorindex.Candidate {
	cols := make(map[string]*entity.ColumnVarChar, len(milvusOutputFields))
	for _, name := range milvusOutputFields {
		if col, ok := result.Fields.GetColumn(name).(*entity.ColumnVarChar); ok {
			cols[name] = col
		}
	}
	get := func(name string, i int) string {
		col := cols[name]
		if col == nil || i >= col.Len() {
			return ""
		}
		v, _ := col.ValueByIdx(i)
		return v
	}

	queryTokens := tokenizeQuery(expandedQuery)
	out := make([]vectorindex.Candidate, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		row := hazmat.RegulatoryRow{
			IDNumber:        get("id_number", i),
			BaseName:        get("base_name", i),
			Qualifier:       get("qualifier", i),
			ClassOrDivision: get("class_or_division", i),
			PackingGroup:    get("packing_group", i),
			ERGGuide:        get("erg_guide", i),
		}
		text := get("text", i)
		if text == "" {
			text = row.FullName()
		}
		vec := float64(result.Scores[i])
		lex := lexicalScore(queryTokens, text)
		out = append(out, vectorindex.Candidate{
			Row:          row,
			Text:         text,
			Score:        r.alpha*vec + (1-r.alpha)*lex,
			VectorScore:  vec,
			LexicalScore: lex,
		})
	}
	return out
}

func gateCandidates(all []vectorindex.Candidate, filter *hazmat.GatingFilter) []vectorindex.Candidate {
	if filter == nil {
		return all
	}
	var out []vectorindex.Candidate
	for i := range all {
		if filter.Matches(&all[i].Row) {
			out = append(out, all[i])
		}
	}
	return out
}

func tokenizeQuery(s string) map[string]bool {
	out := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.Trim(f, ",()")
		if len(f) > 1 {
			out[f] = true
		}
	}
	return out
}

func lexicalScore(queryTokens map[string]bool, text string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	docTokens := tokenizeQuery(text)
	shared := 0
	for t := range queryTokens {
		if docTokens[t] {
			shared++
		}
	}
	return float64(shared) / float64(len(queryTokens))
}

// Close releases the Milvus connection.
func (r *milvusRetriever) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mc != nil {
		err := r.mc.Close()
		r.mc = nil
		return err
	}
	return nil
}
