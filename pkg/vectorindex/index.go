// Package vectorindex loads the JSON-serialized vector index built by
// the upstream tooling and serves hybrid (lexical + vector) search over
// it, optionally constrained by a gating filter.
package vectorindex

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
)

// IndexedDocument is one vector index entry, one-to-one with a
// regulatory corpus row.
type IndexedDocument struct {
	Vector   []float32            `json:"vector"`
	Text     string               `json:"text"`
	Metadata hazmat.RegulatoryRow `json:"metadata"`
}

// Candidate is one scored retrieval result.
type Candidate struct {
	Row          hazmat.RegulatoryRow
	Text         string
	Score        float64
	VectorScore  float64
	LexicalScore float64
}

// Index is the lazily loaded vector index. Load happens at most once
// per process; concurrent first access is guarded by sync.Once.
type Index struct {
	path string

	once  sync.Once
	docs  []IndexedDocument
	graph *graph
	err   error
}

// NewIndex returns an Index backed by the JSON file at path.
func NewIndex(path string) *Index {
	return &Index{path: path}
}

// NewIndexFromDocuments returns a pre-built Index for tests.
func NewIndexFromDocuments(docs []IndexedDocument) *Index {
	idx := &Index{}
	idx.once.Do(func() {})
	idx.docs = docs
	idx.buildGraph()
	return idx
}

func (idx *Index) load() error {
	idx.once.Do(func() {
		data, err := os.ReadFile(idx.path)
		if err != nil {
			idx.err = fmt.Errorf("failed to read vector index %s: %w", idx.path, err)
			return
		}
		if err := json.Unmarshal(data, &idx.docs); err != nil {
			idx.err = fmt.Errorf("failed to parse vector index %s: %w", idx.path, err)
			return
		}
		idx.buildGraph()
		logging.Infof("Loaded vector index: %d documents from %s", len(idx.docs), idx.path)
	})
	return idx.err
}

func (idx *Index) buildGraph() {
	idx.graph = newGraph(defaultGraphConfig())
	for i := range idx.docs {
		idx.graph.add(i, idx.docs[i].Vector)
	}
}

// Size returns the document count, loading the index on first use.
func (idx *Index) Size() (int, error) {
	if err := idx.load(); err != nil {
		return 0, err
	}
	return len(idx.docs), nil
}

// Search performs hybrid search: vector cosine score blended with a
// lexical overlap score by alpha. A non-nil filter restricts candidates
// to matching metadata; filtered searches scan the (small) gated subset
// exactly while unfiltered searches go through the HNSW graph.
func (idx *Index) Search(queryVector []float32, queryText string, filter *hazmat.GatingFilter, alpha float64, topK int) ([]Candidate, error) {
	if err := idx.load(); err != nil {
		return nil, err
	}
	queryTokens := tokenize(queryText)

	var candidates []Candidate
	if filter != nil {
		for i := range idx.docs {
			doc := &idx.docs[i]
			if !filter.Matches(&doc.Metadata) {
				continue
			}
			candidates = append(candidates, idx.score(doc, queryVector, queryTokens, alpha))
		}
	} else {
		// Over-fetch from the graph so lexical blending can reorder.
		fetch := topK * 2
		if n := len(idx.docs); fetch > n {
			fetch = n
		}
		for _, hit := range idx.graph.search(queryVector, fetch) {
			candidates = append(candidates, idx.score(&idx.docs[hit.ID], queryVector, queryTokens, alpha))
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

func (idx *Index) score(doc *IndexedDocument, queryVector []float32, queryTokens map[string]bool, alpha float64) Candidate {
	vec := float64(cosineSimilarity(queryVector, doc.Vector))
	lex := lexicalOverlap(queryTokens, doc.Text)
	return Candidate{
		Row:          doc.Metadata,
		Text:         doc.Text,
		Score:        alpha*vec + (1-alpha)*lex,
		VectorScore:  vec,
		LexicalScore: lex,
	}
}

// lexicalOverlap scores how much of the query vocabulary the document
// text covers, in [0,1].
func lexicalOverlap(queryTokens map[string]bool, text string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	docTokens := tokenize(text)
	shared := 0
	for t := range queryTokens {
		if docTokens[t] {
			shared++
		}
	}
	return float64(shared) / float64(len(queryTokens))
}

func tokenize(s string) map[string]bool {
	out := make(map[string]bool)
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '.' || r == '%')
	}) {
		if len(f) > 1 {
			out[f] = true
		}
	}
	return out
}
