package vectorindex

import (
	"math"
	"math/rand"
	"sort"
	"sync"
)

// graph is a Hierarchical Navigable Small World index over normalized
// embedding vectors, giving O(log n) approximate nearest-neighbor
// search instead of a brute-force scan. Thread-safe for concurrent
// reads after construction.
type graph struct {
	mu             sync.RWMutex
	vertices       map[int]*vertex
	entryPoint     int
	maxLayer       int
	m              int
	mMax0          int
	efConstruction int
	efSearch       int
	levelFactor    float64
	rng            *rand.Rand
}

type vertex struct {
	id        int
	embedding []float32
	neighbors map[int][]int // layer -> neighbor ids
	topLayer  int
}

// graphConfig tunes the accuracy/speed tradeoff.
type graphConfig struct {
	M              int // bi-directional links per vertex
	EfConstruction int // candidate list size while building
	EfSearch       int // candidate list size while searching
}

func defaultGraphConfig() graphConfig {
	return graphConfig{M: 16, EfConstruction: 200, EfSearch: 64}
}

// neighborHit is one scored search result.
type neighborHit struct {
	ID         int
	Similarity float32
}

func newGraph(cfg graphConfig) *graph {
	if cfg.M <= 0 {
		cfg.M = 16
	}
	if cfg.EfConstruction <= 0 {
		cfg.EfConstruction = 200
	}
	if cfg.EfSearch <= 0 {
		cfg.EfSearch = 64
	}
	return &graph{
		vertices:       make(map[int]*vertex),
		entryPoint:     -1,
		maxLayer:       -1,
		m:              cfg.M,
		mMax0:          cfg.M * 2,
		efConstruction: cfg.EfConstruction,
		efSearch:       cfg.EfSearch,
		levelFactor:    1.0 / math.Log(float64(cfg.M)),
		rng:            rand.New(rand.NewSource(1)),
	}
}

// add inserts one vector. Construction is single-writer.
func (g *graph) add(id int, embedding []float32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	level := g.randomLevel()
	v := &vertex{
		id:        id,
		embedding: embedding,
		neighbors: make(map[int][]int),
		topLayer:  level,
	}

	if g.entryPoint < 0 {
		g.entryPoint = id
		g.maxLayer = level
		g.vertices[id] = v
		return
	}

	top := level
	if g.maxLayer < top {
		top = g.maxLayer
	}
	for layer := top; layer >= 0; layer-- {
		candidates := g.searchLayer(embedding, g.entryPoint, g.efConstruction, layer)
		limit := g.m
		if layer == 0 {
			limit = g.mMax0
		}
		chosen := g.nearest(candidates, limit, embedding)
		v.neighbors[layer] = chosen
		for _, nid := range chosen {
			n := g.vertices[nid]
			if n == nil {
				continue
			}
			n.neighbors[layer] = append(n.neighbors[layer], id)
			if len(n.neighbors[layer]) > limit {
				n.neighbors[layer] = g.nearest(n.neighbors[layer], limit, n.embedding)
			}
		}
	}

	if level > g.maxLayer {
		g.maxLayer = level
		g.entryPoint = id
	}
	g.vertices[id] = v
}

// search returns the k most similar vertices, highest similarity first.
func (g *graph) search(query []float32, k int) []neighborHit {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.entryPoint < 0 {
		return nil
	}

	current := g.entryPoint
	for layer := g.maxLayer; layer > 0; layer-- {
		if near := g.searchLayer(query, current, 1, layer); len(near) > 0 {
			current = near[0]
		}
	}

	ef := g.efSearch
	if ef < k {
		ef = k
	}
	ids := g.searchLayer(query, current, ef, 0)

	hits := make([]neighborHit, 0, len(ids))
	for _, id := range ids {
		if v, ok := g.vertices[id]; ok {
			hits = append(hits, neighborHit{ID: id, Similarity: cosineSimilarity(query, v.embedding)})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// size reports the vertex count.
func (g *graph) size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertices)
}

func (g *graph) randomLevel() int {
	u := g.rng.Float64()
	if u <= 0 {
		u = math.SmallestNonzeroFloat64
	}
	return int(-math.Log(u) * g.levelFactor)
}

// searchLayer is a best-first expansion at one layer; callers hold the
// lock. Distance is negated similarity, so smaller is better.
func (g *graph) searchLayer(query []float32, entry, ef, layer int) []int {
	type scored struct {
		id   int
		dist float32
	}

	entryVertex, ok := g.vertices[entry]
	if !ok {
		return nil
	}

	visited := map[int]bool{entry: true}
	entryDist := -cosineSimilarity(query, entryVertex.embedding)
	frontier := []scored{{entry, entryDist}}
	results := []scored{{entry, entryDist}}

	worst := func() float32 {
		w := float32(math.Inf(-1))
		for _, r := range results {
			if r.dist > w {
				w = r.dist
			}
		}
		return w
	}
	dropWorst := func() {
		wi, w := 0, float32(math.Inf(-1))
		for i, r := range results {
			if r.dist > w {
				wi, w = i, r.dist
			}
		}
		results = append(results[:wi], results[wi+1:]...)
	}

	for len(frontier) > 0 {
		// Pop the closest frontier entry.
		bi := 0
		for i := range frontier {
			if frontier[i].dist < frontier[bi].dist {
				bi = i
			}
		}
		current := frontier[bi]
		frontier = append(frontier[:bi], frontier[bi+1:]...)

		if len(results) >= ef && current.dist > worst() {
			break
		}

		v := g.vertices[current.id]
		if v == nil {
			continue
		}
		for _, nid := range v.neighbors[layer] {
			if visited[nid] {
				continue
			}
			visited[nid] = true
			n := g.vertices[nid]
			if n == nil {
				continue
			}
			d := -cosineSimilarity(query, n.embedding)
			if len(results) < ef {
				frontier = append(frontier, scored{nid, d})
				results = append(results, scored{nid, d})
			} else if d < worst() {
				frontier = append(frontier, scored{nid, d})
				results = append(results, scored{nid, d})
				dropWorst()
			}
		}
	}

	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.id
	}
	return ids
}

// nearest keeps the limit closest candidates to ref.
func (g *graph) nearest(ids []int, limit int, ref []float32) []int {
	if len(ids) <= limit {
		return ids
	}
	type scored struct {
		id   int
		dist float32
	}
	all := make([]scored, 0, len(ids))
	for _, id := range ids {
		v := g.vertices[id]
		if v == nil || len(v.embedding) != len(ref) {
			continue
		}
		all = append(all, scored{id, -cosineSimilarity(ref, v.embedding)})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].dist < all[j].dist })
	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]int, len(all))
	for i, s := range all {
		out[i] = s.id
	}
	return out
}

// cosineSimilarity assumes pre-normalized vectors and reduces to a dot
// product. Mismatched dimensions score zero.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
