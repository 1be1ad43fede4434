package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/embedding"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
)

func testDocuments() []IndexedDocument {
	return []IndexedDocument{
		{
			Vector: []float32{1, 0, 0, 0},
			Text:   "Acetone",
			Metadata: hazmat.RegulatoryRow{
				IDNumber: "UN1090", BaseName: "Acetone", ClassOrDivision: "3", PackingGroup: "II",
			},
		},
		{
			Vector: []float32{0, 1, 0, 0},
			Text:   "Hydrochloric acid, solution",
			Metadata: hazmat.RegulatoryRow{
				IDNumber: "UN1789", BaseName: "Hydrochloric acid, solution", ClassOrDivision: "8", PackingGroup: "II",
			},
		},
		{
			Vector: []float32{0, 0, 1, 0},
			Text:   "Sulfuric acid with more than 51 percent acid",
			Metadata: hazmat.RegulatoryRow{
				IDNumber: "UN1830", BaseName: "Sulfuric acid", Qualifier: "with more than 51 percent acid", ClassOrDivision: "8", PackingGroup: "II",
			},
		},
		{
			Vector: []float32{0, 0, 0, 1},
			Text:   "Kerosene",
			Metadata: hazmat.RegulatoryRow{
				IDNumber: "UN1223", BaseName: "Kerosene", ClassOrDivision: "3", PackingGroup: "III",
			},
		},
	}
}

func TestSearchUnfilteredRanksByBlendedScore(t *testing.T) {
	idx := NewIndexFromDocuments(testDocuments())
	got, err := idx.Search([]float32{1, 0, 0, 0}, "acetone drum", nil, 0.5, 10)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "UN1090", got[0].Row.IDNumber)
	assert.Greater(t, got[0].VectorScore, 0.99)
	assert.Greater(t, got[0].LexicalScore, 0.0)
}

func TestSearchFilteredScansGatedSubset(t *testing.T) {
	idx := NewIndexFromDocuments(testDocuments())
	filter := &hazmat.GatingFilter{
		BaseName: regexp.MustCompile(`(?i)acid`),
		Class:    regexp.MustCompile(`^8`),
	}
	got, err := idx.Search([]float32{0, 1, 0, 0}, "hydrochloric acid", filter, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, got, 2, "only class 8 acid rows pass the gate")
	assert.Equal(t, "UN1789", got[0].Row.IDNumber)
}

func TestSearchFilterMatchingNothingReturnsEmpty(t *testing.T) {
	idx := NewIndexFromDocuments(testDocuments())
	filter := &hazmat.GatingFilter{BaseName: regexp.MustCompile(`(?i)plutonium`)}
	got, err := idx.Search([]float32{1, 0, 0, 0}, "plutonium", filter, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchTruncatesToTopK(t *testing.T) {
	idx := NewIndexFromDocuments(testDocuments())
	got, err := idx.Search([]float32{1, 1, 1, 1}, "", nil, 1.0, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestIndexMissingFileErrors(t *testing.T) {
	idx := NewIndex(filepath.Join(t.TempDir(), "absent.json"))
	_, err := idx.Size()
	require.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, float64(cosineSimilarity([]float32{1, 0}, []float32{1, 0})), 1e-6)
	assert.InDelta(t, 0.0, float64(cosineSimilarity([]float32{1, 0}, []float32{0, 1})), 1e-6)
	assert.Equal(t, float32(0), cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}), "dimension mismatch scores zero")
}

func staticProvider(vec []float32) embedding.Provider {
	return embedding.ProviderFunc(func(context.Context, string) ([]float32, error) {
		return vec, nil
	})
}

func TestEngineRetrievesGated(t *testing.T) {
	engine := NewEngine(NewIndexFromDocuments(testDocuments()), staticProvider([]float32{0, 1, 0, 0}), config.Default().Retrieval)
	filter := &hazmat.GatingFilter{BaseName: regexp.MustCompile(`(?i)hydrochloric`)}
	got, err := engine.Retrieve(context.Background(), "hydrochloric acid", filter)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "UN1789", got[0].Row.IDNumber)
}

func TestEngineGatingFallback(t *testing.T) {
	engine := NewEngine(NewIndexFromDocuments(testDocuments()), staticProvider([]float32{0, 0, 0, 1}), config.Default().Retrieval)
	// A gate that matches nothing must retry ungated and still return a
	// top candidate from the non-empty corpus.
	filter := &hazmat.GatingFilter{BaseName: regexp.MustCompile(`(?i)unobtainium`)}
	got, err := engine.Retrieve(context.Background(), "kerosene", filter)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "UN1223", got[0].Row.IDNumber)
}

func TestEngineEmbeddingFailureIsIndexUnavailable(t *testing.T) {
	failing := embedding.ProviderFunc(func(context.Context, string) ([]float32, error) {
		return nil, fmt.Errorf("connection refused")
	})
	engine := NewEngine(NewIndexFromDocuments(testDocuments()), failing, config.Default().Retrieval)
	_, err := engine.Retrieve(context.Background(), "acetone", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexUnavailable))
}

func TestEngineUnloadableIndexIsIndexUnavailable(t *testing.T) {
	engine := NewEngine(NewIndex(filepath.Join(t.TempDir(), "absent.json")), staticProvider([]float32{1}), config.Default().Retrieval)
	_, err := engine.Retrieve(context.Background(), "acetone", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexUnavailable))
}
