package classifier

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/corpus"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/embedding"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/refdata"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/vectorindex"
)

var fixtureRows = []hazmat.RegulatoryRow{
	{IDNumber: "UN1090", BaseName: "Acetone", ClassOrDivision: "3", PackingGroup: "II", ERGGuide: "127"},
	{IDNumber: "UN1173", BaseName: "Ethyl acetate", ClassOrDivision: "3", PackingGroup: "II", ERGGuide: "129"},
	{IDNumber: "UN1789", BaseName: "Hydrochloric acid, solution", ClassOrDivision: "8", PackingGroup: "II", ERGGuide: "157"},
	{IDNumber: "UN1789", BaseName: "Hydrochloric acid, solution", ClassOrDivision: "8", PackingGroup: "III", ERGGuide: "157"},
	{IDNumber: "UN1223", BaseName: "Kerosene", ClassOrDivision: "3", PackingGroup: "III", ERGGuide: "128"},
}

func fixtureDocuments() []vectorindex.IndexedDocument {
	vectors := [][]float32{
		{1, 0, 0, 0, 0},
		{0, 1, 0, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 0, 1, 0},
		{0, 0, 0, 0, 1},
	}
	docs := make([]vectorindex.IndexedDocument, len(fixtureRows))
	for i, row := range fixtureRows {
		docs[i] = vectorindex.IndexedDocument{
			Vector:   vectors[i],
			Text:     row.FullName(),
			Metadata: row,
		}
	}
	return docs
}

// acetoneProvider embeds every query as the acetone fixture vector.
func acetoneProvider() embedding.Provider {
	return embedding.ProviderFunc(func(context.Context, string) ([]float32, error) {
		return []float32{1, 0, 0, 0, 0}, nil
	})
}

func fixtureClassifier(provider embedding.Provider) *FileClassifier {
	return NewFileClassifier(config.Default(), FileClassifierDeps{
		Corpus:   corpus.NewStoreFromRows(fixtureRows),
		Index:    vectorindex.NewIndexFromDocuments(fixtureDocuments()),
		Provider: provider,
		ERG:      refdata.NewERGStoreFromMap(map[string]string{"UN1090": "127"}),
		History:  refdata.NewHistoryStoreFromRecords(nil),
	})
}

func TestFileClassifierNonHazardPriority(t *testing.T) {
	c := fixtureClassifier(acetoneProvider())
	result, err := c.Classify(context.Background(), "", "Ethylene Glycol 100%")
	require.NoError(t, err)
	assert.Nil(t, result.UNNumber)
	assert.Equal(t, hazmat.SourceRuleNonHazard, result.Source)
	assert.GreaterOrEqual(t, result.Confidence, 0.9)
	assert.NotNil(t, result.ExemptionReason)
}

func TestFileClassifierDirectRulePriority(t *testing.T) {
	c := fixtureClassifier(acetoneProvider())
	result, err := c.Classify(context.Background(), "", "Ethyl Acetate")
	require.NoError(t, err)
	assert.Equal(t, hazmat.SourceRuleDirect, result.Source)
	require.NotNil(t, result.ProperShippingName)
	assert.Contains(t, *result.ProperShippingName, "Ethyl acetate")
	assert.GreaterOrEqual(t, result.Confidence, 0.9)
}

func TestFileClassifierRetrievalPath(t *testing.T) {
	c := fixtureClassifier(acetoneProvider())
	result, err := c.Classify(context.Background(), "", "Acetone 99%")
	require.NoError(t, err)
	assert.Equal(t, hazmat.SourceCFRHMT, result.Source)
	require.NotNil(t, result.UNNumber)
	assert.Equal(t, "UN1090", *result.UNNumber)
	require.NotNil(t, result.ERGGuide)
	assert.Equal(t, "127", *result.ERGGuide)
}

func TestFileClassifierIdempotence(t *testing.T) {
	c := fixtureClassifier(acetoneProvider())
	first, err := c.Classify(context.Background(), "SKU-1", "Acetone 99%")
	require.NoError(t, err)
	second, err := c.Classify(context.Background(), "SKU-1", "Acetone 99%")
	require.NoError(t, err)

	assert.Equal(t, *first.UNNumber, *second.UNNumber)
	assert.Equal(t, *first.HazardClass, *second.HazardClass)
	assert.Equal(t, first.Source, second.Source)
}

func TestFileClassifierDegradesOnEmbeddingFailure(t *testing.T) {
	failing := embedding.ProviderFunc(func(context.Context, string) ([]float32, error) {
		return nil, fmt.Errorf("provider unreachable")
	})
	c := fixtureClassifier(failing)
	result, err := c.Classify(context.Background(), "", "Acetone 99%")
	require.NoError(t, err, "index failures degrade, they never throw")
	assert.Equal(t, hazmat.SourceRAG, result.Source)
	assert.InDelta(t, 0.1, result.Confidence, 1e-9)
	assert.Contains(t, result.Explanation, "Rebuild the index")
}

func TestFileClassifierRetrievalMiss(t *testing.T) {
	c := NewFileClassifier(config.Default(), FileClassifierDeps{
		Corpus:   corpus.NewStoreFromRows(nil),
		Index:    vectorindex.NewIndexFromDocuments(nil),
		Provider: acetoneProvider(),
		ERG:      refdata.NewERGStoreFromMap(nil),
		History:  refdata.NewHistoryStoreFromRecords(nil),
	})
	result, err := c.Classify(context.Background(), "", "Mystery Compound X")
	require.NoError(t, err)
	assert.Nil(t, result.UNNumber)
	assert.LessOrEqual(t, result.Confidence, 0.2)
}

func TestFileClassifierRulesSurviveRetrievalOutage(t *testing.T) {
	failing := embedding.ProviderFunc(func(context.Context, string) ([]float32, error) {
		return nil, fmt.Errorf("provider unreachable")
	})
	c := fixtureClassifier(failing)
	result, err := c.Classify(context.Background(), "", "Hydrochloric Acid 15%")
	require.NoError(t, err)
	assert.Equal(t, hazmat.SourceRuleDirect, result.Source)
	require.NotNil(t, result.PackingGroup)
	assert.Equal(t, hazmat.PackingGroupIII, *result.PackingGroup)
}
