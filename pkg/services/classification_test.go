package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/classifier"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
)

// The rule tables need no reference files or live backends, so these
// service-level tests run the real wiring end to end.

func TestServiceClassifyNonHazard(t *testing.T) {
	svc := NewClassificationService(config.Default())
	defer svc.Close()

	result := svc.Classify(context.Background(), "", "Ethylene Glycol 100%")
	require.NotNil(t, result)
	assert.Equal(t, hazmat.SourceRuleNonHazard, result.Source)
	assert.Nil(t, result.UNNumber)
	assert.NotNil(t, result.ExemptionReason)
}

type erroringBackend struct{}

func (erroringBackend) Name() string { return "json" }

func (erroringBackend) Classify(context.Context, string, string) (*hazmat.Classification, error) {
	return nil, errors.New("index file corrupted")
}

func TestServiceClassifyBackendErrorYieldsErrorResult(t *testing.T) {
	svc := NewClassificationService(config.Default())
	defer svc.Close()
	svc.fileBackend = erroringBackend{}

	result := svc.Classify(context.Background(), "SKU-1", "Acetone 99%")
	require.NotNil(t, result)
	assert.Equal(t, hazmat.SourceError, result.Source)
	assert.Zero(t, result.Confidence)
	assert.Contains(t, result.Explanation, "unavailable")
}

func TestServiceOrchestratedClassifySurvivesMissingBackends(t *testing.T) {
	// No Postgres DSN and no reference files are configured; the
	// orchestrator must still produce a well-formed result.
	svc := NewClassificationService(config.Default())
	defer svc.Close()

	result := svc.ClassifyWithEnhancedRAG(context.Background(), "SKU-1", "Propylene Glycol USP", classifier.ClassifyOptions{
		PreferDatabase:  true,
		EnableTelemetry: true,
	})
	require.NotNil(t, result)
	assert.Equal(t, hazmat.SourceRuleNonHazard, result.Source)
	assert.NotEmpty(t, result.SearchMethod)
}

func TestServiceBatchClassify(t *testing.T) {
	svc := NewClassificationService(config.Default())
	defer svc.Close()

	results := svc.BatchClassify(context.Background(), []classifier.BatchItem{
		{SKU: "SKU-1", Name: "Ethylene Glycol 100%"},
		{SKU: "SKU-2", Name: "Glycerin 99.7%"},
	}, classifier.BatchOptions{Concurrency: 2, PreferDatabase: true})

	require.Len(t, results, 2)
	assert.NotNil(t, results["SKU-1"].ExemptionReason)
	assert.NotNil(t, results["SKU-2"].ExemptionReason)
}

func TestServiceValidationPlumbing(t *testing.T) {
	svc := NewClassificationService(config.Default())
	defer svc.Close()

	report := svc.ValidateClassification(&hazmat.Classification{
		UNNumber:           hazmat.String("1234"),
		ProperShippingName: hazmat.String("Acetone"),
		HazardClass:        hazmat.String("3"),
		Confidence:         0.9,
	})
	assert.False(t, report.IsValid)
}

func TestServiceConfidenceScorePlumbing(t *testing.T) {
	svc := NewClassificationService(config.Default())
	defer svc.Close()

	view := svc.GetConfidenceScore(&hazmat.Classification{
		Source:          hazmat.SourceRuleNonHazard,
		ExemptionReason: hazmat.String("not regulated"),
	})
	assert.Greater(t, view.Score, 0.0)
	assert.Contains(t, view.Factors, "source_quality")
}

func TestServiceDefaultOptions(t *testing.T) {
	svc := NewClassificationService(nil)
	defer svc.Close()

	opts := svc.DefaultOptions()
	assert.True(t, opts.PreferDatabase)
	assert.True(t, opts.EnableTelemetry)
}
