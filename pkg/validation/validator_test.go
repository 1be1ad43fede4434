package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
)

func regulated() *hazmat.Classification {
	return &hazmat.Classification{
		UNNumber:           hazmat.String("UN1090"),
		ProperShippingName: hazmat.String("Acetone"),
		HazardClass:        hazmat.String("3"),
		PackingGroup:       hazmat.PG(hazmat.PackingGroupII),
		Confidence:         0.9,
		Source:             hazmat.SourceRuleDirect,
	}
}

func TestValidateWellFormedClassification(t *testing.T) {
	report := ValidateClassification(regulated())
	assert.True(t, report.IsValid)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestValidateNil(t *testing.T) {
	report := ValidateClassification(nil)
	assert.False(t, report.IsValid)
	require.NotEmpty(t, report.Errors)
}

func TestValidateInvalidUNNumberFormat(t *testing.T) {
	c := regulated()
	c.UNNumber = hazmat.String("1234")
	report := ValidateClassification(c)
	assert.False(t, report.IsValid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "UN number format")

	c.UNNumber = hazmat.String("UN12345")
	assert.False(t, ValidateClassification(c).IsValid)

	c.UNNumber = hazmat.String("un1090")
	assert.False(t, ValidateClassification(c).IsValid)
}

func TestValidateExemptionShortCircuits(t *testing.T) {
	c := &hazmat.Classification{
		Source:          hazmat.SourceRuleNonHazard,
		Confidence:      0.95,
		ExemptionReason: hazmat.String("not a DOT regulated material"),
	}
	report := ValidateClassification(c)
	assert.True(t, report.IsValid)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)

	// Exemption wins even when other fields are malformed.
	c.UNNumber = hazmat.String("garbage")
	c.Confidence = 0.1
	report = ValidateClassification(c)
	assert.True(t, report.IsValid)
	assert.Empty(t, report.Warnings)
}

func TestValidateMissingRequiredFields(t *testing.T) {
	c := &hazmat.Classification{Confidence: 0.9, Source: hazmat.SourceCFRHMT}
	report := ValidateClassification(c)
	assert.False(t, report.IsValid)
	assert.Len(t, report.Errors, 3, "un_number, shipping name, and hazard class are all required")
}

func TestValidateUnknownHazardClassIsWarning(t *testing.T) {
	c := regulated()
	c.HazardClass = hazmat.String("10")
	report := ValidateClassification(c)
	assert.True(t, report.IsValid, "unknown class is a warning, not an error")
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "vocabulary")
}

func TestValidateInvalidPackingGroup(t *testing.T) {
	c := regulated()
	bad := hazmat.PackingGroup("IV")
	c.PackingGroup = &bad
	report := ValidateClassification(c)
	assert.False(t, report.IsValid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "packing group")
}

func TestValidateLowConfidenceWarning(t *testing.T) {
	c := regulated()
	c.Confidence = 0.2
	report := ValidateClassification(c)
	assert.True(t, report.IsValid)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "low confidence")
}
