// Package validation checks finished classifications against DOT-style
// structural rules. Validation failures are data, not exceptions: a
// low-quality result is still usable by a caller that wants to show it
// with a warning.
package validation

import (
	"fmt"
	"regexp"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
)

// Report is the structured outcome of validating one classification.
// Errors block downstream freight documentation; warnings are
// informational only.
type Report struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

var unNumberPattern = regexp.MustCompile(`^UN\d{4}$`)

// ValidateClassification checks structural rules on c. Explicitly
// non-regulated results are exempt from the structural checks.
func ValidateClassification(c *hazmat.Classification) Report {
	report := Report{IsValid: true, Errors: []string{}, Warnings: []string{}}
	if c == nil {
		report.IsValid = false
		report.Errors = append(report.Errors, "classification is nil")
		return report
	}
	if c.ExemptionReason != nil {
		return report
	}

	if c.UNNumber == nil || *c.UNNumber == "" {
		report.Errors = append(report.Errors, "un_number is required for regulated materials")
	} else if !unNumberPattern.MatchString(*c.UNNumber) {
		report.Errors = append(report.Errors, fmt.Sprintf("invalid UN number format %q, expected UN followed by 4 digits", *c.UNNumber))
	}

	if c.ProperShippingName == nil || *c.ProperShippingName == "" {
		report.Errors = append(report.Errors, "proper_shipping_name is required for regulated materials")
	}

	if c.HazardClass == nil || *c.HazardClass == "" {
		report.Errors = append(report.Errors, "hazard_class is required for regulated materials")
	} else if !hazmat.HazardClasses[*c.HazardClass] {
		report.Warnings = append(report.Warnings, fmt.Sprintf("hazard class %q is not in the known vocabulary", *c.HazardClass))
	}

	if c.PackingGroup != nil && !c.PackingGroup.Valid() {
		report.Errors = append(report.Errors, fmt.Sprintf("packing group %q must be one of I, II, III, NONE", *c.PackingGroup))
	}

	if c.Confidence < 0.5 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("low confidence %.2f, manual review recommended", c.Confidence))
	}

	report.IsValid = len(report.Errors) == 0
	return report
}
