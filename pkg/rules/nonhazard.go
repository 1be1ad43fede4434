// Package rules implements the two short-circuit layers that run before
// retrieval: the non-hazard exemption table and the direct-rule mapper.
// Both are ordered (predicate, resolver) tables evaluated in a fixed
// sequence so new chemical families can be added without touching
// control flow.
package rules

import (
	"fmt"
	"regexp"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/query"
)

// nonHazardRule recognizes a material known to be unregulated.
type nonHazardRule struct {
	name    string
	trigger *regexp.Regexp
	// exclude vetoes the trigger when the name continues into a
	// different, regulated material (e.g. a glycol ether).
	exclude *regexp.Regexp
	// resolve returns the exemption reason, or "" when the rule must not
	// fire (e.g. a concentration above the exemption threshold, or an
	// ambiguous product with no concentration stated).
	resolve func(pct float64, hasPct bool, th config.ThresholdsConfig) string
}

func always(reason string) func(float64, bool, config.ThresholdsConfig) string {
	return func(float64, bool, config.ThresholdsConfig) string { return reason }
}

// nonHazardRules is evaluated top to bottom; the first rule that fires
// is authoritative and no further layer executes.
var nonHazardRules = []nonHazardRule{
	{
		name:    "ethylene-glycol",
		trigger: regexp.MustCompile(`(?i)\bethylene\s+glycol\b`),
		// Glycol ethers (e.g. ethylene glycol monobutyl ether, UN2369)
		// are regulated Class 6.1 materials, not the coolant.
		exclude: regexp.MustCompile(`(?i)\bether\b|\bbutox|\bcellosolve\b`),
		resolve: always("Ethylene glycol is not listed in the 49 CFR 172.101 hazardous materials table for ground transport"),
	},
	{
		name:    "propylene-glycol",
		trigger: regexp.MustCompile(`(?i)\bpropylene\s+glycol\b`),
		resolve: always("Propylene glycol is not a DOT regulated material"),
	},
	{
		name:    "castor-oil",
		trigger: regexp.MustCompile(`(?i)\bcastor\s+oil\b`),
		resolve: always("Castor oil is not a DOT regulated material"),
	},
	{
		name:    "glycerin",
		trigger: regexp.MustCompile(`(?i)\bglycer(in|ine|ol)\b`),
		resolve: always("Glycerin is not a DOT regulated material"),
	},
	{
		name:    "magnesium-chloride",
		trigger: regexp.MustCompile(`(?i)\bmagnesium\s+(chloride|hydroxide)\b`),
		resolve: always("Magnesium chloride and magnesium hydroxide are not DOT regulated materials"),
	},
	{
		name:    "vinegar",
		trigger: regexp.MustCompile(`(?i)\bvinegar\b`),
		resolve: func(pct float64, hasPct bool, th config.ThresholdsConfig) string {
			// Vinegar is clearly non-regulated by name; a stated
			// concentration above the acetic acid threshold still blocks.
			if hasPct && pct > th.AceticAcidExemptPct {
				return ""
			}
			return fmt.Sprintf("Vinegar (acetic acid <= %.0f%%) is not a DOT regulated material per 49 CFR 173.154(d)", th.AceticAcidExemptPct)
		},
	},
	{
		name:    "dilute-acetic-acid",
		trigger: regexp.MustCompile(`(?i)\bacetic\s+acid\b`),
		resolve: func(pct float64, hasPct bool, th config.ThresholdsConfig) string {
			// Acetic acid with no stated concentration is ambiguous.
			if !hasPct || pct > th.AceticAcidExemptPct {
				return ""
			}
			return fmt.Sprintf("Acetic acid at %.1f%% is below the %.0f%% regulatory threshold of 49 CFR 173.154(d)", pct, th.AceticAcidExemptPct)
		},
	},
	{
		name:    "dilute-hypochlorite",
		trigger: regexp.MustCompile(`(?i)\b(sodium\s+)?hypochlorite\b|\bbleach\b`),
		resolve: func(pct float64, hasPct bool, th config.ThresholdsConfig) string {
			// Hypochlorite with no stated concentration is ambiguous.
			if !hasPct || pct > th.HypochloriteExemptPct {
				return ""
			}
			return fmt.Sprintf("Hypochlorite solution at %.1f%% is at or below %.0f%% available chlorine and is not regulated per the UN1791 entry", pct, th.HypochloriteExemptPct)
		},
	},
}

// NonHazardTable recognizes materials and concentrations known to be
// unregulated, short-circuiting the whole pipeline.
type NonHazardTable struct {
	thresholds config.ThresholdsConfig
}

// NewNonHazardTable builds the table with the configured thresholds.
func NewNonHazardTable(th config.ThresholdsConfig) *NonHazardTable {
	return &NonHazardTable{thresholds: th}
}

// Evaluate runs the rule table against the raw query and returns a
// high-confidence non-regulated Classification when a rule fires, or
// nil to fall through to the next layer. It never errors.
func (t *NonHazardTable) Evaluate(rawQuery string) *hazmat.Classification {
	pct, hasPct := query.ExtractPercent(rawQuery)
	for _, rule := range nonHazardRules {
		if !rule.trigger.MatchString(rawQuery) {
			continue
		}
		if rule.exclude != nil && rule.exclude.MatchString(rawQuery) {
			continue
		}
		reason := rule.resolve(pct, hasPct, t.thresholds)
		if reason == "" {
			continue
		}
		logging.Debugf("Non-hazard rule %q fired for %q", rule.name, rawQuery)
		return &hazmat.Classification{
			Confidence:      t.thresholds.NonHazardConfidence,
			Source:          hazmat.SourceRuleNonHazard,
			Explanation:     fmt.Sprintf("Matched non-hazard rule %q. %s.", rule.name, reason),
			ExemptionReason: hazmat.String(reason),
			Citations: []hazmat.Citation{{
				Kind:      hazmat.CitationCFR,
				Reference: "49 CFR 172.101",
				Detail:    "not listed / exempted",
			}},
		}
	}
	return nil
}
