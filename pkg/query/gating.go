package query

import (
	"regexp"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
)

// familyGate maps a chemical-family trigger in the query to a metadata
// filter over corpus base names. Gating narrows retrieval to a
// plausible family before ranking; it is an optimization, never a hard
// requirement, so retrieval retries ungated on zero candidates.
type familyGate struct {
	trigger  *regexp.Regexp
	baseName *regexp.Regexp
	class    *regexp.Regexp
}

var familyGates = []familyGate{
	{
		trigger:  regexp.MustCompile(`(?i)\b(ethanol|ethyl alcohol|denatured|grain alcohol|proof)\b`),
		baseName: regexp.MustCompile(`(?i)(ethanol|alcohol)`),
	},
	{
		trigger:  regexp.MustCompile(`(?i)\b(isopropyl|isopropanol|ipa|2-propanol)\b`),
		baseName: regexp.MustCompile(`(?i)isopropanol|isopropyl`),
	},
	{
		trigger:  regexp.MustCompile(`(?i)\bmethanol|methyl alcohol|wood alcohol\b`),
		baseName: regexp.MustCompile(`(?i)methanol`),
	},
	{
		trigger:  regexp.MustCompile(`(?i)\b(hydrochloric|muriatic)\b`),
		baseName: regexp.MustCompile(`(?i)hydrochloric`),
		class:    regexp.MustCompile(`^8`),
	},
	{
		trigger:  regexp.MustCompile(`(?i)\bsulfuric|sulphuric\b`),
		baseName: regexp.MustCompile(`(?i)sulfuric`),
		class:    regexp.MustCompile(`^8`),
	},
	{
		// Ahead of the acetic gate: synonym expansion appends "acetic
		// ether" to ethyl acetate queries, which would otherwise gate
		// them into the acetic acid family.
		trigger:  regexp.MustCompile(`(?i)\bethyl acetate\b`),
		baseName: regexp.MustCompile(`(?i)ethyl acetate`),
	},
	{
		trigger:  regexp.MustCompile(`(?i)\bacetic\b`),
		baseName: regexp.MustCompile(`(?i)acetic`),
	},
	{
		trigger:  regexp.MustCompile(`(?i)\b(hypochlorite|bleach)\b`),
		baseName: regexp.MustCompile(`(?i)hypochlorite`),
	},
	{
		trigger:  regexp.MustCompile(`(?i)\b(methyl ethyl ketone|mek|butanone)\b`),
		baseName: regexp.MustCompile(`(?i)ethyl methyl ketone|methyl ethyl ketone`),
	},
	{
		trigger:  regexp.MustCompile(`(?i)\b(hexane|heptane|pentane)s?\b`),
		baseName: regexp.MustCompile(`(?i)hexane|heptane|pentane`),
		class:    regexp.MustCompile(`^3`),
	},
	{
		trigger:  regexp.MustCompile(`(?i)\bkerosene|kerosine\b`),
		baseName: regexp.MustCompile(`(?i)kerosene`),
	},
	{
		trigger:  regexp.MustCompile(`(?i)\bferric chloride\b`),
		baseName: regexp.MustCompile(`(?i)ferric chloride`),
	},
	{
		trigger:  regexp.MustCompile(`(?i)\bglycol ether|butyl cellosolve|2-butoxyethanol\b`),
		baseName: regexp.MustCompile(`(?i)glycol ether|butoxyethanol`),
	},
}

// DetectGatingFilter inspects the normalized query and returns a
// metadata filter for the first matching chemical family, or nil when
// no family is recognized.
func DetectGatingFilter(normalized string) *hazmat.GatingFilter {
	for _, gate := range familyGates {
		if gate.trigger.MatchString(normalized) {
			return &hazmat.GatingFilter{
				BaseName: gate.baseName,
				Class:    gate.class,
			}
		}
	}
	return nil
}
