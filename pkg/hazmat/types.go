// Package hazmat defines the data model shared by every layer of the
// classification engine: the Classification record every code path
// returns, the regulatory corpus row it is derived from, and the
// transient gating filter used to narrow retrieval.
package hazmat

import "regexp"

// Source identifies which layer produced a Classification.
type Source string

const (
	// SourceRuleNonHazard marks a short-circuit non-regulated result.
	SourceRuleNonHazard Source = "rule-nonhaz"
	// SourceRuleDirect marks a deterministic direct-rule lookup.
	SourceRuleDirect Source = "rule-direct"
	// SourceCFRHMT marks a retrieval result grounded in the 49 CFR
	// Hazardous Materials Table corpus.
	SourceCFRHMT Source = "cfr-hmt"
	// SourceDatabase marks a result from the database-backed classifier.
	SourceDatabase Source = "database"
	// SourceJSON marks a result where the file-backed classifier won the
	// orchestrator comparison.
	SourceJSON Source = "json"
	// SourceHybrid marks a database result kept after consulting both
	// backends.
	SourceHybrid Source = "hybrid"
	// SourceRAG marks the degraded result returned when the vector index
	// cannot be loaded.
	SourceRAG Source = "rag"
	// SourceError marks total failure of every backend.
	SourceError Source = "error"
)

// PackingGroup is the I/II/III severity tier (I = greatest danger).
// NONE is used for regulated materials with no assigned group.
type PackingGroup string

const (
	PackingGroupI    PackingGroup = "I"
	PackingGroupII   PackingGroup = "II"
	PackingGroupIII  PackingGroup = "III"
	PackingGroupNone PackingGroup = "NONE"
)

// Valid reports whether pg is one of the known packing groups.
func (pg PackingGroup) Valid() bool {
	switch pg {
	case PackingGroupI, PackingGroupII, PackingGroupIII, PackingGroupNone:
		return true
	}
	return false
}

// HazardClasses is the fixed vocabulary of DOT hazard classes. Novel
// classes are rare but not impossible, so validators treat membership
// violations as warnings rather than errors.
var HazardClasses = map[string]bool{
	"1": true, "2": true, "2.1": true, "2.2": true, "2.3": true,
	"3": true, "4.1": true, "4.2": true, "4.3": true,
	"5.1": true, "5.2": true, "6.1": true, "6.2": true,
	"7": true, "8": true, "9": true,
}

// Citation kinds.
const (
	CitationCFR     = "cfr"
	CitationERG     = "erg"
	CitationHistory = "history"
)

// Citation is one entry in the explanation trail of a Classification.
type Citation struct {
	Kind      string `json:"kind"`
	Reference string `json:"reference"`
	Detail    string `json:"detail,omitempty"`
}

// PackagingInstructions holds the 49 CFR 173.* packaging references for
// a regulated entry. Downstream validators only need presence/absence.
type PackagingInstructions struct {
	Exceptions string `json:"exceptions,omitempty"`
	NonBulk    string `json:"non_bulk,omitempty"`
	Bulk       string `json:"bulk,omitempty"`
}

// QuantityLimitations holds per-mode quantity limits for an entry.
type QuantityLimitations struct {
	PassengerAircraft string `json:"passenger_aircraft,omitempty"`
	CargoAircraft     string `json:"cargo_aircraft,omitempty"`
}

// Classification is the output of every classification code path.
// Nullable regulatory fields are pointers; absence of UNNumber together
// with a present ExemptionReason means "verified non-hazardous", not
// "unknown".
type Classification struct {
	UNNumber           *string       `json:"un_number"`
	ProperShippingName *string       `json:"proper_shipping_name"`
	HazardClass        *string       `json:"hazard_class"`
	PackingGroup       *PackingGroup `json:"packing_group"`
	Confidence         float64       `json:"confidence"`
	Source             Source        `json:"source"`

	Explanation         string                 `json:"explanation,omitempty"`
	Citations           []Citation             `json:"citations,omitempty"`
	ERGGuide            *string                `json:"erg_guide,omitempty"`
	Packaging           *PackagingInstructions `json:"packaging,omitempty"`
	QuantityLimitations *QuantityLimitations   `json:"quantity_limitations,omitempty"`
	VesselStowage       *string                `json:"vessel_stowage,omitempty"`
	SpecialProvisions   []string               `json:"special_provisions,omitempty"`

	// ExemptionReason is set only for explicitly non-regulated items.
	ExemptionReason *string `json:"exemption_reason,omitempty"`

	// Telemetry stamped by the orchestrator, never by inner layers.
	SearchMethod string `json:"searchMethod,omitempty"`
	SearchTimeMs int64  `json:"searchTimeMs,omitempty"`
}

// RegulatoryRow is one pre-built, immutable entry of the 49 CFR
// Hazardous Materials Table corpus.
type RegulatoryRow struct {
	IDNumber        string   `json:"id_number"`
	BaseName        string   `json:"base_name"`
	Qualifier       string   `json:"qualifier,omitempty"`
	ClassOrDivision string   `json:"class_or_division"`
	PackingGroup    string   `json:"packing_group,omitempty"`
	LabelCodes      []string `json:"label_codes,omitempty"`

	ERGGuide            string                 `json:"erg_guide,omitempty"`
	Packaging           *PackagingInstructions `json:"packaging,omitempty"`
	QuantityLimitations *QuantityLimitations   `json:"quantity_limitations,omitempty"`
	VesselStowage       string                 `json:"vessel_stowage,omitempty"`
	SpecialProvisions   []string               `json:"special_provisions,omitempty"`
}

// FullName returns the base name with its qualifier suffix when present.
func (r *RegulatoryRow) FullName() string {
	if r.Qualifier == "" {
		return r.BaseName
	}
	return r.BaseName + ", " + r.Qualifier
}

// GatingFilter restricts retrieval candidates to a plausible chemical
// family before similarity search. Per-query and never persisted.
type GatingFilter struct {
	BaseName *regexp.Regexp
	Class    *regexp.Regexp
}

// Matches reports whether a corpus row passes the filter. A nil filter
// or nil sub-pattern matches everything.
func (g *GatingFilter) Matches(row *RegulatoryRow) bool {
	if g == nil {
		return true
	}
	if g.BaseName != nil && !g.BaseName.MatchString(row.BaseName) {
		return false
	}
	if g.Class != nil && !g.Class.MatchString(row.ClassOrDivision) {
		return false
	}
	return true
}

// String returns a pointer to s. Small helper for the pointer-typed
// nullable fields above.
func String(s string) *string { return &s }

// PG returns a pointer to pg.
func PG(pg PackingGroup) *PackingGroup { return &pg }
