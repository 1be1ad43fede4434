// Package confidence fuses retrieval score, historical-shipment
// corroboration, and family-specific floors into the final confidence
// value, and assembles the explanation and citation trail.
package confidence

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/refdata"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/vectorindex"
)

const (
	confidenceFloor   = 0.3
	confidenceCeiling = 0.99
	historyBoost      = 0.1
)

// familyFloor raises confidence to a minimum when the query matches a
// known family and the chosen candidate's base name corresponds.
type familyFloor struct {
	name     string
	query    *regexp.Regexp
	baseName *regexp.Regexp
	floor    float64
}

var familyFloors = []familyFloor{
	{
		name:     "ethyl-acetate",
		query:    regexp.MustCompile(`(?i)\bethyl\s+acetate\b`),
		baseName: regexp.MustCompile(`(?i)^ethyl\s+acetate`),
		floor:    0.8,
	},
	{
		name:     "denatured-with-proof",
		query:    regexp.MustCompile(`(?i)\bdenatured\b.*\d+\s*proof|\d+\s*proof.*\bdenatured\b`),
		baseName: regexp.MustCompile(`(?i)alcohol`),
		floor:    0.8,
	},
	{
		name:     "hexane-family",
		query:    regexp.MustCompile(`(?i)\bn?-?(hexane|heptane|pentane)s?\b`),
		baseName: regexp.MustCompile(`(?i)^(hexane|heptane|pentane)s?$`),
		floor:    0.8,
	},
	{
		name:     "sulfuric-drain-cleaner",
		query:    regexp.MustCompile(`(?i)\bdrain\s+(cleaner|opener)\b`),
		baseName: regexp.MustCompile(`(?i)^sulfuric\s+acid`),
		floor:    0.75,
	},
}

// Input carries everything the synthesizer fuses for one result.
type Input struct {
	Candidate      vectorindex.Candidate
	Score          float64
	SKU            string
	ProductName    string
	RerankAdjusted bool
	OverrideName   string
}

// Synthesizer builds the final Classification for a retrieval result.
type Synthesizer struct {
	erg     *refdata.ERGStore
	history *refdata.HistoryStore
}

// NewSynthesizer wires the synthesizer to the reference stores.
func NewSynthesizer(erg *refdata.ERGStore, history *refdata.HistoryStore) *Synthesizer {
	return &Synthesizer{erg: erg, history: history}
}

// Synthesize fuses the signals into a Classification with explanation
// and citations. It never errors: missing reference data only removes
// the corresponding enrichment.
func (s *Synthesizer) Synthesize(in Input) *hazmat.Classification {
	row := in.Candidate.Row

	historyCount := 0
	if s.history != nil {
		historyCount = s.history.CorroborationCount(in.SKU, in.ProductName, row.IDNumber)
	}

	conf := 0.6 + (in.Score-0.5)*0.8
	if historyCount > 0 {
		conf += historyBoost
	}
	conf = clamp(conf, confidenceFloor, confidenceCeiling)
	for _, ff := range familyFloors {
		if conf < ff.floor && ff.query.MatchString(in.ProductName) && ff.baseName.MatchString(row.BaseName) {
			conf = ff.floor
			break
		}
	}

	c := hazmat.ClassificationFromRow(&row, "", conf, hazmat.SourceCFRHMT)

	ergGuide := row.ERGGuide
	if ergGuide == "" && s.erg != nil {
		ergGuide = s.erg.Guide(row.IDNumber)
		if ergGuide != "" {
			c.ERGGuide = hazmat.String(ergGuide)
			c.Citations = append(c.Citations, hazmat.Citation{
				Kind:      hazmat.CitationERG,
				Reference: ergGuide,
			})
		}
	}
	if historyCount > 0 {
		c.Citations = append(c.Citations, hazmat.Citation{
			Kind:      hazmat.CitationHistory,
			Reference: row.IDNumber,
			Detail:    fmt.Sprintf("%d prior shipments resolved to this entry", historyCount),
		})
	}

	c.Explanation = buildExplanation(row, in, ergGuide, historyCount)
	return c
}

func buildExplanation(row hazmat.RegulatoryRow, in Input, ergGuide string, historyCount int) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Matched %q", row.FullName()))
	if in.RerankAdjusted {
		parts = append(parts, "concentration-aware reranking adjusted the candidate order")
	}
	if in.OverrideName != "" {
		parts = append(parts, fmt.Sprintf("family override %q selected this entry", in.OverrideName))
	}
	if ergGuide != "" {
		parts = append(parts, fmt.Sprintf("ERG guide %s", ergGuide))
	}
	if historyCount > 0 {
		parts = append(parts, fmt.Sprintf("%d prior shipments corroborate this classification", historyCount))
	}
	return strings.Join(parts, "; ") + "."
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
