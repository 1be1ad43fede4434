package confidence

import "github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"

// ScoreView is the secondary scoring breakdown exposed for downstream
// UI ranking. It is independent of the synthesizer's confidence and is
// not used internally.
type ScoreView struct {
	Score   float64            `json:"score"`
	Factors map[string]float64 `json:"factors"`
}

// sourceQuality ranks how trustworthy each producing layer is.
var sourceQuality = map[hazmat.Source]float64{
	hazmat.SourceRuleNonHazard: 0.95,
	hazmat.SourceRuleDirect:    0.95,
	hazmat.SourceCFRHMT:        0.85,
	hazmat.SourceDatabase:      0.85,
	hazmat.SourceHybrid:        0.8,
	hazmat.SourceJSON:          0.75,
	hazmat.SourceRAG:           0.3,
	hazmat.SourceError:         0,
}

// GetConfidenceScore combines source quality, field completeness, and
// verification signals into a single ranking score with its factors.
func GetConfidenceScore(c *hazmat.Classification) ScoreView {
	quality, ok := sourceQuality[c.Source]
	if !ok {
		quality = 0.5
	}

	completeness := fieldCompleteness(c)
	verification := verificationFactor(c)

	return ScoreView{
		Score: 0.4*quality + 0.3*completeness + 0.3*verification,
		Factors: map[string]float64{
			"source_quality": quality,
			"completeness":   completeness,
			"verification":   verification,
		},
	}
}

func fieldCompleteness(c *hazmat.Classification) float64 {
	// Verified non-regulated results are complete by definition.
	if c.ExemptionReason != nil {
		return 1
	}
	present := 0
	for _, ok := range []bool{
		c.UNNumber != nil,
		c.ProperShippingName != nil,
		c.HazardClass != nil,
		c.PackingGroup != nil,
	} {
		if ok {
			present++
		}
	}
	return float64(present) / 4
}

func verificationFactor(c *hazmat.Classification) float64 {
	v := 0.0
	hasCFR := false
	for _, cit := range c.Citations {
		switch cit.Kind {
		case hazmat.CitationCFR:
			hasCFR = true
		case hazmat.CitationERG:
			v += 0.25
		case hazmat.CitationHistory:
			v += 0.35
		}
	}
	if hasCFR {
		v += 0.4
	}
	if v > 1 {
		v = 1
	}
	return v
}
