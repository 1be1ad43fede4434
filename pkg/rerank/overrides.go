package rerank

import (
	"regexp"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/vectorindex"
)

// familyOverride promotes a known-canonical entry for a small set of
// high-frequency, high-stakes product families where the generic
// numeric heuristic is insufficient. Overrides only reorder within the
// already-retrieved candidate set.
type familyOverride struct {
	name      string
	query     *regexp.Regexp
	baseName  *regexp.Regexp
	qualifier *regexp.Regexp
}

var familyOverrides = []familyOverride{
	{
		name:     "ethyl-acetate",
		query:    regexp.MustCompile(`(?i)\bethyl\s+acetate\b`),
		baseName: regexp.MustCompile(`(?i)^ethyl\s+acetate`),
	},
	{
		name:     "hexane-family",
		query:    regexp.MustCompile(`(?i)\bn?-?(hexane|heptane|pentane)s?\b`),
		baseName: regexp.MustCompile(`(?i)^(hexane|heptane|pentane)s?$`),
	},
	{
		name:     "sulfuric-drain-cleaner",
		query:    regexp.MustCompile(`(?i)\bdrain\s+(cleaner|opener)\b`),
		baseName: regexp.MustCompile(`(?i)^sulfuric\s+acid`),
		// "with more than 51" so the negated UN2796 qualifier
		// "with not more than 51" is never promoted.
		qualifier: regexp.MustCompile(`(?i)\bwith\s+more\s+than\s+51`),
	},
}

// ApplyOverrides moves a family's canonical entry to rank 0 when the
// query matches the family and the entry is present anywhere in the
// candidate list. Returns the (possibly reordered) candidates and the
// name of the override that fired, if any.
func ApplyOverrides(candidates []vectorindex.Candidate, productName string) ([]vectorindex.Candidate, string) {
	for _, ov := range familyOverrides {
		if !ov.query.MatchString(productName) {
			continue
		}
		for i := range candidates {
			row := &candidates[i].Row
			if !ov.baseName.MatchString(row.BaseName) {
				continue
			}
			if ov.qualifier != nil && !ov.qualifier.MatchString(row.Qualifier) {
				continue
			}
			if i == 0 {
				return candidates, ""
			}
			logging.Debugf("Override %q promoted %s from rank %d", ov.name, row.IDNumber, i)
			out := make([]vectorindex.Candidate, 0, len(candidates))
			out = append(out, candidates[i])
			out = append(out, candidates[:i]...)
			out = append(out, candidates[i+1:]...)
			return out, ov.name
		}
	}
	return candidates, ""
}
