// Package rerank re-orders retrieval candidates with a numeric
// concentration heuristic, then applies narrow family-specific
// overrides. Both passes are pure and never drop a valid top result,
// only reorder within the retrieved set.
package rerank

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/query"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/vectorindex"
)

const (
	inRangeBoost   = 0.15
	proximityBoost = 0.08
	conflictDemote = 0.10
	// proximityWindow is how close (in percentage points) a query
	// concentration must be to a candidate's stated concentration to
	// count as a near match.
	proximityWindow = 5.0
)

// Rerank re-scores candidates by concentration agreement between the
// original product name and each candidate's qualifier text, returning
// the topK in ranked order plus whether reranking changed the leader.
func Rerank(candidates []vectorindex.Candidate, productName string, topK int) ([]vectorindex.Candidate, bool) {
	if len(candidates) == 0 {
		return nil, false
	}
	queryPcts := query.ExtractPercents(productName)

	out := make([]vectorindex.Candidate, len(candidates))
	copy(out, candidates)

	if len(queryPcts) > 0 {
		for i := range out {
			out[i].Score += concentrationAdjustment(out[i].Row.Qualifier, queryPcts)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	}

	if len(out) > topK {
		out = out[:topK]
	}
	changed := out[0].Row.IDNumber != candidates[0].Row.IDNumber
	return out, changed
}

// concentrationAdjustment scores qualifier text against the query
// concentrations: in-range or exact matches boost, near misses boost
// less, and explicit conflicts demote.
func concentrationAdjustment(qualifier string, queryPcts []float64) float64 {
	if qualifier == "" {
		return 0
	}
	lo, hi, ranged := parseConcentrationRange(qualifier)
	stated := statedPercents(qualifier)

	for _, pct := range queryPcts {
		if ranged {
			if pct >= lo && pct <= hi {
				return inRangeBoost
			}
			continue
		}
		for _, s := range stated {
			if s == pct {
				return inRangeBoost
			}
			if diff := s - pct; diff < proximityWindow && diff > -proximityWindow {
				return proximityBoost
			}
		}
	}
	if ranged || len(stated) > 0 {
		// The qualifier states a concentration the query contradicts.
		return -conflictDemote
	}
	return 0
}

// Regulatory qualifier text writes concentrations both ways: "51%" and
// "51 percent".
const pctUnit = `\s*(?:%|percent\b)`

var (
	moreThanPattern    = regexp.MustCompile(`(?i)more\s+than\s+(\d+(?:\.\d+)?)` + pctUnit)
	notMoreThanPattern = regexp.MustCompile(`(?i)not\s+more\s+than\s+(\d+(?:\.\d+)?)` + pctUnit)
	notLessThanPattern = regexp.MustCompile(`(?i)not\s+less\s+than\s+(\d+(?:\.\d+)?)` + pctUnit)
	lessThanPattern    = regexp.MustCompile(`(?i)less\s+than\s+(\d+(?:\.\d+)?)` + pctUnit)
	spanPattern        = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%?\s*(?:to|-)\s*(\d+(?:\.\d+)?)` + pctUnit)
	statedPctPattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)` + pctUnit)
)

// statedPercents extracts every concentration a qualifier states.
func statedPercents(qualifier string) []float64 {
	var out []float64
	for _, m := range statedPctPattern.FindAllStringSubmatch(qualifier, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// parseConcentrationRange extracts a [lo, hi] concentration range from
// regulatory qualifier text such as "with more than 51 percent acid" or
// "with not less than 5% but not more than 16% available chlorine".
func parseConcentrationRange(qualifier string) (lo, hi float64, ok bool) {
	lo, hi = 0, 100

	if m := spanPattern.FindStringSubmatch(qualifier); m != nil {
		a, errA := strconv.ParseFloat(m[1], 64)
		b, errB := strconv.ParseFloat(m[2], 64)
		if errA == nil && errB == nil {
			return a, b, true
		}
	}

	if m := notLessThanPattern.FindStringSubmatch(qualifier); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			lo, ok = v, true
		}
	}
	// "not more than" must be checked before the bare "more than"
	// pattern, which would otherwise swallow it.
	if m := notMoreThanPattern.FindStringSubmatch(qualifier); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			hi, ok = v, true
		}
	} else if m := moreThanPattern.FindStringSubmatch(qualifier); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			lo, ok = v, true
		}
	} else if m := lessThanPattern.FindStringSubmatch(qualifier); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			hi, ok = v, true
		}
	}
	return lo, hi, ok
}
