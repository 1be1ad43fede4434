// Package query normalizes and expands raw product-name queries before
// rule evaluation and retrieval. All functions are pure.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// synonymGroups widen lexical recall: when any member of a group appears
// in the query, the whole group is appended. The first member is the
// canonical name used by the regulatory corpus.
var synonymGroups = [][]string{
	{"isopropyl alcohol", "ipa", "isopropanol", "2-propanol", "rubbing alcohol"},
	{"methyl ethyl ketone", "mek", "2-butanone", "butanone"},
	{"ethanol", "ethyl alcohol", "grain alcohol"},
	{"denatured alcohol", "denatured ethanol", "specially denatured alcohol", "sda"},
	{"methanol", "methyl alcohol", "wood alcohol"},
	{"hydrochloric acid", "muriatic acid"},
	{"sodium hypochlorite", "bleach", "liquid chlorine"},
	{"sulfuric acid", "sulphuric acid", "battery acid"},
	{"acetic acid", "ethanoic acid"},
	{"ethyl acetate", "acetic ether", "ethyl ester of acetic acid"},
	{"kerosene", "kerosine", "paraffin oil"},
	{"ethylene glycol", "glycol antifreeze"},
	{"propylene glycol", "1,2-propanediol"},
	{"glycerin", "glycerol", "glycerine"},
	{"hexane", "n-hexane"},
	{"heptane", "n-heptane"},
	{"pentane", "n-pentane"},
	{"ferric chloride", "iron(iii) chloride", "iron trichloride"},
}

var (
	proofPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*proof\b`)
	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
)

// Normalize expands name with domain synonyms and unit conversions and
// returns the widened query text. The original text is always preserved
// as the prefix.
func Normalize(name string) string {
	lower := strings.ToLower(name)
	expanded := name

	for _, group := range synonymGroups {
		matched := false
		for _, term := range group {
			if containsTerm(lower, term) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, term := range group {
			if !containsTerm(strings.ToLower(expanded), term) {
				expanded += " " + term
			}
		}
	}

	// Proof is not used in the regulatory corpus; append the ABV
	// equivalent (proof / 2) so concentration-qualified entries match.
	if m := proofPattern.FindStringSubmatch(lower); m != nil {
		if proof, err := strconv.ParseFloat(m[1], 64); err == nil {
			expanded += fmt.Sprintf(" %.1f%% alcohol by volume", proof/2)
		}
	}

	return expanded
}

// ExtractPercent returns the first N[.N]% concentration in s.
func ExtractPercent(s string) (float64, bool) {
	m := percentPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ExtractPercents returns every N[.N]% concentration in s, in order.
func ExtractPercents(s string) []float64 {
	var out []float64
	for _, m := range percentPattern.FindAllStringSubmatch(s, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// containsTerm reports whether term occurs in text on word boundaries.
// Plain substring matching would turn "heptane" into a hit for
// "methyl heptane derivative" style names, which is intended, but must
// not match inside an unrelated word.
func containsTerm(text, term string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], term)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(term)
		startOK := start == 0 || !isWordChar(text[start-1])
		endOK := end == len(text) || !isWordChar(text[end])
		if startOK && endOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
