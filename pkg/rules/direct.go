package rules

import (
	"fmt"
	"regexp"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/corpus"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/query"
)

// rowQuery describes how a fired direct rule resolves against the
// regulatory corpus.
type rowQuery struct {
	base *regexp.Regexp
	opts corpus.LookupOptions
	// packingGroup overrides the row's group (concentration-gated rules).
	packingGroup hazmat.PackingGroup
	// confidence overrides the table default when nonzero.
	confidence float64
	note       string
}

// directRule deterministically maps a curated product family to a
// corpus row, trading recall for precision on high-volume products
// where embedding retrieval historically under- or over-classifies.
type directRule struct {
	name    string
	trigger *regexp.Regexp
	resolve func(pct float64, hasPct bool, th config.ThresholdsConfig) *rowQuery
}

func fixed(base string, note string) func(float64, bool, config.ThresholdsConfig) *rowQuery {
	re := regexp.MustCompile(base)
	return func(float64, bool, config.ThresholdsConfig) *rowQuery {
		return &rowQuery{base: re, note: note}
	}
}

// directRules is evaluated top to bottom. More specific families come
// before generic ones (denatured alcohol before ethanol, drain cleaner
// before plain sulfuric acid).
var directRules = []directRule{
	{
		name:    "ethyl-acetate",
		trigger: regexp.MustCompile(`(?i)\bethyl\s+acetate\b`),
		resolve: fixed(`(?i)^ethyl\s+acetate`, "ethyl acetate maps directly to its own HMT entry"),
	},
	{
		name:    "hexane",
		trigger: regexp.MustCompile(`(?i)\bn?-?hexanes?\b`),
		resolve: fixed(`(?i)^hexanes?$`, "hexane family maps directly to the hexanes entry"),
	},
	{
		name:    "heptane",
		trigger: regexp.MustCompile(`(?i)\bn?-?heptanes?\b`),
		resolve: fixed(`(?i)^heptanes?$`, "heptane maps directly to the heptanes entry"),
	},
	{
		name:    "pentane",
		trigger: regexp.MustCompile(`(?i)\bn?-?pentanes?\b`),
		resolve: fixed(`(?i)^pentanes?$`, "pentane maps directly to the pentanes entry"),
	},
	{
		name:    "hydrochloric-acid",
		trigger: regexp.MustCompile(`(?i)\b(hydrochloric|muriatic)\s+acid\b`),
		resolve: func(pct float64, hasPct bool, th config.ThresholdsConfig) *rowQuery {
			q := &rowQuery{
				base: regexp.MustCompile(`(?i)^hydrochloric\s+acid`),
				note: "hydrochloric/muriatic acid maps to UN1789",
			}
			if hasPct {
				if pct <= th.HClPGIIIMaxPct {
					q.packingGroup = hazmat.PackingGroupIII
					q.note = fmt.Sprintf("hydrochloric acid at %.1f%% (<= %.0f%%) carries packing group III", pct, th.HClPGIIIMaxPct)
				} else {
					q.packingGroup = hazmat.PackingGroupII
					q.note = fmt.Sprintf("hydrochloric acid at %.1f%% (> %.0f%%) carries packing group II", pct, th.HClPGIIIMaxPct)
				}
			}
			return q
		},
	},
	{
		name:    "ferric-chloride-anhydrous",
		trigger: regexp.MustCompile(`(?i)\bferric\s+chloride\b.*\banhydrous\b|\banhydrous\b.*\bferric\s+chloride\b`),
		resolve: fixed(`(?i)^ferric\s+chloride,?\s+anhydrous`, "anhydrous ferric chloride is the solid UN1773 entry"),
	},
	{
		name:    "ferric-chloride-solution",
		trigger: regexp.MustCompile(`(?i)\bferric\s+chloride\b`),
		resolve: fixed(`(?i)^ferric\s+chloride,?\s+solution`, "ferric chloride in solution is the UN2582 entry"),
	},
	{
		name:    "sulfuric-drain-cleaner",
		trigger: regexp.MustCompile(`(?i)\bdrain\s+(cleaner|opener)\b|\bsulfuric\s+acid\b.*\bdrain\b`),
		resolve: func(pct float64, hasPct bool, th config.ThresholdsConfig) *rowQuery {
			return &rowQuery{
				base: regexp.MustCompile(`(?i)^sulfuric\s+acid`),
				// "with more than 51" must not match the negated UN2796
				// qualifier "with not more than 51".
				opts: corpus.LookupOptions{Qualifier: regexp.MustCompile(`(?i)\bwith\s+more\s+than\s+51`)},
				note: "sulfuric acid drain cleaners are formulated above 51% acid",
			}
		},
	},
	{
		name:    "denatured-alcohol",
		trigger: regexp.MustCompile(`(?i)\bdenatured\b|\bsda\b`),
		resolve: fixed(`(?i)^alcohols?,?\s+n\.o\.s\.|^denatured\s+alcohol`, "denatured alcohol ships under the alcohols n.o.s. entry"),
	},
	{
		name:    "ethanol",
		trigger: regexp.MustCompile(`(?i)\bethanol\b|\bethyl\s+alcohol\b|\bgrain\s+alcohol\b`),
		resolve: fixed(`(?i)^ethanol|^ethyl\s+alcohol`, "ethanol maps directly to UN1170"),
	},
	{
		name:    "methanol",
		trigger: regexp.MustCompile(`(?i)\bmethanol\b|\bmethyl\s+alcohol\b|\bwood\s+alcohol\b`),
		resolve: fixed(`(?i)^methanol`, "methanol maps directly to UN1230"),
	},
	{
		name:    "mek",
		trigger: regexp.MustCompile(`(?i)\bmethyl\s+ethyl\s+ketone\b|\bmek\b|\b2?-?butanone\b`),
		resolve: fixed(`(?i)ethyl\s+methyl\s+ketone|methyl\s+ethyl\s+ketone`, "MEK maps directly to UN1193"),
	},
	{
		name:    "isopropyl-alcohol",
		trigger: regexp.MustCompile(`(?i)\bisopropyl\b|\bisopropanol\b|\bipa\b|\b2-propanol\b`),
		resolve: fixed(`(?i)^isopropanol|^isopropyl\s+alcohol`, "isopropyl alcohol maps directly to UN1219"),
	},
	{
		name:    "kerosene",
		trigger: regexp.MustCompile(`(?i)\bkerosene\b|\bkerosine\b`),
		resolve: fixed(`(?i)^kerosene`, "kerosene maps directly to UN1223"),
	},
	{
		name:    "glycol-ether",
		trigger: regexp.MustCompile(`(?i)\bglycol\s+ether\b|\bethylene\s+glycol\s+mono\w+\s+ether\b|\b2-butoxyethanol\b|\bbutyl\s+cellosolve\b`),
		resolve: fixed(`(?i)ethylene\s+glycol\s+monobutyl\s+ether|2-butoxyethanol`, "glycol ethers map to the ethylene glycol monobutyl ether entry"),
	},
	{
		name:    "sodium-hypochlorite",
		trigger: regexp.MustCompile(`(?i)\b(sodium\s+)?hypochlorite\b|\bbleach\b`),
		resolve: func(pct float64, hasPct bool, th config.ThresholdsConfig) *rowQuery {
			// Below the exemption threshold the non-hazard table owns the
			// result; with no stated concentration the product is ambiguous
			// and retrieval decides.
			if !hasPct || pct <= th.HypochloriteExemptPct {
				return nil
			}
			return &rowQuery{
				base:         regexp.MustCompile(`(?i)^hypochlorite\s+solutions?`),
				packingGroup: hazmat.PackingGroupIII,
				confidence:   th.HypochloriteConfidence,
				note:         fmt.Sprintf("hypochlorite at %.1f%% available chlorine is regulated as UN1791", pct),
			}
		},
	},
}

// DirectRuleMapper is the second short-circuit layer: deterministic
// name/concentration lookups into the regulatory corpus for a curated
// list of common chemicals.
type DirectRuleMapper struct {
	store      *corpus.Store
	thresholds config.ThresholdsConfig
}

// NewDirectRuleMapper builds the mapper over the given corpus store.
func NewDirectRuleMapper(store *corpus.Store, th config.ThresholdsConfig) *DirectRuleMapper {
	return &DirectRuleMapper{store: store, thresholds: th}
}

// Evaluate runs the rule table against the raw query. It returns a
// Classification when a rule fires and its corpus row exists, or nil to
// fall through to retrieval. Corpus load failures also fall through;
// retrieval owns the degraded-index result.
func (m *DirectRuleMapper) Evaluate(rawQuery string) *hazmat.Classification {
	pct, hasPct := query.ExtractPercent(rawQuery)
	for _, rule := range directRules {
		if !rule.trigger.MatchString(rawQuery) {
			continue
		}
		rq := rule.resolve(pct, hasPct, m.thresholds)
		if rq == nil {
			continue
		}
		row, err := m.store.FindByBaseName(rq.base, lookupOptions(rq))
		if err != nil {
			logging.Warnf("Direct rule %q skipped, corpus unavailable: %v", rule.name, err)
			return nil
		}
		if row == nil && rq.packingGroup != "" {
			// The group came from a concentration threshold, not the row;
			// a corpus flattened without per-group rows still resolves.
			row, err = m.store.FindByBaseName(rq.base, corpus.LookupOptions{Qualifier: rq.opts.Qualifier})
			if err != nil {
				logging.Warnf("Direct rule %q skipped, corpus unavailable: %v", rule.name, err)
				return nil
			}
		}
		if row == nil {
			continue
		}
		conf := rq.confidence
		if conf == 0 {
			conf = m.thresholds.DirectRuleConfidence
		}
		logging.Debugf("Direct rule %q resolved %q to %s", rule.name, rawQuery, row.IDNumber)
		c := hazmat.ClassificationFromRow(row, rq.packingGroup, conf, hazmat.SourceRuleDirect)
		c.Explanation = fmt.Sprintf("Matched direct rule %q: %s.", rule.name, rq.note)
		return c
	}
	return nil
}

func lookupOptions(rq *rowQuery) corpus.LookupOptions {
	opts := rq.opts
	if rq.packingGroup != "" {
		opts.PackingGroup = string(rq.packingGroup)
	}
	return opts
}
