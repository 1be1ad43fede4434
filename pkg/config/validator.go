package config

import "fmt"

// Validate checks threshold and retrieval sanity. It rejects
// configurations that would silently break the confidence invariants.
func Validate(cfg *EngineConfig) error {
	t := cfg.Thresholds
	for name, v := range map[string]float64{
		"non_hazard_confidence":   t.NonHazardConfidence,
		"direct_rule_confidence":  t.DirectRuleConfidence,
		"hypochlorite_confidence": t.HypochloriteConfidence,
		"low_confidence":          t.LowConfidence,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("thresholds.%s must be in [0,1], got %v", name, v)
		}
	}
	// Non-regulated results must stay above the documented 0.9 floor.
	if t.NonHazardConfidence < 0.9 {
		return fmt.Errorf("thresholds.non_hazard_confidence must be >= 0.9, got %v", t.NonHazardConfidence)
	}
	if t.AceticAcidExemptPct <= 0 || t.AceticAcidExemptPct > 100 {
		return fmt.Errorf("thresholds.acetic_acid_exempt_pct must be in (0,100], got %v", t.AceticAcidExemptPct)
	}
	if t.HypochloriteExemptPct <= 0 || t.HypochloriteExemptPct > 100 {
		return fmt.Errorf("thresholds.hypochlorite_exempt_pct must be in (0,100], got %v", t.HypochloriteExemptPct)
	}
	if t.HClPGIIIMaxPct <= 0 || t.HClPGIIIMaxPct > 100 {
		return fmt.Errorf("thresholds.hcl_pg_iii_max_pct must be in (0,100], got %v", t.HClPGIIIMaxPct)
	}

	r := cfg.Retrieval
	if r.Alpha < 0 || r.Alpha > 1 {
		return fmt.Errorf("retrieval.alpha must be in [0,1], got %v", r.Alpha)
	}
	if r.RerankTopK > r.TopK {
		return fmt.Errorf("retrieval.rerank_top_k (%d) cannot exceed retrieval.top_k (%d)", r.RerankTopK, r.TopK)
	}

	switch cfg.ResultCache.Backend {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("result_cache.backend must be memory or redis, got %q", cfg.ResultCache.Backend)
	}
	if cfg.ResultCache.Backend == "redis" && cfg.ResultCache.Enabled && cfg.ResultCache.RedisAddr == "" {
		return fmt.Errorf("result_cache.redis_addr is required for the redis backend")
	}
	return nil
}
