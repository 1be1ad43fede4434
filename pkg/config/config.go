// Package config defines the YAML-mapped configuration of the hazmat
// classification engine and a process-wide loader with hot reload.
package config

// EngineConfig is the root configuration document.
type EngineConfig struct {
	ReferenceData ReferenceDataConfig `yaml:"reference_data"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Retrieval     RetrievalConfig     `yaml:"retrieval"`
	Thresholds    ThresholdsConfig    `yaml:"thresholds"`
	Database      DatabaseConfig      `yaml:"database"`
	Orchestrator  OrchestratorConfig  `yaml:"orchestrator"`
	Batch         BatchConfig         `yaml:"batch"`
	ResultCache   ResultCacheConfig   `yaml:"result_cache"`
}

// ReferenceDataConfig locates the pre-built reference files consumed
// read-only by the file-backed classifier. Schemas are fixed by the
// upstream index-build tooling.
type ReferenceDataConfig struct {
	// CorpusPath is the flattened 49 CFR Hazardous Materials Table JSON.
	CorpusPath string `yaml:"corpus_path"`
	// IndexPath is the JSON-serialized vector index over the corpus.
	IndexPath string `yaml:"index_path"`
	// ERGPath is the Emergency Response Guidebook lookup table.
	ERGPath string `yaml:"erg_path"`
	// HistoryPath is the historical-shipment log.
	HistoryPath string `yaml:"history_path"`
}

// EmbeddingConfig configures the external embedding provider.
type EmbeddingConfig struct {
	// Model is the embedding model identifier.
	Model string `yaml:"model"`
	// Dimension must match the loaded index. 0 means provider default.
	Dimension int `yaml:"dimension"`
	// BaseURL overrides the provider endpoint (for self-hosted gateways).
	BaseURL string `yaml:"base_url"`
}

// RetrievalConfig tunes hybrid search and reranking.
type RetrievalConfig struct {
	// Alpha blends vector cosine score against lexical text score.
	Alpha float64 `yaml:"alpha"`
	// TopK is the wide candidate set requested from hybrid search.
	TopK int `yaml:"top_k"`
	// RerankTopK is how many candidates the reranker returns.
	RerankTopK int `yaml:"rerank_top_k"`
}

// ThresholdsConfig carries the regulatory constants the rule tables and
// confidence synthesizer use. The defaults encode a specific reading of
// 49 CFR; they are configuration, not gospel, so deployments can track
// regulatory updates without a rebuild.
type ThresholdsConfig struct {
	// NonHazardConfidence is stamped on rule-table exemptions.
	NonHazardConfidence float64 `yaml:"non_hazard_confidence"`
	// DirectRuleConfidence is stamped on direct-rule matches.
	DirectRuleConfidence float64 `yaml:"direct_rule_confidence"`
	// HypochloriteConfidence is the hypochlorite threshold branch value.
	HypochloriteConfidence float64 `yaml:"hypochlorite_confidence"`
	// AceticAcidExemptPct is the max acetic acid concentration treated
	// as non-regulated.
	AceticAcidExemptPct float64 `yaml:"acetic_acid_exempt_pct"`
	// HypochloriteExemptPct is the max available-chlorine concentration
	// treated as non-regulated.
	HypochloriteExemptPct float64 `yaml:"hypochlorite_exempt_pct"`
	// HClPGIIIMaxPct is the max hydrochloric acid concentration that
	// maps to packing group III; above it PG II applies.
	HClPGIIIMaxPct float64 `yaml:"hcl_pg_iii_max_pct"`
	// LowConfidence is the orchestrator's consult-both-backends cutoff.
	LowConfidence float64 `yaml:"low_confidence"`
}

// DatabaseConfig configures the database-backed classifier.
type DatabaseConfig struct {
	// PostgresDSN is the HMT row store connection string.
	PostgresDSN string `yaml:"postgres_dsn"`
	// MilvusAddress is the vector collection endpoint.
	MilvusAddress string `yaml:"milvus_address"`
	// MilvusCollection names the indexed corpus collection.
	MilvusCollection string `yaml:"milvus_collection"`
	// ConnectTimeoutSeconds bounds initial connections.
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"`
}

// OrchestratorConfig tunes the dual-backend orchestration.
type OrchestratorConfig struct {
	PreferDatabase  *bool `yaml:"prefer_database"`
	EnableTelemetry *bool `yaml:"enable_telemetry"`
}

// BatchConfig tunes batch classification.
type BatchConfig struct {
	// Concurrency is the window size for bounded concurrent windows.
	Concurrency int `yaml:"concurrency"`
}

// ResultCacheConfig configures the optional classification result cache.
type ResultCacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Backend    string `yaml:"backend"` // memory or redis
	RedisAddr  string `yaml:"redis_addr"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	MaxEntries int    `yaml:"max_entries"`
}

// Default returns an EngineConfig populated with the documented default
// constants.
func Default() *EngineConfig {
	preferDB := true
	telemetry := true
	return &EngineConfig{
		ReferenceData: ReferenceDataConfig{
			CorpusPath:  "data/hmt_flattened.json",
			IndexPath:   "data/hmt_index.json",
			ERGPath:     "data/erg_guides.json",
			HistoryPath: "data/shipment_history.json",
		},
		Embedding: EmbeddingConfig{
			Model: "text-embedding-3-small",
		},
		Retrieval: RetrievalConfig{
			Alpha:      0.5,
			TopK:       50,
			RerankTopK: 10,
		},
		Thresholds: ThresholdsConfig{
			NonHazardConfidence:    0.95,
			DirectRuleConfidence:   0.92,
			HypochloriteConfidence: 0.95,
			AceticAcidExemptPct:    10,
			HypochloriteExemptPct:  10,
			HClPGIIIMaxPct:         20,
			LowConfidence:          0.5,
		},
		Database: DatabaseConfig{
			MilvusCollection:      "hazmat_hmt",
			ConnectTimeoutSeconds: 10,
		},
		Orchestrator: OrchestratorConfig{
			PreferDatabase:  &preferDB,
			EnableTelemetry: &telemetry,
		},
		Batch: BatchConfig{
			Concurrency: 5,
		},
		ResultCache: ResultCacheConfig{
			Backend:    "memory",
			TTLSeconds: 3600,
			MaxEntries: 4096,
		},
	}
}

// PreferDatabase resolves the orchestrator preference, defaulting true.
func (c *EngineConfig) PreferDatabase() bool {
	if c.Orchestrator.PreferDatabase == nil {
		return true
	}
	return *c.Orchestrator.PreferDatabase
}

// TelemetryEnabled resolves the telemetry toggle, defaulting true.
func (c *EngineConfig) TelemetryEnabled() bool {
	if c.Orchestrator.EnableTelemetry == nil {
		return true
	}
	return *c.Orchestrator.EnableTelemetry
}
