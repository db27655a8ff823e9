package model

import "time"

// Config holds the complete engine configuration
type Config struct {
	Stores      StoresConfig      `yaml:"stores" mapstructure:"stores"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Engine      EngineConfig      `yaml:"engine" mapstructure:"engine"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// StoresConfig locates the three memory store databases
type StoresConfig struct {
	EpisodicPath   string `yaml:"episodic_path" mapstructure:"episodic_path"`
	SemanticPath   string `yaml:"semantic_path" mapstructure:"semantic_path"`
	BehavioralPath string `yaml:"behavioral_path" mapstructure:"behavioral_path"`

	// Default is the store "note" candidates route to.
	Default StoreName `yaml:"default" mapstructure:"default"`
}

// LLMConfig configures the model extractor
type LLMConfig struct {
	// Provider name: "openai", "anthropic", "ollama", "" (disabled)
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model name (provider-specific)
	Model string `yaml:"model" mapstructure:"model"`

	// APIKey for OpenAI/Anthropic
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout for extraction calls, in seconds. The model extractor
	// enforces this; the rest of the pipeline never overrides it.
	Timeout int `yaml:"timeout" mapstructure:"timeout"`

	// MaxTokens for response generation
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`

	// RatePerSecond and Burst pace extraction calls to the provider
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	Burst         int     `yaml:"burst" mapstructure:"burst"`
}

// EngineConfig holds the scoring/reconciliation tunables
type EngineConfig struct {
	// MinConfidence is the discard floor applied post-reconciliation
	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence"`

	// ConsistencyBonus is added when a prior record agrees with a candidate
	ConsistencyBonus float64 `yaml:"consistency_bonus" mapstructure:"consistency_bonus"`

	// SimilarityThreshold is the token-overlap ratio above which two texts
	// are judged to describe the same fact
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
}

// CacheConfig configures the store read-through cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"`
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Format  string `yaml:"format" mapstructure:"format"` // "text" or "json"
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Stores: StoresConfig{
			EpisodicPath:   "episodic.db",
			SemanticPath:   "semantic.db",
			BehavioralPath: "behavioral.db",
			Default:        StoreSemantic,
		},
		LLM: LLMConfig{
			Provider:      "", // Disabled by default
			Timeout:       30,
			MaxTokens:     1000,
			RatePerSecond: 2,
			Burst:         4,
		},
		Engine: EngineConfig{
			MinConfidence:       0.2,
			ConsistencyBonus:    0.1,
			SimilarityThreshold: 0.5,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}
