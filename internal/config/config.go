// Package config holds operator-level configuration for the sanitization
// pipeline: which detectors run with which constants, where the external
// collaborators live, and where run evidence is stored. Values merge from
// env vars (DOCSCRUB_ prefix), an optional docscrub.config.yaml, and
// defaults, in that precedence order.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Viper keys. Each maps to an env var with the DOCSCRUB_ prefix
// (e.g. "ner_base_url" → DOCSCRUB_NER_BASE_URL) and to a YAML field.
const (
	KeyDataDir            = "data_dir"
	KeyAllowedEntities    = "allowed_entities"
	KeyClassifierStrategy = "classifier_strategy"
	KeyPatternFile        = "pattern_file"
	KeyStripDigits        = "strip_digits"

	KeySemanticSimilarityWeight = "semantic_similarity_weight"
	KeySemanticStructuralWeight = "semantic_structural_weight"
	KeySemanticThreshold        = "semantic_threshold"
	KeySemanticContextWindow    = "semantic_context_window"

	KeyNERBaseURL = "ner_base_url"

	KeyLLMProvider       = "llm_provider"
	KeyLLMModel          = "llm_model"
	KeyEmbeddingModel    = "embedding_model"
	KeyOpenAIAPIKey      = "openai_api_key"
	KeyOllamaBaseURL     = "ollama_base_url"
	KeyTemperature       = "temperature"
	KeyMaxOutputTokens   = "max_output_tokens"
	KeyChunkBudget       = "chunk_budget"
	KeyRequestsPerSecond = "requests_per_second"
	KeyRehydrateStrategy = "rehydrate_strategy"
)

// Defaults. The semantic constants are tuned values, not derived ones.
const (
	DefaultClassifierStrategy = "aggressive"
	DefaultNERBaseURL         = "http://localhost:8090"
	DefaultLLMProvider        = "openai"
	DefaultLLMModel           = "gpt-4o-mini"
	DefaultOllamaBaseURL      = "http://localhost:11434"
	DefaultTemperature        = 0.7
	DefaultMaxOutputTokens    = 2048
	DefaultChunkBudget        = 4000
	DefaultRequestsPerSecond  = 1.0
	DefaultRehydrateStrategy  = "local"

	DefaultSemanticSimilarityWeight = 0.7
	DefaultSemanticStructuralWeight = 0.3
	DefaultSemanticThreshold        = 0.6
	DefaultSemanticContextWindow    = 50
)

// Config is the resolved configuration for one process.
type Config struct {
	DataDir            string   // base directory for state (~/.docscrub)
	AllowedEntities    []string // literal strings exempt from all detection
	ClassifierStrategy string   // lexical classifier strategy name
	PatternFile        string   // optional recognizer YAML override file
	StripDigits        bool     // strip digits surviving outside spans

	SemanticSimilarityWeight float64
	SemanticStructuralWeight float64
	SemanticThreshold        float64
	SemanticContextWindow    int

	NERBaseURL string

	LLMProvider       string // "openai" or "ollama"
	LLMModel          string
	EmbeddingModel    string
	OpenAIAPIKey      string
	OllamaBaseURL     string
	Temperature       float64
	MaxOutputTokens   int
	ChunkBudget       int
	RequestsPerSecond float64
	RehydrateStrategy string // "local" or "delegated"
}

// EvidenceDBPath returns the full path to the run-evidence SQLite database.
func (c *Config) EvidenceDBPath() string {
	return filepath.Join(c.DataDir, "evidence.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o700)
}

func init() {
	viper.SetEnvPrefix("DOCSCRUB")
	viper.AutomaticEnv()
	viper.SetDefault(KeyClassifierStrategy, DefaultClassifierStrategy)
	viper.SetDefault(KeyNERBaseURL, DefaultNERBaseURL)
	viper.SetDefault(KeyLLMProvider, DefaultLLMProvider)
	viper.SetDefault(KeyLLMModel, DefaultLLMModel)
	viper.SetDefault(KeyOllamaBaseURL, DefaultOllamaBaseURL)
	viper.SetDefault(KeyTemperature, DefaultTemperature)
	viper.SetDefault(KeyMaxOutputTokens, DefaultMaxOutputTokens)
	viper.SetDefault(KeyChunkBudget, DefaultChunkBudget)
	viper.SetDefault(KeyRequestsPerSecond, DefaultRequestsPerSecond)
	viper.SetDefault(KeyRehydrateStrategy, DefaultRehydrateStrategy)
	viper.SetDefault(KeySemanticSimilarityWeight, DefaultSemanticSimilarityWeight)
	viper.SetDefault(KeySemanticStructuralWeight, DefaultSemanticStructuralWeight)
	viper.SetDefault(KeySemanticThreshold, DefaultSemanticThreshold)
	viper.SetDefault(KeySemanticContextWindow, DefaultSemanticContextWindow)
}

// Load reads configuration from viper (env vars, config file, defaults)
// and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:            resolveDataDir(),
		AllowedEntities:    viper.GetStringSlice(KeyAllowedEntities),
		ClassifierStrategy: viper.GetString(KeyClassifierStrategy),
		PatternFile:        viper.GetString(KeyPatternFile),
		StripDigits:        viper.GetBool(KeyStripDigits),

		SemanticSimilarityWeight: viper.GetFloat64(KeySemanticSimilarityWeight),
		SemanticStructuralWeight: viper.GetFloat64(KeySemanticStructuralWeight),
		SemanticThreshold:        viper.GetFloat64(KeySemanticThreshold),
		SemanticContextWindow:    viper.GetInt(KeySemanticContextWindow),

		NERBaseURL: viper.GetString(KeyNERBaseURL),

		LLMProvider:       viper.GetString(KeyLLMProvider),
		LLMModel:          viper.GetString(KeyLLMModel),
		EmbeddingModel:    viper.GetString(KeyEmbeddingModel),
		OpenAIAPIKey:      resolveOpenAIKey(),
		OllamaBaseURL:     viper.GetString(KeyOllamaBaseURL),
		Temperature:       viper.GetFloat64(KeyTemperature),
		MaxOutputTokens:   viper.GetInt(KeyMaxOutputTokens),
		ChunkBudget:       viper.GetInt(KeyChunkBudget),
		RequestsPerSecond: viper.GetFloat64(KeyRequestsPerSecond),
		RehydrateStrategy: viper.GetString(KeyRehydrateStrategy),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func resolveDataDir() string {
	if dir := viper.GetString(KeyDataDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docscrub"
	}
	return filepath.Join(home, ".docscrub")
}

// resolveOpenAIKey prefers the DOCSCRUB_ var but accepts the conventional
// OPENAI_API_KEY as a quickstart fallback.
func resolveOpenAIKey() string {
	if k := viper.GetString(KeyOpenAIAPIKey); k != "" {
		return k
	}
	return os.Getenv("OPENAI_API_KEY")
}

func (c *Config) validate() error {
	if c.SemanticSimilarityWeight < 0 || c.SemanticStructuralWeight < 0 {
		return fmt.Errorf("semantic weights must be non-negative")
	}
	if c.SemanticThreshold <= 0 || c.SemanticThreshold >= 1 {
		return fmt.Errorf("semantic_threshold must be in (0,1)")
	}
	if c.ChunkBudget <= 0 {
		return fmt.Errorf("chunk_budget must be positive")
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("max_output_tokens must be positive")
	}
	switch c.LLMProvider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("llm_provider must be openai or ollama, got %q", c.LLMProvider)
	}
	switch c.RehydrateStrategy {
	case "local", "delegated":
	default:
		return fmt.Errorf("rehydrate_strategy must be local or delegated, got %q", c.RehydrateStrategy)
	}
	return nil
}
