package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		DataDir:            "/tmp/docscrub-test",
		ClassifierStrategy: DefaultClassifierStrategy,

		SemanticSimilarityWeight: DefaultSemanticSimilarityWeight,
		SemanticStructuralWeight: DefaultSemanticStructuralWeight,
		SemanticThreshold:        DefaultSemanticThreshold,
		SemanticContextWindow:    DefaultSemanticContextWindow,

		NERBaseURL: DefaultNERBaseURL,

		LLMProvider:       DefaultLLMProvider,
		LLMModel:          DefaultLLMModel,
		Temperature:       DefaultTemperature,
		MaxOutputTokens:   DefaultMaxOutputTokens,
		ChunkBudget:       DefaultChunkBudget,
		RequestsPerSecond: DefaultRequestsPerSecond,
		RehydrateStrategy: DefaultRehydrateStrategy,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults pass", func(*Config) {}, ""},
		{"ollama provider passes", func(c *Config) { c.LLMProvider = "ollama" }, ""},
		{"delegated strategy passes", func(c *Config) { c.RehydrateStrategy = "delegated" }, ""},
		{"negative weight", func(c *Config) { c.SemanticStructuralWeight = -1 }, "non-negative"},
		{"threshold too high", func(c *Config) { c.SemanticThreshold = 1 }, "semantic_threshold"},
		{"zero chunk budget", func(c *Config) { c.ChunkBudget = 0 }, "chunk_budget"},
		{"zero output tokens", func(c *Config) { c.MaxOutputTokens = 0 }, "max_output_tokens"},
		{"unknown provider", func(c *Config) { c.LLMProvider = "bedrock" }, "llm_provider"},
		{"unknown strategy", func(c *Config) { c.RehydrateStrategy = "remote" }, "rehydrate_strategy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestEvidenceDBPath(t *testing.T) {
	cfg := &Config{DataDir: "/var/lib/docscrub"}
	assert.Equal(t, filepath.Join("/var/lib/docscrub", "evidence.db"), cfg.EvidenceDBPath())
}
