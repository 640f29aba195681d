package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/leedsrising/pdf-to-text/internal/config"
	"github.com/leedsrising/pdf-to-text/internal/detect"
	"github.com/leedsrising/pdf-to-text/internal/llm"
	"github.com/leedsrising/pdf-to-text/internal/rehydrate"
	"github.com/leedsrising/pdf-to-text/internal/sanitize"
)

// detector toggles, settable per command invocation.
var (
	disableNER      bool
	disableSemantic bool
)

// embeddingProvider is the subset of providers that also embed.
type embeddingProvider interface {
	llm.Provider
	detect.Embedder
}

// buildProvider resolves the configured LLM provider.
func buildProvider(cfg *config.Config) (embeddingProvider, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but no API key configured: %w", llm.ErrProviderNotAvailable)
		}
		return llm.NewOpenAIProvider(cfg.OpenAIAPIKey).WithEmbeddingModel(cfg.EmbeddingModel), nil
	case "ollama":
		return llm.NewOllamaProvider(cfg.OllamaBaseURL, cfg.EmbeddingModel), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

// buildEngine assembles the detector set in its fixed, deterministic order:
// pattern, ner, lexical, semantic. Model-backed detectors fail fast here
// when their collaborator is unreachable; they do not run degraded.
func buildEngine(ctx context.Context, cfg *config.Config, provider detect.Embedder) (*sanitize.Engine, error) {
	allow := detect.NewAllowList(cfg.AllowedEntities)

	var patternOpts []detect.PatternOption
	if cfg.PatternFile != "" {
		patternOpts = append(patternOpts, detect.WithPatternFile(cfg.PatternFile))
	}
	patternDet, err := detect.NewPatternDetector(allow, patternOpts...)
	if err != nil {
		return nil, fmt.Errorf("building pattern detector: %w", err)
	}

	classifier, err := detect.NewClassifier(cfg.ClassifierStrategy, allow)
	if err != nil {
		return nil, fmt.Errorf("building lexical classifier: %w", err)
	}

	detectors := []detect.Detector{patternDet}

	if !disableNER {
		nerClient := detect.NewNERClient(cfg.NERBaseURL)
		if err := nerClient.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ner service health check: %w", err)
		}
		detectors = append(detectors, detect.NewNERDetector(nerClient, allow))
	} else {
		log.Warn().Msg("statistical recognizer disabled; running heuristics only")
	}

	detectors = append(detectors, detect.NewLexicalDetector(classifier))

	if !disableSemantic {
		scorer, err := detect.NewScorer(ctx, provider, detect.SemanticConfig{
			SimilarityWeight: cfg.SemanticSimilarityWeight,
			StructuralWeight: cfg.SemanticStructuralWeight,
			Threshold:        cfg.SemanticThreshold,
			ContextWindow:    cfg.SemanticContextWindow,
		})
		if err != nil {
			return nil, fmt.Errorf("building semantic scorer: %w", err)
		}
		detectors = append(detectors, detect.NewSemanticDetector(scorer, allow))
	}

	return sanitize.NewEngine(detectors, sanitize.WithDigitStripping(cfg.StripDigits))
}

// buildRehydrators returns the configured strategies by name. The delegated
// strategy is only offered when a provider is available.
func buildRehydrators(cfg *config.Config, provider llm.Provider) map[string]rehydrate.Rehydrator {
	rehydrators := map[string]rehydrate.Rehydrator{
		rehydrate.StrategyLocal: rehydrate.NewLocal(),
	}
	if provider != nil {
		rehydrators[rehydrate.StrategyDelegated] = rehydrate.NewDelegated(provider, rehydrate.DelegatedConfig{
			Model:             cfg.LLMModel,
			Temperature:       cfg.Temperature,
			MaxTokens:         cfg.MaxOutputTokens,
			ChunkBudget:       cfg.ChunkBudget,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
	}
	return rehydrators
}
