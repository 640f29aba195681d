package rehydrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/leedsrising/pdf-to-text/internal/llm"
	pkgotel "github.com/leedsrising/pdf-to-text/internal/otel"
)

// ChunkFailureSentinel replaces a chunk whose generation failed. It is a
// visible marker, not an error: the rest of the document still hydrates.
const ChunkFailureSentinel = "[CHUNK GENERATION FAILED]"

// DefaultChunkBudget is the maximum characters submitted per generation call.
const DefaultChunkBudget = 4000

// hydrationInstruction is the system prompt for delegated generation.
const hydrationInstruction = `You are filling in a sanitized document. Replace every bracketed ` +
	`placeholder such as [ENTITY], [NUMBER], [DATE], [EMAIL], [PHONE], [AMOUNT], ` +
	`[PERCENTAGE], [AREA], [UNIT], or [ADDRESS] with a plausible fake value of that ` +
	`category. Preserve all other text, line breaks, and layout exactly. Output only ` +
	`the rewritten text.`

// DelegatedConfig holds the tunables of delegated generation.
type DelegatedConfig struct {
	Model             string
	Temperature       float64
	MaxTokens         int     // per-chunk output token budget
	ChunkBudget       int     // per-chunk input character budget
	RequestsPerSecond float64 // 0 disables rate limiting
}

// DelegatedRehydrator partitions a document into line-aligned chunks and
// submits each to a text-completion provider. Chunk failures are isolated:
// the failed chunk is sentinel-replaced and processing continues.
type DelegatedRehydrator struct {
	provider llm.Provider
	cfg      DelegatedConfig
	limiter  *rate.Limiter
}

// NewDelegated creates a delegated rehydrator over a provider.
func NewDelegated(provider llm.Provider, cfg DelegatedConfig) *DelegatedRehydrator {
	if cfg.ChunkBudget <= 0 {
		cfg.ChunkBudget = DefaultChunkBudget
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &DelegatedRehydrator{provider: provider, cfg: cfg, limiter: limiter}
}

// Rehydrate processes each chunk in order and concatenates the results.
// A failed chunk becomes the sentinel; it never aborts later chunks. The
// only returned errors are context cancellation while waiting on the rate
// limiter, since that means the caller gave up on the whole document.
func (d *DelegatedRehydrator) Rehydrate(ctx context.Context, text string) (string, error) {
	ctx, otelSpan := tracer.Start(ctx, "rehydrate.delegated")
	defer otelSpan.End()

	chunks := SplitChunks(text, d.cfg.ChunkBudget)
	var (
		out      strings.Builder
		failures int
		costUSD  float64
	)

	for i, chunk := range chunks {
		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("waiting on rate limiter: %w", err)
			}
		}

		resp, err := d.provider.Generate(ctx, &llm.Request{
			Model: d.cfg.Model,
			Messages: []llm.Message{
				{Role: "system", Content: hydrationInstruction},
				{Role: "user", Content: chunk},
			},
			Temperature: d.cfg.Temperature,
			MaxTokens:   d.cfg.MaxTokens,
		})
		if err != nil {
			failures++
			log.Warn().
				Err(err).
				Int("chunk", i).
				Int("chunk_len", len(chunk)).
				Func(pkgotel.LogTraceFields(ctx)).
				Msg("chunk generation failed, substituting sentinel")
			out.WriteString(ChunkFailureSentinel)
			continue
		}
		costUSD += d.provider.EstimateCost(d.cfg.Model, resp.InputTokens, resp.OutputTokens)
		out.WriteString(resp.Content)
	}

	otelSpan.SetAttributes(
		attribute.Int("rehydrate.chunks", len(chunks)),
		attribute.Int("rehydrate.chunk_failures", failures),
		attribute.Float64("rehydrate.cost_usd", costUSD),
	)
	log.Debug().
		Int("chunks", len(chunks)).
		Int("failures", failures).
		Float64("cost_usd", costUSD).
		Msg("document rehydrated")

	return out.String(), nil
}
