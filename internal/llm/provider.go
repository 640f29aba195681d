// Package llm abstracts the external text-generation and embedding
// collaborators. The rehydrator uses Generate for delegated chunk
// generation; the semantic scorer uses Embed for concept and phrase
// vectors. Providers are stateless and safe for concurrent use.
package llm

import (
	"context"
	"errors"
	"time"

	pkgotel "github.com/leedsrising/pdf-to-text/internal/otel"
)

var tracer = pkgotel.Tracer("github.com/leedsrising/pdf-to-text/internal/llm")

// TimeoutLLMCall bounds a single generation round-trip. There is no retry:
// a chunk that fails is sentinel-replaced by the caller.
const TimeoutLLMCall = 60 * time.Second

// TimeoutEmbedCall bounds a single embedding round-trip.
const TimeoutEmbedCall = 30 * time.Second

// Domain errors.
var (
	ErrProviderNotAvailable = errors.New("provider not available")
	ErrNoChoices            = errors.New("no choices returned")
	ErrEmbeddingMismatch    = errors.New("embedding count does not match input count")
)

// Provider is the generation interface the rehydrator depends on.
type Provider interface {
	// Name returns the provider identifier (e.g. "openai", "ollama").
	Name() string
	// Generate sends a completion request and returns the response.
	Generate(ctx context.Context, req *Request) (*Response, error)
	// EstimateCost estimates the cost in USD for the given token counts.
	EstimateCost(model string, inputTokens, outputTokens int) float64
}

// Request is a generation request.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Message is a single chat message.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// Response is a generation response.
type Response struct {
	Content      string
	FinishReason string
	InputTokens  int
	OutputTokens int
	Model        string
}
