// Package rehydrate replaces placeholder tokens in sanitized documents with
// plausible synthetic values. Two interchangeable strategies exist: local
// pseudo-random generation and delegated generation through an external
// text-completion provider. Neither recovers original content; placeholders
// only record a category.
package rehydrate

import (
	"context"

	pkgotel "github.com/leedsrising/pdf-to-text/internal/otel"
)

var tracer = pkgotel.Tracer("github.com/leedsrising/pdf-to-text/internal/rehydrate")

// Rehydrator fills placeholder tokens with synthetic content. Implementations
// are stateless over their input: nothing persists between invocations.
type Rehydrator interface {
	Rehydrate(ctx context.Context, text string) (string, error)
}

// Strategy names accepted by configuration.
const (
	StrategyLocal     = "local"
	StrategyDelegated = "delegated"
)
