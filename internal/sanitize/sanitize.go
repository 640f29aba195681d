// Package sanitize orchestrates the detectors over a document and rewrites
// it with typed placeholders. The engine is the single point where the
// detectors' overlapping claims become one consistent annotation.
package sanitize

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/leedsrising/pdf-to-text/internal/detect"
	pkgotel "github.com/leedsrising/pdf-to-text/internal/otel"
	"github.com/leedsrising/pdf-to-text/internal/span"
)

var tracer = pkgotel.Tracer("github.com/leedsrising/pdf-to-text/internal/sanitize")

// Engine runs a fixed, ordered set of detectors and resolves their output.
// Detector order is the tie-break for identical spans from different
// sources, so it is part of the engine's deterministic behavior: pattern
// candidates outrank recognizer candidates, which outrank the heuristics.
type Engine struct {
	detectors   []detect.Detector
	stripDigits bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithDigitStripping enables the final normalization pass that removes
// digit characters surviving outside detected spans.
func WithDigitStripping(enabled bool) Option {
	return func(e *Engine) { e.stripDigits = enabled }
}

// NewEngine creates a sanitization engine over the given detectors. The
// slice order is preserved and meaningful; at least one detector is
// required.
func NewEngine(detectors []detect.Detector, opts ...Option) (*Engine, error) {
	if len(detectors) == 0 {
		return nil, fmt.Errorf("sanitize: at least one detector required")
	}
	e := &Engine{detectors: detectors}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Result is the outcome of sanitizing one document.
type Result struct {
	Text     string
	Spans    []span.Candidate     // resolved spans, ordered by start
	BySource map[span.Source]int  // accepted span count per detector
	ByLabel  map[span.Label]int   // accepted span count per label
	Duration time.Duration
}

// Sanitize runs every detector over text (concurrently), resolves the
// unioned candidates, and returns the placeholder-substituted document.
// A detector error aborts the whole document: no partial output is ever
// produced.
func (e *Engine) Sanitize(ctx context.Context, text string) (*Result, error) {
	ctx, otelSpan := tracer.Start(ctx, "sanitize.document")
	defer otelSpan.End()
	started := time.Now()

	// Detectors are pure functions over the same immutable text, so they
	// fan out freely; slot-indexed results keep the deterministic union
	// order regardless of completion order.
	results := make([][]span.Candidate, len(e.detectors))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range e.detectors {
		g.Go(func() error {
			candidates, err := d.Detect(gctx, text)
			if err != nil {
				return fmt.Errorf("%s detector: %w", d.Source(), err)
			}
			results[i] = candidates
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mask := placeholderMask(text)
	var union []span.Candidate
	for _, candidates := range results {
		for _, c := range candidates {
			if err := c.Validate(len(text)); err != nil {
				// Malformed spans are detector bugs, not input conditions.
				return nil, fmt.Errorf("%s detector produced %w", c.Source, err)
			}
			if mask.covers(c.Start, c.End) {
				continue
			}
			union = append(union, c)
		}
	}

	resolved := span.Resolve(union)

	res := &Result{
		Text:     e.rewrite(text, resolved),
		Spans:    resolved,
		BySource: make(map[span.Source]int),
		ByLabel:  make(map[span.Label]int),
		Duration: time.Since(started),
	}
	for _, s := range resolved {
		res.BySource[s.Source]++
		res.ByLabel[s.Label]++
	}

	otelSpan.SetAttributes(
		attribute.Int("sanitize.candidates", len(union)),
		attribute.Int("sanitize.resolved", len(resolved)),
	)
	log.Debug().
		Int("candidates", len(union)).
		Int("resolved", len(resolved)).
		Dur("duration", res.Duration).
		Func(pkgotel.LogTraceFields(ctx)).
		Msg("document sanitized")

	return res, nil
}

// rewrite builds the sanitized text by copying the unmodified ranges
// between resolved spans and inserting placeholder tokens. Copy-based
// assembly keeps every span's offsets valid no matter the order spans are
// visited in, unlike in-place splicing.
func (e *Engine) rewrite(text string, resolved []span.Candidate) string {
	var b strings.Builder
	b.Grow(len(text))

	prev := 0
	for _, s := range resolved {
		e.writeSegment(&b, text[prev:s.Start])
		b.WriteString(s.Label.Token())
		prev = s.End
	}
	e.writeSegment(&b, text[prev:])

	return b.String()
}

// writeSegment copies a non-span range, applying the digit-strip policy.
func (e *Engine) writeSegment(b *strings.Builder, segment string) {
	if !e.stripDigits {
		b.WriteString(segment)
		return
	}
	for _, r := range segment {
		if !unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
}

// placeholderMask marks ranges already occupied by placeholder tokens so
// re-sanitizing sanitized text is a no-op: the tokens themselves must never
// be classified as detectable entities.
type rangeMask [][2]int

func placeholderMask(text string) rangeMask {
	matches := span.TokenPattern().FindAllStringIndex(text, -1)
	mask := make(rangeMask, 0, len(matches))
	for _, m := range matches {
		mask = append(mask, [2]int{m[0], m[1]})
	}
	return mask
}

// covers reports whether [start,end) intersects any masked range.
func (m rangeMask) covers(start, end int) bool {
	for _, r := range m {
		if start < r[1] && r[0] < end {
			return true
		}
	}
	return false
}
