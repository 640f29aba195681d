package detect

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/leedsrising/pdf-to-text/internal/span"
)

// PatternDetector finds structurally regular PII (emails, phone numbers,
// currency amounts, percentages, areas, unit designators, street addresses)
// with a fixed ordered list of compiled regex families. Deterministic; its
// candidates carry no confidence.
type PatternDetector struct {
	patterns []CompiledPattern
	allow    *AllowList
}

// PatternOption configures a PatternDetector.
type PatternOption func(*patternConfig)

type patternConfig struct {
	patternFile string
	custom      []RecognizerConfig
}

// WithPatternFile layers recognizers from an operator-supplied YAML file on
// top of the embedded defaults. A missing file is silently skipped.
func WithPatternFile(path string) PatternOption {
	return func(c *patternConfig) { c.patternFile = path }
}

// WithCustomRecognizers layers per-run recognizer definitions on top of the
// defaults and any global file.
func WithCustomRecognizers(recs []RecognizerConfig) PatternOption {
	return func(c *patternConfig) { c.custom = recs }
}

// NewPatternDetector creates a pattern detector from the embedded defaults
// plus any configured override layers.
func NewPatternDetector(allow *AllowList, opts ...PatternOption) (*PatternDetector, error) {
	var cfg patternConfig
	for _, o := range opts {
		o(&cfg)
	}

	defaults, err := DefaultRecognizers()
	if err != nil {
		return nil, fmt.Errorf("loading default recognizers: %w", err)
	}

	layers := [][]RecognizerConfig{defaults}
	if cfg.patternFile != "" {
		rf, err := LoadRecognizerFile(cfg.patternFile)
		if err != nil {
			return nil, fmt.Errorf("loading recognizer file: %w", err)
		}
		if rf != nil {
			layers = append(layers, rf.Recognizers)
		}
	}
	if len(cfg.custom) > 0 {
		layers = append(layers, cfg.custom)
	}

	compiled, err := CompileRecognizers(MergeRecognizers(layers...))
	if err != nil {
		return nil, fmt.Errorf("compiling recognizers: %w", err)
	}

	return &PatternDetector{patterns: compiled, allow: allow}, nil
}

// Source identifies pattern-matcher candidates.
func (d *PatternDetector) Source() span.Source { return span.SourcePattern }

// Detect scans the full document text with every pattern independently.
// Matches from different patterns may overlap; resolution is the span
// resolver's job.
func (d *PatternDetector) Detect(ctx context.Context, text string) ([]span.Candidate, error) {
	_, otelSpan := tracer.Start(ctx, "detect.pattern")
	defer otelSpan.End()

	var out []span.Candidate
	for _, p := range d.patterns {
		for _, m := range p.Pattern.FindAllStringIndex(text, -1) {
			if d.allow.Contains(text[m[0]:m[1]]) {
				continue
			}
			out = append(out, span.Candidate{
				Start:  m[0],
				End:    m[1],
				Label:  p.Label,
				Source: span.SourcePattern,
			})
		}
	}

	otelSpan.SetAttributes(attribute.Int("detect.candidates", len(out)))
	return out, nil
}
