package detect

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/leedsrising/pdf-to-text/internal/span"
)

// Embedder maps texts into a shared vector space. The concept index and all
// phrase scoring must use the same embedder instance so similarities are
// comparable.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// entityConcepts are the fixed entity-describing phrases whose embeddings
// anchor the semantic scorer. Domain-tuned for real-estate investment
// documents, which is where this pipeline started.
var entityConcepts = []string{
	"business name",
	"company name",
	"organization name",
	"real estate property",
	"investment firm",
	"development project",
	"financial institution",
	"property manager",
	"real estate fund",
	"market location",
	"business entity",
}

// SemanticConfig carries the tunable constants of the scorer. The defaults
// are configuration, not derived values.
type SemanticConfig struct {
	SimilarityWeight float64 // weight of the max concept similarity
	StructuralWeight float64 // weight of the structural feature score
	Threshold        float64 // combined-score decision boundary
	ContextWindow    int     // characters of context taken each side of a phrase
}

// DefaultSemanticConfig returns the tuned default weights and threshold.
func DefaultSemanticConfig() SemanticConfig {
	return SemanticConfig{
		SimilarityWeight: 0.7,
		StructuralWeight: 0.3,
		Threshold:        0.6,
		ContextWindow:    50,
	}
}

func (c SemanticConfig) validate() error {
	if c.SimilarityWeight < 0 || c.StructuralWeight < 0 {
		return fmt.Errorf("semantic weights must be non-negative")
	}
	if c.Threshold <= 0 || c.Threshold >= 1 {
		return fmt.Errorf("semantic threshold must be in (0,1), got %v", c.Threshold)
	}
	if c.ContextWindow < 0 {
		return fmt.Errorf("semantic context window must be non-negative")
	}
	return nil
}

var businessSuffixRE = regexp.MustCompile(`\b(?:LLC|LP|Inc|Corp|Partners|Group)\b`)

// Scorer combines embedding similarity against the entity-concept catalog
// with structural features into one confidence score. The concept vectors
// are computed once at construction and are read-only afterwards, safe for
// concurrent use across documents.
type Scorer struct {
	embedder Embedder
	concepts [][]float32
	cfg      SemanticConfig
}

// NewScorer embeds the concept catalog. A failure here means the embedding
// model is unavailable, which is fatal at startup: the pipeline does not
// run degraded.
func NewScorer(ctx context.Context, embedder Embedder, cfg SemanticConfig) (*Scorer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	vecs, err := embedder.Embed(ctx, entityConcepts)
	if err != nil {
		return nil, fmt.Errorf("embedding entity concepts: %w", err)
	}
	if len(vecs) != len(entityConcepts) {
		return nil, fmt.Errorf("embedding entity concepts: got %d vectors for %d concepts", len(vecs), len(entityConcepts))
	}
	return &Scorer{embedder: embedder, concepts: vecs, cfg: cfg}, nil
}

// Score evaluates one phrase with optional surrounding context. It returns
// the entity decision and the combined confidence in [0,1].
func (s *Scorer) Score(ctx context.Context, phrase, surrounding string) (bool, float64, error) {
	decisions, scores, err := s.ScoreBatch(ctx, []string{phrase}, []string{surrounding})
	if err != nil {
		return false, 0, err
	}
	return decisions[0], scores[0], nil
}

// ScoreBatch scores many phrases with one embedding round-trip. phrases and
// contexts must have equal length; an empty context entry scores the phrase
// alone.
func (s *Scorer) ScoreBatch(ctx context.Context, phrases, contexts []string) ([]bool, []float64, error) {
	if len(phrases) != len(contexts) {
		return nil, nil, fmt.Errorf("phrases and contexts length mismatch: %d vs %d", len(phrases), len(contexts))
	}
	if len(phrases) == 0 {
		return nil, nil, nil
	}

	inputs := make([]string, len(phrases))
	for i, p := range phrases {
		if contexts[i] != "" {
			inputs[i] = contexts[i] + " " + p
		} else {
			inputs[i] = p
		}
	}

	vecs, err := s.embedder.Embed(ctx, inputs)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding phrases: %w", err)
	}
	if len(vecs) != len(phrases) {
		return nil, nil, fmt.Errorf("embedding phrases: got %d vectors for %d inputs", len(vecs), len(phrases))
	}

	decisions := make([]bool, len(phrases))
	scores := make([]float64, len(phrases))
	for i, vec := range vecs {
		maxSim := 0.0
		for _, concept := range s.concepts {
			if sim := cosineSimilarity(concept, vec); sim > maxSim {
				maxSim = sim
			}
		}
		combined := s.cfg.SimilarityWeight*maxSim + s.cfg.StructuralWeight*structuralScore(phrases[i])
		decisions[i] = combined > s.cfg.Threshold
		scores[i] = combined
	}
	return decisions, scores, nil
}

// structuralScore is the mean of four boolean shape indicators.
func structuralScore(text string) float64 {
	indicators := []bool{
		startsUpper(text),
		containsCapitalizedWord(text),
		businessSuffixRE.MatchString(text),
		len(strings.Fields(text)) >= 2,
	}
	hits := 0
	for _, ind := range indicators {
		if ind {
			hits++
		}
	}
	return float64(hits) / float64(len(indicators))
}

func containsCapitalizedWord(text string) bool {
	for _, w := range strings.Fields(text) {
		if startsUpper(w) {
			return true
		}
	}
	return false
}

// cosineSimilarity computes the cosine of the angle between two vectors,
// 0 when either has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SemanticDetector scores capitalized noun-phrase runs against the concept
// catalog and emits ENTITY candidates with the combined confidence.
type SemanticDetector struct {
	scorer *Scorer
	allow  *AllowList
	window int
}

// NewSemanticDetector wraps a scorer as a document detector.
func NewSemanticDetector(scorer *Scorer, allow *AllowList) *SemanticDetector {
	return &SemanticDetector{scorer: scorer, allow: allow, window: scorer.cfg.ContextWindow}
}

// Source identifies semantic-scorer candidates.
func (d *SemanticDetector) Source() span.Source { return span.SourceSemantic }

// Detect extracts candidate phrases (maximal same-line runs of capitalized
// tokens, a cheap stand-in for noun chunks), scores the batch in one
// embedding call, and keeps phrases the scorer accepts.
func (d *SemanticDetector) Detect(ctx context.Context, text string) ([]span.Candidate, error) {
	ctx, otelSpan := tracer.Start(ctx, "detect.semantic")
	defer otelSpan.End()

	type phraseSpan struct {
		start, end int
	}
	var (
		spans    []phraseSpan
		phrases  []string
		contexts []string
	)

	toks := tokenize(text)
	for i := 0; i < len(toks); {
		if !startsUpper(toks[i].text) {
			i++
			continue
		}
		j := i
		for j+1 < len(toks) && toks[j+1].line == toks[i].line && startsUpper(toks[j+1].text) {
			j++
		}
		phrase := text[toks[i].start:toks[j].end]
		if !d.allow.Contains(phrase) {
			ctxStart := toks[i].start - d.window
			if ctxStart < 0 {
				ctxStart = 0
			}
			ctxEnd := toks[j].end + d.window
			if ctxEnd > len(text) {
				ctxEnd = len(text)
			}
			spans = append(spans, phraseSpan{start: toks[i].start, end: toks[j].end})
			phrases = append(phrases, phrase)
			contexts = append(contexts, text[ctxStart:ctxEnd])
		}
		i = j + 1
	}

	if len(phrases) == 0 {
		return nil, nil
	}

	decisions, scores, err := d.scorer.ScoreBatch(ctx, phrases, contexts)
	if err != nil {
		return nil, err
	}

	var out []span.Candidate
	for i, ok := range decisions {
		if !ok {
			continue
		}
		out = append(out, span.Candidate{
			Start:      spans[i].start,
			End:        spans[i].end,
			Label:      span.LabelEntity,
			Source:     span.SourceSemantic,
			Confidence: span.Conf(scores[i]),
		})
	}

	otelSpan.SetAttributes(
		attribute.Int("detect.phrases", len(phrases)),
		attribute.Int("detect.candidates", len(out)),
	)
	return out, nil
}
