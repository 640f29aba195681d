package detect

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/leedsrising/pdf-to-text/internal/span"
)

// Classifier decides whether a short text span (single token or n-gram)
// looks like an entity mention. The sentenceStart flag tells the classifier
// whether the span opens its sentence, since mid-sentence capitalization is
// a stronger signal than sentence-initial capitalization.
//
// Strategies are versioned and selected by configuration; all of them treat
// allow-listed text as never entity-like.
type Classifier interface {
	Name() string
	Classify(text string, sentenceStart bool) bool
}

// Classifier strategy names accepted by NewClassifier.
const (
	StrategyAggressive = "aggressive"
	StrategyStructural = "structural"
)

// NewClassifier returns the named classification strategy.
func NewClassifier(strategy string, allow *AllowList) (Classifier, error) {
	switch strategy {
	case StrategyAggressive, "":
		return &AggressiveClassifier{allow: allow}, nil
	case StrategyStructural:
		return &StructuralClassifier{allow: allow}, nil
	default:
		return nil, fmt.Errorf("unknown classifier strategy %q", strategy)
	}
}

// AggressiveClassifier is the recall-favoring rule ladder: each check is an
// OR, deliberately over-inclusive, because a missed entity costs more than a
// spurious redaction.
type AggressiveClassifier struct {
	allow *AllowList
}

func (c *AggressiveClassifier) Name() string { return StrategyAggressive }

// Classify applies the ladder in order; any true wins.
func (c *AggressiveClassifier) Classify(text string, sentenceStart bool) bool {
	if c.allow.Contains(text) {
		return false
	}
	switch {
	case strings.ContainsAny(text, "&-."):
		return true
	case len([]rune(text)) > 1 && upperFraction(text) > 0.5:
		return true
	case upperAfterFirst(text) && hasLower(text):
		return true
	case isTitleCaseWord(text) && !sentenceStart:
		// Capitalization mid-sentence is suspicious.
		return true
	case hasDigit(text):
		return true
	case allWordsCapitalized(text):
		return true
	}
	return false
}

// isTitleCaseWord reports a single word with an uppercase first rune and an
// all-lowercase remainder.
func isTitleCaseWord(s string) bool {
	if strings.ContainsAny(s, " \t") {
		return false
	}
	runes := []rune(s)
	if len(runes) < 2 || !startsUpper(s) {
		return false
	}
	for _, r := range runes[1:] {
		if hasUpper(string(r)) {
			return false
		}
	}
	return true
}

var (
	businessTermRE    = regexp.MustCompile(`\b(?:LLC|LP|Inc|Corp|Fund|Capital|Partners|Group|Market|Properties)\b`)
	acronymRE         = regexp.MustCompile(`[A-Z]{2,}`)
	directionalNameRE = regexp.MustCompile(`\b(?:North|South|East|West|New|Old)\s+[A-Z]`)
)

// StructuralClassifier is the earlier rule set built around business-name
// structure: suffix keywords, acronym runs, and directional compounds.
type StructuralClassifier struct {
	allow *AllowList
}

func (c *StructuralClassifier) Name() string { return StrategyStructural }

func (c *StructuralClassifier) Classify(text string, sentenceStart bool) bool {
	if c.allow.Contains(text) {
		return false
	}
	switch {
	case startsUpper(text) && !sentenceStart:
		return true
	case allWordsCapitalized(text):
		return true
	case businessTermRE.MatchString(text):
		return true
	case acronymRE.MatchString(text):
		return true
	case directionalNameRE.MatchString(text):
		return true
	case upperAfterFirst(text):
		return true
	}
	return false
}

// LexicalDetector emits ENTITY candidates for tokens and short n-grams that
// its classifier flags as entity-like. It is deterministic, so candidates
// carry no confidence.
type LexicalDetector struct {
	classifier Classifier
	maxNGram   int
}

// DefaultMaxNGram bounds phrase windows scanned by the lexical detector.
const DefaultMaxNGram = 4

// NewLexicalDetector wraps a classifier strategy as a document detector.
func NewLexicalDetector(classifier Classifier) *LexicalDetector {
	return &LexicalDetector{classifier: classifier, maxNGram: DefaultMaxNGram}
}

// Source identifies lexical-heuristic candidates.
func (d *LexicalDetector) Source() span.Source { return span.SourceLexical }

// Detect scans single tokens and line-local n-grams. Multi-token windows
// are offered to the classifier before their constituent tokens so the
// resolver's longest-first preference has whole phrases to pick from.
func (d *LexicalDetector) Detect(ctx context.Context, text string) ([]span.Candidate, error) {
	_, otelSpan := tracer.Start(ctx, "detect.lexical")
	defer otelSpan.End()

	toks := tokenize(text)
	var out []span.Candidate

	for i, tok := range toks {
		// A phrase anchored on an ordinary sentence-initial word ("Contact
		// John ...") is not entity evidence; the anchor must be entity-like
		// in its own right when it opens the sentence.
		anchored := !tok.sentenceStart || d.classifier.Classify(tok.text, true)

		for n := d.maxNGram; n >= 2 && anchored; n-- {
			j := i + n - 1
			if j >= len(toks) || toks[j].line != tok.line {
				continue
			}
			phrase := text[tok.start:toks[j].end]
			if len(strings.Fields(phrase)) < 2 {
				continue
			}
			if allWordsCapitalized(phrase) && d.classifier.Classify(phrase, tok.sentenceStart) {
				out = append(out, span.Candidate{
					Start:  tok.start,
					End:    toks[j].end,
					Label:  span.LabelEntity,
					Source: span.SourceLexical,
				})
			}
		}

		if d.classifier.Classify(tok.text, tok.sentenceStart) {
			out = append(out, span.Candidate{
				Start:  tok.start,
				End:    tok.end,
				Label:  span.LabelEntity,
				Source: span.SourceLexical,
			})
		}
	}

	otelSpan.SetAttributes(attribute.Int("detect.candidates", len(out)))
	return out, nil
}
