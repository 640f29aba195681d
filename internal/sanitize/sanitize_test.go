package sanitize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leedsrising/pdf-to-text/internal/detect"
	"github.com/leedsrising/pdf-to-text/internal/span"
)

// fakeDetector returns a canned candidate list or error.
type fakeDetector struct {
	src span.Source
	out []span.Candidate
	err error
}

func (f *fakeDetector) Source() span.Source { return f.src }

func (f *fakeDetector) Detect(context.Context, string) ([]span.Candidate, error) {
	return f.out, f.err
}

// heuristicEngine builds the deterministic detector pair used by most tests:
// patterns first, lexical second.
func heuristicEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	allow := detect.NewAllowList(nil)
	patternDet, err := detect.NewPatternDetector(allow)
	require.NoError(t, err)
	classifier, err := detect.NewClassifier(detect.StrategyAggressive, allow)
	require.NoError(t, err)

	engine, err := NewEngine([]detect.Detector{
		patternDet,
		detect.NewLexicalDetector(classifier),
	}, opts...)
	require.NoError(t, err)
	return engine
}

func TestNewEngineRequiresDetectors(t *testing.T) {
	_, err := NewEngine(nil)
	assert.Error(t, err)
}

func TestSanitizeContactLine(t *testing.T) {
	engine := heuristicEngine(t)

	res, err := engine.Sanitize(context.Background(), "Contact John Smith at 555-123-4567 or john@acme.com")
	require.NoError(t, err)

	assert.Equal(t, "Contact [ENTITY] at [PHONE] or [EMAIL]", res.Text)
	require.Len(t, res.Spans, 3)
	assert.Equal(t, span.LabelEntity, res.Spans[0].Label)
	assert.Equal(t, span.LabelPhone, res.Spans[1].Label)
	assert.Equal(t, span.LabelEmail, res.Spans[2].Label)

	assert.Equal(t, map[span.Label]int{
		span.LabelEntity: 1,
		span.LabelPhone:  1,
		span.LabelEmail:  1,
	}, res.ByLabel)
	assert.Equal(t, map[span.Source]int{
		span.SourcePattern: 2,
		span.SourceLexical: 1,
	}, res.BySource)
}

func TestSanitizeIdempotent(t *testing.T) {
	engine := heuristicEngine(t)
	ctx := context.Background()

	res, err := engine.Sanitize(ctx, "Contact John Smith at 555-123-4567 or john@acme.com")
	require.NoError(t, err)

	again, err := engine.Sanitize(ctx, res.Text)
	require.NoError(t, err)
	assert.Equal(t, res.Text, again.Text)
	assert.Empty(t, again.Spans)
}

func TestSanitizeSpansNonOverlapping(t *testing.T) {
	engine := heuristicEngine(t)

	res, err := engine.Sanitize(context.Background(),
		"Meridian Fund LP bought 25,000 sq. ft. at 123 Main Street, Suite 400 for $5,000,000 (7.5% cap)")
	require.NoError(t, err)

	require.NotEmpty(t, res.Spans)
	for i := 1; i < len(res.Spans); i++ {
		assert.GreaterOrEqual(t, res.Spans[i].Start, res.Spans[i-1].End)
	}
}

func TestSanitizeDetectorOrderBreaksTies(t *testing.T) {
	first := &fakeDetector{src: span.SourcePattern, out: []span.Candidate{
		{Start: 0, End: 5, Label: span.LabelPhone, Source: span.SourcePattern},
	}}
	second := &fakeDetector{src: span.SourceLexical, out: []span.Candidate{
		{Start: 0, End: 5, Label: span.LabelEntity, Source: span.SourceLexical},
	}}

	engine, err := NewEngine([]detect.Detector{first, second})
	require.NoError(t, err)

	res, err := engine.Sanitize(context.Background(), "55501")
	require.NoError(t, err)
	require.Len(t, res.Spans, 1)
	assert.Equal(t, span.LabelPhone, res.Spans[0].Label)
	assert.Equal(t, "[PHONE]", res.Text)
}

func TestSanitizeDigitStripping(t *testing.T) {
	det := &fakeDetector{src: span.SourcePattern, out: []span.Candidate{
		{Start: 9, End: 21, Label: span.LabelPhone, Source: span.SourcePattern},
	}}
	engine, err := NewEngine([]detect.Detector{det}, WithDigitStripping(true))
	require.NoError(t, err)

	res, err := engine.Sanitize(context.Background(), "ref 1234 555-123-4567 xyz 9")
	require.NoError(t, err)
	assert.Equal(t, "ref  [PHONE] xyz ", res.Text)
}

func TestSanitizeNoDetections(t *testing.T) {
	det := &fakeDetector{src: span.SourceLexical}
	engine, err := NewEngine([]detect.Detector{det})
	require.NoError(t, err)

	res, err := engine.Sanitize(context.Background(), "nothing sensitive here")
	require.NoError(t, err)
	assert.Equal(t, "nothing sensitive here", res.Text)
	assert.Empty(t, res.Spans)
}

func TestSanitizeDetectorErrorAborts(t *testing.T) {
	ok := &fakeDetector{src: span.SourcePattern, out: []span.Candidate{
		{Start: 0, End: 4, Label: span.LabelEntity, Source: span.SourcePattern},
	}}
	failing := &fakeDetector{src: span.SourceNER, err: errors.New("model gone")}

	engine, err := NewEngine([]detect.Detector{ok, failing})
	require.NoError(t, err)

	_, err = engine.Sanitize(context.Background(), "some document")
	assert.ErrorContains(t, err, "ner detector")
}

func TestSanitizeMalformedSpanIsFatal(t *testing.T) {
	det := &fakeDetector{src: span.SourceLexical, out: []span.Candidate{
		{Start: 2, End: 99, Label: span.LabelEntity, Source: span.SourceLexical},
	}}
	engine, err := NewEngine([]detect.Detector{det})
	require.NoError(t, err)

	_, err = engine.Sanitize(context.Background(), "short")
	assert.ErrorContains(t, err, "invalid span")
}
