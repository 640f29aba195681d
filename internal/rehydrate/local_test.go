package rehydrate

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leedsrising/pdf-to-text/internal/span"
)

func TestLocalRehydrateReplacesEveryToken(t *testing.T) {
	r := NewLocalSeeded(1)

	var b strings.Builder
	for _, l := range span.Labels {
		b.WriteString("field: ")
		b.WriteString(l.Token())
		b.WriteString("\n")
	}
	in := b.String()

	out, err := r.Rehydrate(context.Background(), in)
	require.NoError(t, err)

	assert.False(t, span.TokenPattern().MatchString(out), "tokens left in %q", out)
	// Line structure survives because generated values never contain newlines.
	assert.Equal(t, strings.Count(in, "\n"), strings.Count(out, "\n"))
	assert.True(t, strings.HasPrefix(out, "field: "))
}

func TestLocalRehydratePreservesSurroundingText(t *testing.T) {
	r := NewLocalSeeded(7)

	out, err := r.Rehydrate(context.Background(), "Before [ENTITY] after.")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Before "))
	assert.True(t, strings.HasSuffix(out, " after."))
	assert.NotContains(t, out, "[ENTITY]")
}

func TestLocalRehydrateLeavesUnknownBrackets(t *testing.T) {
	r := NewLocalSeeded(7)

	out, err := r.Rehydrate(context.Background(), "keep [UNKNOWN] and [not a token]")
	require.NoError(t, err)
	assert.Equal(t, "keep [UNKNOWN] and [not a token]", out)
}

func TestLocalRehydrateDeterministicWithSeed(t *testing.T) {
	in := "[ENTITY] paid [AMOUNT] on [DATE]"

	a, err := NewLocalSeeded(42).Rehydrate(context.Background(), in)
	require.NoError(t, err)
	b, err := NewLocalSeeded(42).Rehydrate(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestLocalGenerateShapes(t *testing.T) {
	r := NewLocalSeeded(3)

	for _, l := range span.Labels {
		v := r.generate(l)
		assert.NotEmpty(t, v, "label %s", l)
		assert.NotContains(t, v, "\n", "label %s", l)
		assert.NotEqual(t, l.Token(), v, "label %s", l)
	}

	assert.True(t, strings.HasPrefix(r.generate(span.LabelAmount), "$"))
	assert.True(t, strings.HasSuffix(r.generate(span.LabelPercentage), "%"))

	email := r.generate(span.LabelEmail)
	assert.Contains(t, email, "@")
	assert.Equal(t, strings.ToLower(email), email)
}
