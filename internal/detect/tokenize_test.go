package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeOffsetsAndSentences(t *testing.T) {
	text := "One two. Three\nFour"
	toks := tokenize(text)
	require.Len(t, toks, 4)

	assert.Equal(t, "One", toks[0].text)
	assert.Equal(t, 0, toks[0].start)
	assert.Equal(t, 3, toks[0].end)
	assert.True(t, toks[0].sentenceStart)
	assert.Equal(t, 0, toks[0].line)

	assert.Equal(t, "two", toks[1].text)
	assert.False(t, toks[1].sentenceStart)

	// After a period the next token opens a sentence.
	assert.Equal(t, "Three", toks[2].text)
	assert.True(t, toks[2].sentenceStart)
	assert.Equal(t, 0, toks[2].line)

	// A newline starts both a new line and a new sentence.
	assert.Equal(t, "Four", toks[3].text)
	assert.True(t, toks[3].sentenceStart)
	assert.Equal(t, 1, toks[3].line)
}

func TestTokenizeTrimsEdgePunctuation(t *testing.T) {
	text := `He said "Acme," loudly!`
	toks := tokenize(text)
	require.Len(t, toks, 4)

	acme := toks[2]
	assert.Equal(t, "Acme", acme.text)
	assert.Equal(t, "Acme", text[acme.start:acme.end])

	loudly := toks[3]
	assert.Equal(t, "loudly", loudly.text)
}

func TestTokenizeKeepsInteriorPunctuation(t *testing.T) {
	toks := tokenize("P&G bought Smith-Jones in the U.S. market")

	var texts []string
	for _, tok := range toks {
		texts = append(texts, tok.text)
	}
	assert.Contains(t, texts, "P&G")
	assert.Contains(t, texts, "Smith-Jones")
	assert.Contains(t, texts, "U.S")
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, tokenize(""))
	assert.Empty(t, tokenize("   \n\t  "))
	assert.Empty(t, tokenize(`"..."`))
}

func TestCaseHelpers(t *testing.T) {
	assert.True(t, hasUpper("aBc"))
	assert.False(t, hasUpper("abc"))

	assert.True(t, hasLower("ABc"))
	assert.False(t, hasLower("ABC"))

	assert.True(t, hasDigit("a1"))
	assert.False(t, hasDigit("ab"))

	assert.True(t, startsUpper("Acme"))
	assert.False(t, startsUpper("acme"))
	assert.False(t, startsUpper(""))

	assert.True(t, upperAfterFirst("McDonald"))
	assert.True(t, upperAfterFirst("aB"))
	assert.False(t, upperAfterFirst("Contact"))
	assert.False(t, upperAfterFirst("A"))
}

func TestUpperFraction(t *testing.T) {
	assert.InDelta(t, 1.0, upperFraction("ABC"), 1e-9)
	assert.InDelta(t, 0.25, upperFraction("Acme"), 1e-9)
	assert.Zero(t, upperFraction(""))
}

func TestAllWordsCapitalized(t *testing.T) {
	assert.True(t, allWordsCapitalized("John Smith"))
	assert.True(t, allWordsCapitalized("Acme Capital Partners LLC"))
	assert.False(t, allWordsCapitalized("John smith"))
	assert.False(t, allWordsCapitalized("John"))
	assert.False(t, allWordsCapitalized(""))
}
