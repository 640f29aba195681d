package detect

import (
	"strings"
	"unicode"
)

// token is a whitespace-delimited word with its offsets into the source
// text. Edge punctuation is trimmed so "Acme," classifies as "Acme";
// interior punctuation ("U.S.", "Smith-Jones", "P&G") is preserved.
type token struct {
	start         int // offset of first kept rune
	end           int // offset past last kept rune
	text          string
	sentenceStart bool
	line          int // 0-based line index; n-grams never cross lines
}

// edge punctuation stripped from token boundaries. '&' and '-' stay because
// the heuristics treat them as entity signal; '.' is trimmed only at the
// edges so abbreviations keep their interior dots.
const edgeCut = ".,;:!?()[]{}\"'`"

// tokenize splits text into words with stable offsets and marks tokens that
// begin a sentence. A token starts a sentence when the closest preceding
// non-space character is a sentence terminator or there is none (document
// or line start).
func tokenize(text string) []token {
	var toks []token
	line := 0
	lastSig := byte(0) // last significant (non-space) byte seen, 0 = none

	i := 0
	for i < len(text) {
		c := text[i]
		if c == '\n' {
			line++
			lastSig = 0
			i++
			continue
		}
		if unicode.IsSpace(rune(c)) {
			i++
			continue
		}

		j := i
		for j < len(text) && !unicode.IsSpace(rune(text[j])) {
			j++
		}
		raw := text[i:j]

		trimmedLeft := strings.TrimLeft(raw, edgeCut)
		start := i + (len(raw) - len(trimmedLeft))
		trimmed := strings.TrimRight(trimmedLeft, edgeCut)
		end := start + len(trimmed)

		if trimmed != "" {
			toks = append(toks, token{
				start:         start,
				end:           end,
				text:          trimmed,
				sentenceStart: lastSig == 0 || lastSig == '.' || lastSig == '!' || lastSig == '?',
				line:          line,
			})
		}

		lastSig = text[j-1]
		i = j
	}
	return toks
}

// hasUpper reports whether s contains any uppercase letter.
func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// hasLower reports whether s contains any lowercase letter.
func hasLower(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

// hasDigit reports whether s contains any decimal digit.
func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// startsUpper reports whether the first rune of s is uppercase.
func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// upperAfterFirst reports whether any rune past the first is uppercase.
func upperAfterFirst(s string) bool {
	first := true
	for _, r := range s {
		if first {
			first = false
			continue
		}
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// upperFraction returns the share of letters in s that are uppercase,
// measured against the total rune count.
func upperFraction(s string) float64 {
	total, upper := 0, 0
	for _, r := range s {
		total++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(upper) / float64(total)
}

// allWordsCapitalized reports whether s splits into 2+ words that each
// begin with an uppercase letter.
func allWordsCapitalized(s string) bool {
	words := strings.Fields(s)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if !startsUpper(w) {
			return false
		}
	}
	return true
}
