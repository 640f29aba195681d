// Package span defines the candidate-span data model shared by every
// detector and the greedy resolver that reconciles their output into a
// single non-overlapping annotation of a document.
package span

import (
	"fmt"
	"regexp"
	"strings"
)

// Label is the category written into sanitized output for a detected span.
// The set is closed: placeholder parsing during rehydration depends on it.
type Label string

const (
	LabelEntity     Label = "ENTITY"
	LabelNumber     Label = "NUMBER"
	LabelDate       Label = "DATE"
	LabelEmail      Label = "EMAIL"
	LabelPhone      Label = "PHONE"
	LabelAmount     Label = "AMOUNT"
	LabelPercentage Label = "PERCENTAGE"
	LabelArea       Label = "AREA"
	LabelUnit       Label = "UNIT"
	LabelAddress    Label = "ADDRESS"
)

// Labels lists every valid label in placeholder-scan order.
var Labels = []Label{
	LabelEntity, LabelNumber, LabelDate, LabelEmail, LabelPhone,
	LabelAmount, LabelPercentage, LabelArea, LabelUnit, LabelAddress,
}

// Valid reports whether l is a member of the closed label set.
func (l Label) Valid() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// Token returns the placeholder text substituted for a span of this label,
// e.g. "[ENTITY]". The sanitized text is the only record of the label; no
// side-channel mapping is persisted.
func (l Label) Token() string {
	return "[" + string(l) + "]"
}

// ParseToken recovers the label from a placeholder token. It is the inverse
// of Token and the only way to learn what category occupied a position.
func ParseToken(token string) (Label, bool) {
	if len(token) < 3 || token[0] != '[' || token[len(token)-1] != ']' {
		return "", false
	}
	l := Label(token[1 : len(token)-1])
	if !l.Valid() {
		return "", false
	}
	return l, true
}

// TokenPattern returns a regexp matching any placeholder token from the
// closed label set. Used by the rehydrator and by idempotence checks.
func TokenPattern() *regexp.Regexp {
	names := make([]string, len(Labels))
	for i, l := range Labels {
		names[i] = string(l)
	}
	return regexp.MustCompile(`\[(` + strings.Join(names, "|") + `)\]`)
}

// Source identifies which detector produced a candidate.
type Source string

const (
	SourcePattern  Source = "pattern"
	SourceLexical  Source = "lexical"
	SourceSemantic Source = "semantic"
	SourceNER      Source = "ner"
)

// Candidate is a half-open [Start,End) character range claimed by one
// detector. Confidence is nil for deterministic sources. Candidates from
// different sources may overlap arbitrarily; Resolve reconciles them.
type Candidate struct {
	Start      int
	End        int
	Label      Label
	Source     Source
	Confidence *float64
}

// Validate reports malformed spans. A bad span is a programming error in a
// detector, so callers treat a non-nil result as fatal.
func (c Candidate) Validate(docLen int) error {
	if c.Start < 0 || c.End > docLen || c.Start >= c.End {
		return fmt.Errorf("invalid span [%d,%d) over document of length %d", c.Start, c.End, docLen)
	}
	if !c.Label.Valid() {
		return fmt.Errorf("invalid span label %q", c.Label)
	}
	return nil
}

// Overlaps reports whether two half-open ranges share any position.
// Touching spans ([5,10) and [10,15)) do not overlap.
func (c Candidate) Overlaps(o Candidate) bool {
	return c.Start < o.End && o.Start < c.End
}

// Len returns the number of characters the span covers.
func (c Candidate) Len() int {
	return c.End - c.Start
}

// Conf builds an optional confidence value for detector use.
func Conf(v float64) *float64 { return &v }
