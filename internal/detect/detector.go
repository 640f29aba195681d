// Package detect contains the entity-detection strategies that feed the
// span resolver: regex pattern matching, lexical heuristics, embedding-based
// semantic scoring, and the adapter for an external statistical recognizer.
// Every detector is a pure function over the same immutable document text
// and may run concurrently with the others.
package detect

import (
	"context"
	"strings"

	pkgotel "github.com/leedsrising/pdf-to-text/internal/otel"
	"github.com/leedsrising/pdf-to-text/internal/span"
)

var tracer = pkgotel.Tracer("github.com/leedsrising/pdf-to-text/internal/detect")

// Detector produces candidate spans over a document's text. Implementations
// hold no per-document state; the same detector may scan many documents
// concurrently.
type Detector interface {
	// Source identifies the detector in candidate spans it emits.
	Source() span.Source
	// Detect returns all candidate spans found in text. Offsets index into
	// text itself; overlap with other detectors' output is expected and is
	// resolved later.
	Detect(ctx context.Context, text string) ([]span.Candidate, error)
}

// AllowList is a set of literal strings exempted from every detection pass,
// compared case-insensitively. It represents deliberately non-sensitive
// recurring terms, such as a client name permitted to remain in output.
type AllowList struct {
	entries map[string]struct{}
}

// NewAllowList builds an allow list from literal entries. Comparison is
// case-insensitive; surrounding whitespace in entries is ignored.
func NewAllowList(entries []string) *AllowList {
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		set[strings.ToLower(e)] = struct{}{}
	}
	return &AllowList{entries: set}
}

// Contains reports whether text exactly matches an allowed entry,
// ignoring case and surrounding whitespace.
func (a *AllowList) Contains(text string) bool {
	if a == nil || len(a.entries) == 0 {
		return false
	}
	_, ok := a.entries[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// Len returns the number of configured entries.
func (a *AllowList) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}
