package span

import "sort"

// Resolve reduces an arbitrary set of candidate spans to a non-overlapping
// subset via greedy interval scheduling: candidates are ordered by start
// ascending then end descending, and each is accepted iff it begins at or
// after the end of the last accepted span. Among spans starting at the same
// offset the longest wins, so a detector flagging "Acme Capital Partners LLC"
// beats one flagging just "Capital". Rejected candidates are dropped whole;
// no clipped spans are produced.
//
// Cross-source conflicts resolve by the same ordering. Confidence scores are
// deliberately not consulted; see the resolver notes in DESIGN.md.
//
// The input slice is not modified. The result is ordered by Start ascending.
func Resolve(candidates []Candidate) []Candidate {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End > sorted[j].End
	})

	resolved := make([]Candidate, 0, len(sorted))
	lastEnd := -1
	for _, c := range sorted {
		if c.Start >= lastEnd {
			resolved = append(resolved, c)
			lastEnd = c.End
		}
	}
	return resolved
}
