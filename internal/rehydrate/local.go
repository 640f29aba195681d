package rehydrate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/leedsrising/pdf-to-text/internal/span"
)

// Value pools for local generation. Plausibility is the only requirement;
// draws are independent, so repeated placeholders hydrate differently.
var (
	companyRoots = []string{
		"Summit", "Beacon", "Harborview", "Crestline", "Meridian",
		"Lakeside", "Ironwood", "Stonebridge", "Northfield", "Clearwater",
	}
	companySuffixes = []string{"LLC", "LP", "Partners", "Group", "Capital", "Properties"}
	firstNames      = []string{"James", "Maria", "Robert", "Linda", "Daniel", "Susan", "Michael", "Karen"}
	lastNames       = []string{"Walker", "Reyes", "Thompson", "Nguyen", "Patel", "Brooks", "Morgan", "Fischer"}
	cities          = []string{"Portland", "Austin", "Raleigh", "Columbus", "Denver", "Tampa", "Madison"}
	streets         = []string{"Oak", "Maple", "Cedar", "Elm", "Washington", "Lincoln", "Jefferson"}
	streetSuffixes  = []string{"Street", "Avenue", "Road", "Boulevard", "Lane", "Drive"}
	months          = []string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"}
	emailDomains = []string{"example.com", "mailbox.net", "corpmail.org"}
)

// LocalRehydrator draws label-appropriate synthetic values from a
// pseudo-random source. Safe for concurrent use only when each goroutine
// has its own instance.
type LocalRehydrator struct {
	rng *rand.Rand
}

// NewLocal creates a local rehydrator with an OS-seeded source.
func NewLocal() *LocalRehydrator {
	return &LocalRehydrator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewLocalSeeded creates a deterministic local rehydrator for tests.
func NewLocalSeeded(seed uint64) *LocalRehydrator {
	return &LocalRehydrator{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Rehydrate replaces every placeholder occurrence with an independent draw.
// All non-placeholder text, including whitespace and layout, passes through
// untouched.
func (r *LocalRehydrator) Rehydrate(ctx context.Context, text string) (string, error) {
	_, otelSpan := tracer.Start(ctx, "rehydrate.local")
	defer otelSpan.End()

	out := span.TokenPattern().ReplaceAllStringFunc(text, func(token string) string {
		label, ok := span.ParseToken(token)
		if !ok {
			return token
		}
		return r.generate(label)
	})
	return out, nil
}

// generate draws one synthetic value for a label. Values never contain
// newlines, preserving the document's line structure.
func (r *LocalRehydrator) generate(label span.Label) string {
	switch label {
	case span.LabelEntity:
		switch r.rng.IntN(3) {
		case 0:
			return r.pick(companyRoots) + " " + r.pick(companySuffixes)
		case 1:
			return r.pick(firstNames) + " " + r.pick(lastNames)
		default:
			return r.pick(cities)
		}
	case span.LabelNumber:
		if r.rng.IntN(2) == 0 {
			return fmt.Sprintf("%d", 1+r.rng.IntN(10000))
		}
		return fmt.Sprintf("%.2f", r.rng.Float64()*99)
	case span.LabelDate:
		return fmt.Sprintf("%s %d, %d", r.pick(months), 1+r.rng.IntN(28), 2015+r.rng.IntN(11))
	case span.LabelEmail:
		return fmt.Sprintf("%s.%s@%s",
			strings.ToLower(r.pick(firstNames)), strings.ToLower(r.pick(lastNames)), r.pick(emailDomains))
	case span.LabelPhone:
		return fmt.Sprintf("(%d) %03d-%04d", 200+r.rng.IntN(800), r.rng.IntN(1000), r.rng.IntN(10000))
	case span.LabelAmount:
		if r.rng.IntN(3) == 0 {
			return fmt.Sprintf("$%d million", 1+r.rng.IntN(500))
		}
		return fmt.Sprintf("$%d,%03d", 1+r.rng.IntN(999), r.rng.IntN(1000))
	case span.LabelPercentage:
		return fmt.Sprintf("%.1f%%", r.rng.Float64()*100)
	case span.LabelArea:
		if r.rng.IntN(2) == 0 {
			return fmt.Sprintf("%d,%03d sq. ft.", 1+r.rng.IntN(99), r.rng.IntN(1000))
		}
		return fmt.Sprintf("%d acres", 1+r.rng.IntN(200))
	case span.LabelUnit:
		return fmt.Sprintf("Suite %d", 100+r.rng.IntN(900))
	case span.LabelAddress:
		return fmt.Sprintf("%d %s %s", 1+r.rng.IntN(9999), r.pick(streets), r.pick(streetSuffixes))
	}
	return string(label)
}

func (r *LocalRehydrator) pick(pool []string) string {
	return pool[r.rng.IntN(len(pool))]
}
