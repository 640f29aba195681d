// Package layout parses the positional metadata emitted by the
// layout-preserving extraction variant. Each annotated line has the form:
//
//	Some text [pos:(x0,y0,x1,y1), font:Helvetica, size:12]
//
// with page sections delimited by "--- Page N ---" headers. The sanitization
// core never consumes this metadata; it exists for the external PDF
// reconstruction collaborator. Parsing is tolerant: malformed lines are
// reported with a bounded number of warnings and skipped.
package layout

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// MaxLineWarnings bounds how many malformed lines are logged individually;
// the remainder is summarized in a single count.
const MaxLineWarnings = 10

var (
	pageHeaderRE = regexp.MustCompile(`^--- Page (\d+) ---$`)
	lineMetaRE   = regexp.MustCompile(`^\(([-\d.]+),([-\d.]+),([-\d.]+),([-\d.]+)\), font:([^,]+), size:([\d.]+)\]\s*$`)
)

// Item is one positioned text run.
type Item struct {
	Text string
	X0   float64
	Y0   float64
	X1   float64
	Y1   float64
	Font string
	Size float64
}

// Page is the ordered list of items on one page.
type Page struct {
	Number int
	Items  []Item
}

// Result carries the parsed pages plus parse diagnostics.
type Result struct {
	Pages     []Page
	Malformed int // count of lines with unparsable metadata
}

// Parse reads an annotated layout document. It never fails on malformed
// lines: whatever parses is returned, and the malformed count is reported.
func Parse(r io.Reader) (*Result, error) {
	res := &Result{}
	var current *Page

	ensurePage := func() *Page {
		if current == nil {
			res.Pages = append(res.Pages, Page{Number: len(res.Pages) + 1})
			current = &res.Pages[len(res.Pages)-1]
		}
		return current
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if m := pageHeaderRE.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			res.Pages = append(res.Pages, Page{Number: n})
			current = &res.Pages[len(res.Pages)-1]
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.Contains(line, "[pos:") {
			continue
		}

		item, ok := parseItem(line)
		if !ok {
			res.Malformed++
			if res.Malformed <= MaxLineWarnings {
				log.Warn().Str("line", line).Msg("unparsable layout metadata")
			}
			continue
		}
		page := ensurePage()
		page.Items = append(page.Items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if res.Malformed > MaxLineWarnings {
		log.Warn().
			Int("suppressed", res.Malformed-MaxLineWarnings).
			Msg("additional malformed layout lines suppressed")
	}
	return res, nil
}

// parseItem splits one annotated line into its text and metadata.
func parseItem(line string) (Item, bool) {
	text, meta, found := strings.Cut(line, "[pos:")
	if !found {
		return Item{}, false
	}
	m := lineMetaRE.FindStringSubmatch(meta)
	if m == nil {
		return Item{}, false
	}

	coords := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return Item{}, false
		}
		coords[i] = v
	}
	size, err := strconv.ParseFloat(m[6], 64)
	if err != nil {
		return Item{}, false
	}

	return Item{
		Text: strings.TrimRight(text, " "),
		X0:   coords[0],
		Y0:   coords[1],
		X1:   coords[2],
		Y1:   coords[3],
		Font: strings.TrimSpace(m[5]),
		Size: size,
	}, true
}
