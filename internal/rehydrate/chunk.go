package rehydrate

import "strings"

// SplitChunks partitions text into chunks of at most budget characters,
// splitting at line boundaries. A single line longer than the budget is the
// only case where a split lands mid-line, at the budget boundary.
// Concatenating the chunks in order reproduces the input exactly.
func SplitChunks(text string, budget int) []string {
	if budget <= 0 || len(text) <= budget {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	rest := text
	for len(rest) > 0 {
		line := rest
		if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
			line = rest[:idx+1] // keep the terminator with its line
		}
		rest = rest[len(line):]

		if len(line) > budget {
			// Oversized line: hard-split at the budget boundary.
			flush()
			for len(line) > budget {
				chunks = append(chunks, line[:budget])
				line = line[budget:]
			}
			if line != "" {
				current.WriteString(line)
			}
			continue
		}

		if current.Len()+len(line) > budget {
			flush()
		}
		current.WriteString(line)
	}
	flush()

	return chunks
}
