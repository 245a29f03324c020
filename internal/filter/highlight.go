package filter

import (
	"strings"
	"unicode"
)

// Segment is a run of text, marked when it matches the search term.
type Segment struct {
	Text  string
	Match bool
}

// Highlight splits text into segments, marking each case-insensitive literal
// occurrence of query. A blank query yields the text unmodified.
func Highlight(text, query string) []Segment {
	if text == "" {
		return nil
	}
	if strings.TrimSpace(query) == "" {
		return []Segment{{Text: text}}
	}
	term := query

	// Compare rune by rune so byte offsets stay valid when lowercasing
	// changes the encoded width.
	src := []rune(text)
	hay := foldRunes(src)
	needle := foldRunes([]rune(term))

	var segments []Segment
	start := 0
	for i := 0; i+len(needle) <= len(hay); {
		if !runesEqual(hay[i:i+len(needle)], needle) {
			i++
			continue
		}
		if i > start {
			segments = append(segments, Segment{Text: string(src[start:i])})
		}
		segments = append(segments, Segment{Text: string(src[i : i+len(needle)]), Match: true})
		i += len(needle)
		start = i
	}
	if start < len(src) {
		segments = append(segments, Segment{Text: string(src[start:])})
	}
	return segments
}

func foldRunes(in []rune) []rune {
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
