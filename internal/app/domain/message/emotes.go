package message

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Span is a 1-based inclusive rune range of an emote in the original text.
type Span struct {
	ID    string
	First int
	Last  int
}

// ParseEmotes decodes "25:0-4,12-16/1902:6-10" into spans. The wire format
// uses 0-based offsets; the returned spans are shifted to 1-based.
func ParseEmotes(tag string) ([]Span, error) {
	if tag == "" {
		return nil, nil
	}

	var spans []Span
	for _, emote := range strings.Split(tag, "/") {
		if emote == "" {
			continue
		}

		id, ranges, ok := strings.Cut(emote, ":")
		if !ok {
			return nil, fmt.Errorf("emote %q: missing positions", emote)
		}

		for _, r := range strings.Split(ranges, ",") {
			first, last, ok := strings.Cut(r, "-")
			if !ok {
				return nil, fmt.Errorf("emote %s: malformed range %q", id, r)
			}

			f, err := strconv.Atoi(first)
			if err != nil {
				return nil, fmt.Errorf("emote %s: first offset: %w", id, err)
			}
			l, err := strconv.Atoi(last)
			if err != nil {
				return nil, fmt.Errorf("emote %s: last offset: %w", id, err)
			}
			if f < 0 || l < f {
				return nil, fmt.Errorf("emote %s: inverted range %d-%d", id, f, l)
			}

			spans = append(spans, Span{ID: id, First: f + 1, Last: l + 1})
		}
	}

	return spans, nil
}

// StripEmotes removes every span from text. Spans are applied from the highest
// start offset down so earlier removals never shift pending ones. A span
// starting at 0 is a prefix emote and cuts everything up to Last. Offsets past
// the end of text are clamped.
func StripEmotes(text string, spans []Span) string {
	if len(spans) == 0 {
		return text
	}

	ordered := slices.Clone(spans)
	slices.SortFunc(ordered, func(a, b Span) int { return b.First - a.First })

	runes := []rune(text)
	for _, s := range ordered {
		start := min(max(s.First-1, 0), len(runes))
		end := min(s.Last, len(runes))
		if start >= end {
			continue
		}
		runes = append(runes[:start], runes[end:]...)
	}

	return string(runes)
}
