package message

import (
	"strings"
	"unicode"
)

// Normalize drops invisible and control runes and trims surrounding spaces.
// Chat clients append such runes (7TV's U+E0000 most often) to dodge
// duplicate-message filters, so repeat detection compares normalized texts.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		if isInvisible(r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.TrimSpace(b.String())
}

func isInvisible(r rune) bool {
	switch {
	case r == '\u180E', r == '\uFEFF':
		return true
	case r >= 0x200B && r <= 0x200F, r >= 0x202A && r <= 0x202E, r >= 0x2060 && r <= 0x206F:
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0xE0000 && r <= 0xE007F, r >= 0xE0100 && r <= 0xE01EF:
		return true
	}

	return unicode.IsControl(r)
}
