package compose

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Truncate caps text at max runes. Longer text keeps its first max-1 runes,
// trailing whitespace trimmed, followed by Ellipsis. An image markdown span
// that would be cut is dropped whole. A max of zero or less disables the cap.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	cut, n := len(text), 0
	for i := range text {
		if n == max-1 {
			cut = i
			break
		}
		n++
	}
	for _, sp := range imageMarkdown.FindAllStringIndex(text, -1) {
		if sp[0] < cut && cut < sp[1] {
			cut = sp[0]
			break
		}
	}
	return strings.TrimRightFunc(text[:cut], unicode.IsSpace) + Ellipsis
}
