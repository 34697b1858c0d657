package compose

import (
	"regexp"
	"strings"
	"unicode"
)

// imageMarkdown matches ![alt](ref) spans, which Sanitize leaves untouched.
var imageMarkdown = regexp.MustCompile(`!\[[^\]\n]*\]\([^)\s]*\)`)

var bullets = map[rune]bool{
	'•': true, '◦': true, '▪': true, '▫': true, '‣': true, '∙': true,
	'●': true, '○': true, '■': true, '□': true, '►': true, '▸': true,
	'·': true, '⁃': true, '*': true,
}

// Punctuation an LLM tends to reformat around.
var stripped = map[rune]bool{
	'?': true, ':': true, '-': true, '–': true, '—': true, '‐': true, '‑': true,
}

var emoji = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200d, Hi: 0x200d, Stride: 1}, // zero width joiner
		{Lo: 0x20e3, Hi: 0x20e3, Stride: 1}, // keycap
		{Lo: 0x2190, Hi: 0x21ff, Stride: 1}, // arrows
		{Lo: 0x2300, Hi: 0x23ff, Stride: 1}, // misc technical (⌛ ⏰)
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1}, // misc symbols, dingbats
		{Lo: 0x2900, Hi: 0x297f, Stride: 1},
		{Lo: 0x2b00, Hi: 0x2bff, Stride: 1}, // ⭐ ⬆
		{Lo: 0xfe00, Hi: 0xfe0f, Stride: 1}, // variation selectors
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1faff, Stride: 1}, // pictographs, emoticons, flags
		{Lo: 0xe0020, Hi: 0xe007f, Stride: 1}, // tag sequences
	},
}

// IsEmoji reports whether r falls in one of the emoji ranges Sanitize strips.
func IsEmoji(r rune) bool {
	return unicode.Is(emoji, r)
}

// Sanitize strips list glyphs, emojis, question marks, colons and hyphens,
// turns newlines into spaces and collapses whitespace. Image markdown spans
// are kept verbatim. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, sp := range imageMarkdown.FindAllStringIndex(text, -1) {
		sanitizePlain(&b, text[last:sp[0]])
		b.WriteString(text[sp[0]:sp[1]])
		last = sp[1]
	}
	sanitizePlain(&b, text[last:])
	return strings.TrimSpace(b.String())
}

// sanitizePlain writes text to b with stripped runes removed and whitespace
// runs collapsed. Runs are collapsed across segment boundaries so adjacent
// segments never produce a double space.
func sanitizePlain(b *strings.Builder, text string) {
	for _, r := range text {
		switch {
		case bullets[r], stripped[r], IsEmoji(r):
			continue
		case unicode.IsSpace(r):
			if s := b.String(); s != "" && s[len(s)-1] == ' ' {
				continue
			}
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
}
