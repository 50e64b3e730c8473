// Package normalize strips decorative pictographic characters from chat
// messages so that emoji-interleaved spam ("t❤e❤s❤t") collapses to its
// underlying text before any length or similarity computation.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// pictographs covers the Unicode blocks where emoji sequences begin. A
// grapheme cluster starting with one of these runes is dropped whole, so
// ZWJ families and skin-tone sequences disappear in one step.
var pictographs = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2300, Hi: 0x23ff, Stride: 1}, // misc technical (watch, hourglass)
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1}, // misc symbols + dingbats
		{Lo: 0x2b00, Hi: 0x2bff, Stride: 1}, // arrows, stars, squares
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1ffff, Stride: 1}, // emoji, pictographs, extensions
	},
}

// components are invisible pieces of emoji sequences that can trail a kept
// cluster, such as the keycap in "1️⃣".
var components = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200d, Hi: 0x200d, Stride: 1}, // zero-width joiner
		{Lo: 0x20e3, Hi: 0x20e3, Stride: 1}, // combining enclosing keycap
		{Lo: 0xfe00, Hi: 0xfe0f, Stride: 1}, // variation selectors
	},
}

// Clean returns text with pictographic characters removed. Word characters
// and punctuation, ASCII or not, are kept in place. Clean is pure and
// idempotent.
func Clean(text string) string {
	if isASCII(text) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	graphemes := uniseg.NewGraphemes(text)
	for graphemes.Next() {
		runes := graphemes.Runes()
		if unicode.Is(pictographs, runes[0]) {
			continue
		}
		for _, r := range runes {
			if unicode.Is(pictographs, r) || unicode.Is(components, r) {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCII(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
