package scraper

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

// trim strips leading and trailing whitespace, including NBSP and the BOM.
func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// textLen counts UTF-16 code units. The length thresholds below were tuned
// against browser string lengths, so astral characters count twice.
func textLen(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
