package links

import (
	"strings"
	"unicode"
)

// NormalizeSlug removes every whitespace character from slug, including
// interior spaces: "my slug" becomes "myslug".
func NormalizeSlug(slug string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, slug)
}
