// internal/catalog/normalize.go
package catalog

import (
	"strings"
	"unicode"
)

var articles = map[string]bool{"a": true, "an": true, "the": true}

// NormalizeTitle produces the canonical comparison key for a title:
// lowercased, punctuation stripped, whitespace collapsed, leading
// articles removed. Two titles are equivalent iff their normalized forms
// are byte-equal. The function is pure, total, and idempotent.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	// A lone article ("It", "A") is a whole title and stays.
	for len(fields) > 1 && articles[fields[0]] {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}
