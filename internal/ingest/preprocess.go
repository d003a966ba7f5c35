package ingest

import (
	"strings"
	"unicode"
)

// Preprocess trims s and collapses each run of whitespace, including newlines
// from form fields, to a single space.
func Preprocess(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	wasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
			continue
		}
		b.WriteRune(r)
		wasSpace = false
	}
	return b.String()
}
