package resume

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\(?\d[\d \t().\-]{6,}\d`)
	yearRange    = regexp.MustCompile(`^\d{4}\s*-\s*\d{4}$`)
)

// Contact holds contact details found in resume text.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// ExtractContact finds the first email address, the first phone number, and a name
// guess in text. The name is the first non-empty line that reads like a name:
// at most five words, no digits, no '@', and not a section header.
func ExtractContact(text string) Contact {
	var c Contact
	c.Email = emailPattern.FindString(text)
	for _, m := range phonePattern.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		if countDigits(m) >= 7 && !yearRange.MatchString(m) {
			c.Phone = m
			break
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if looksLikeName(line) {
			c.Name = line
		}
		break
	}
	return c
}

func looksLikeName(line string) bool {
	if strings.Contains(line, "@") || containsFold(sectionCatalog, line) {
		return false
	}
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > 5 {
		return false
	}
	for _, r := range line {
		if unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
