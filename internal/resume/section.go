// Package resume turns raw resume text into structured candidate attributes:
// section bodies located by header boundaries, a skill set, and contact details.
package resume

import (
	"regexp"
	"strings"
	"sync"
)

// sectionCatalog lists the headers that can end a section.
var sectionCatalog = []string{
	"education", "experience", "skills", "projects", "certifications",
	"awards", "publications", "references", "interests", "languages",
	"objective", "summary", "contact", "personal",
}

// Header alias groups used by the parser and the skill extractor.
var (
	EducationHeaders  = []string{"education", "academic background", "academic qualifications"}
	ExperienceHeaders = []string{"experience", "work experience", "employment history", "professional experience", "work history"}
	SkillsHeaders     = []string{"skills", "technical skills", "core competencies"}
)

var (
	headerPatternsMu sync.Mutex
	headerPatterns   = map[string]*regexp.Regexp{}
)

// headerPattern matches header as a standalone word or as a whole line, ignoring case.
func headerPattern(header string) *regexp.Regexp {
	headerPatternsMu.Lock()
	defer headerPatternsMu.Unlock()
	if re, ok := headerPatterns[header]; ok {
		return re
	}
	q := regexp.QuoteMeta(header)
	re := regexp.MustCompile(`(?im)(?:\b` + q + `\b|^[ \t]*` + q + `[ \t]*$)`)
	headerPatterns[header] = re
	return re
}

// ExtractSection returns the body of the first section whose header matches one of
// aliases, tried in order. The body runs from the end of the header to the nearest
// following catalog header that is not itself one of aliases, or to the end of the
// text. Separator punctuation directly after the header ("Skills: ...") is dropped
// along with surrounding whitespace. Returns "" when no alias matches.
func ExtractSection(text string, aliases []string) string {
	for _, alias := range aliases {
		loc := headerPattern(alias).FindStringIndex(text)
		if loc == nil {
			continue
		}
		start := loc[1]
		rest := text[start:]

		end := len(rest)
		for _, next := range sectionCatalog {
			if containsFold(aliases, next) {
				continue
			}
			if m := headerPattern(next).FindStringIndex(rest); m != nil && m[0] < end {
				end = m[0]
			}
		}
		return trimSectionBody(rest[:end])
	}
	return ""
}

func trimSectionBody(body string) string {
	body = strings.TrimSpace(body)
	body = strings.TrimLeft(body, ":-–—|")
	return strings.TrimSpace(body)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
