package resume

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/hyperjump/resumatch/internal/models"
)

// TextExtractor reads the text layer of a document.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// Keywords used when a resume has no recognizable education or experience header.
var (
	EducationKeywords  = []string{"bachelor", "master", "phd", "degree", "university", "college", "school", "diploma"}
	ExperienceKeywords = []string{"engineer", "developer", "manager", "director", "analyst", "consultant", "specialist", "coordinator", "designer"}
)

// errNoText is the cause reported for documents without an extractable text layer.
var errNoText = errors.New("document contains no extractable text")

var sentenceSplit = regexp.MustCompile(`[.\n]`)

// Parser turns resume documents into ResumeRecords.
type Parser struct {
	extractor TextExtractor
	skills    *SkillExtractor
}

// NewParser returns a parser that reads documents with extractor and finds skills with skills.
func NewParser(extractor TextExtractor, skills *SkillExtractor) *Parser {
	return &Parser{extractor: extractor, skills: skills}
}

// Parse extracts the text of the document at path and parses it. Unreadable,
// unsupported or empty documents yield an error of kind models.ErrExtraction.
func (p *Parser) Parse(ctx context.Context, path string) (*models.ResumeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := p.extractor.Extract(path)
	if err != nil {
		return nil, models.NewExtractionError(path, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, models.NewExtractionError(path, errNoText)
	}
	return p.ParseText(text), nil
}

// ParseText parses already-extracted resume text.
func (p *Parser) ParseText(text string) *models.ResumeRecord {
	return &models.ResumeRecord{
		Skills:     p.skills.Extract(text),
		Education:  sectionOrKeywords(text, EducationHeaders, EducationKeywords),
		Experience: sectionOrKeywords(text, ExperienceHeaders, ExperienceKeywords),
		RawText:    text,
	}
}

// sectionOrKeywords returns the section under headers, or else every sentence that
// mentions one of keywords joined by spaces, or else models.NotSpecified.
func sectionOrKeywords(text string, headers, keywords []string) string {
	if section := ExtractSection(text, headers); section != "" {
		return section
	}
	var matches []string
	for _, sentence := range sentenceSplit.Split(text, -1) {
		lower := strings.ToLower(sentence)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matches = append(matches, strings.TrimSpace(sentence))
				break
			}
		}
	}
	if len(matches) == 0 {
		return models.NotSpecified
	}
	return strings.Join(matches, " ")
}
