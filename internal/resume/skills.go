package resume

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperjump/resumatch/internal/nlp"
	"go.uber.org/zap"
)

type vocabEntry struct {
	name    string
	pattern *regexp.Regexp
}

// SkillExtractor finds skills by vocabulary match over the whole text and by
// noun extraction from the skills section.
type SkillExtractor struct {
	vocab     []vocabEntry
	tagger    nlp.Tagger
	stopwords map[string]bool
	logger    *zap.Logger
}

// SkillOption configures a SkillExtractor.
type SkillOption func(*SkillExtractor)

// WithVocabulary replaces DefaultVocabulary.
func WithVocabulary(vocabulary []string) SkillOption {
	return func(s *SkillExtractor) {
		s.vocab = compileVocabulary(vocabulary)
	}
}

// WithSkillLogger sets the logger used to report tagger failures.
func WithSkillLogger(logger *zap.Logger) SkillOption {
	return func(s *SkillExtractor) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSkillExtractor returns an extractor using tagger for the skills-section pass.
// A nil tagger disables that pass.
func NewSkillExtractor(tagger nlp.Tagger, opts ...SkillOption) *SkillExtractor {
	s := &SkillExtractor{
		tagger:    tagger,
		stopwords: nlp.Stopwords(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.vocab == nil {
		s.vocab = compileVocabulary(DefaultVocabulary)
	}
	return s
}

// compileVocabulary builds one matcher per entry. Word boundaries are checked on the
// characters around the entry rather than with \b, so entries ending in symbols such
// as "C++" or "C#" still match when followed by a space or punctuation.
func compileVocabulary(vocabulary []string) []vocabEntry {
	entries := make([]vocabEntry, 0, len(vocabulary))
	for _, skill := range vocabulary {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		entries = append(entries, vocabEntry{
			name:    skill,
			pattern: regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(skill) + `(?:[^\p{L}\p{N}_]|$)`),
		})
	}
	return entries
}

// Extract returns the sorted, deduplicated skills found in text.
func (s *SkillExtractor) Extract(text string) []string {
	found := make(map[string]struct{})
	seenFold := make(map[string]struct{})

	for _, entry := range s.vocab {
		if entry.pattern.MatchString(text) {
			found[entry.name] = struct{}{}
			seenFold[strings.ToLower(entry.name)] = struct{}{}
		}
	}

	if s.tagger != nil {
		if section := ExtractSection(text, SkillsHeaders); section != "" {
			s.addSectionNouns(section, found, seenFold)
		}
	}

	skills := make([]string, 0, len(found))
	for skill := range found {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

// addSectionNouns adds nouns from the skills section that the vocabulary pass missed.
func (s *SkillExtractor) addSectionNouns(section string, found, seenFold map[string]struct{}) {
	tokens, err := s.tagger.Tag(section)
	if err != nil {
		s.logger.Warn("skills section tagging failed", zap.Error(err))
		return
	}
	for _, tok := range tokens {
		if !nlp.IsNoun(tok.Tag) || utf8.RuneCountInString(tok.Text) <= 2 {
			continue
		}
		lower := strings.ToLower(tok.Text)
		if _, ok := seenFold[lower]; ok {
			continue
		}
		if s.stopwords[lower] {
			continue
		}
		found[capitalize(tok.Text)] = struct{}{}
	}
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError && size <= 1 {
		return word
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}
