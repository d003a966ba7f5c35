package resume

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode"

	"github.com/hyperjump/resumatch/internal/nlp"
)

// fakeTagger tags every word as NN unless tags overrides it.
type fakeTagger struct {
	tags  map[string]string
	err   error
	calls int
}

func (f *fakeTagger) Tag(text string) ([]nlp.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	tokens := make([]nlp.Token, 0, len(words))
	for _, w := range words {
		tag := f.tags[w]
		if tag == "" {
			tag = "NN"
		}
		tokens = append(tokens, nlp.Token{Text: w, Tag: tag})
	}
	return tokens, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestSkillExtractor_Vocabulary(t *testing.T) {
	s := NewSkillExtractor(nil)
	got := s.Extract("Proficient in C++, C# and CI/CD pipelines; built APIs with node.js and POSTGRESQL.")
	for _, want := range []string{"C++", "C#", "CI/CD", "Node.js", "PostgreSQL"} {
		if !contains(got, want) {
			t.Errorf("expected %q in %v", want, got)
		}
	}
	if contains(got, "SQL") {
		t.Errorf("SQL should not match inside PostgreSQL: %v", got)
	}
}

func TestSkillExtractor_WordBoundaries(t *testing.T) {
	got := NewSkillExtractor(nil).Extract("Worked at Google on JavaScriptCore")
	if contains(got, "Go") || contains(got, "JavaScript") {
		t.Errorf("substring matches should be rejected: %v", got)
	}
}

func TestSkillExtractor_SectionNouns(t *testing.T) {
	tagger := &fakeTagger{tags: map[string]string{"Figma": "VB", "Sketch": "NNP"}}
	s := NewSkillExtractor(tagger)
	text := "Skills\nPython, Photoshop, teamwork, Figma, the, ux, SKETCH\nEducation\nBA Design"

	got := s.Extract(text)
	want := []string{"Photoshop", "Python", "Sketch", "Teamwork"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %v, want %v", got, want)
	}
	if tagger.calls != 1 {
		t.Errorf("tagger calls=%d, want 1", tagger.calls)
	}
}

func TestSkillExtractor_NoSkillsSection(t *testing.T) {
	tagger := &fakeTagger{}
	got := NewSkillExtractor(tagger).Extract("Experience\nBuilt Kubernetes operators")
	if !reflect.DeepEqual(got, []string{"Kubernetes"}) {
		t.Errorf("got %v", got)
	}
	if tagger.calls != 0 {
		t.Error("tagger should not run without a skills section")
	}
}

func TestSkillExtractor_TaggerErrorKeepsVocabulary(t *testing.T) {
	tagger := &fakeTagger{err: errors.New("model unavailable")}
	got := NewSkillExtractor(tagger).Extract("Skills: Docker, Terraform, Nomad")
	if !reflect.DeepEqual(got, []string{"Docker", "Terraform"}) {
		t.Errorf("got %v", got)
	}
}

func TestSkillExtractor_Idempotent(t *testing.T) {
	s := NewSkillExtractor(&fakeTagger{})
	text := "Core Competencies: Kafka, Spark, observability, tracing\nProjects\nStreaming ETL"
	first := s.Extract(text)
	second := s.Extract(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("not idempotent: %v vs %v", first, second)
	}
	for _, want := range []string{"Kafka", "Spark", "ETL", "Observability", "Tracing"} {
		if !contains(first, want) {
			t.Errorf("expected %q in %v", want, first)
		}
	}
}

func TestSkillExtractor_CustomVocabulary(t *testing.T) {
	s := NewSkillExtractor(nil, WithVocabulary([]string{"Zig", " ", "Elixir"}))
	got := s.Extract("Hobby projects in zig and Python")
	if !reflect.DeepEqual(got, []string{"Zig"}) {
		t.Errorf("got %v", got)
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"kubernetes": "Kubernetes",
		"GRAPHQL":    "Graphql",
		"éclair":     "Éclair",
		"":           "",
	}
	for in, want := range tests {
		if got := capitalize(in); got != want {
			t.Errorf("capitalize(%q)=%q, want %q", in, got, want)
		}
	}
}
