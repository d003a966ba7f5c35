package nlp

import "testing"

func TestIsStopword(t *testing.T) {
	for _, w := range []string{"the", "And", "with", "OF"} {
		if !IsStopword(w) {
			t.Errorf("%q should be a stop word", w)
		}
	}
	for _, w := range []string{"kubernetes", "python", "leadership"} {
		if IsStopword(w) {
			t.Errorf("%q should not be a stop word", w)
		}
	}
}

func TestStopwordsLoaded(t *testing.T) {
	words := Stopwords()
	if len(words) < 100 {
		t.Errorf("stop word set has %d entries, want the full English list", len(words))
	}
	if !words["the"] {
		t.Error(`stop word set is missing "the"`)
	}
}

func TestMustLoadTokenMap_EmptyListPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for an empty word list")
		}
	}()
	mustLoadTokenMap([]byte("# only a comment\n"))
}

func TestIsNoun(t *testing.T) {
	tests := []struct {
		tag  string
		want bool
	}{
		{"NN", true},
		{"NNP", true},
		{"NNS", false},
		{"VB", false},
		{"JJ", false},
	}
	for _, tt := range tests {
		if got := IsNoun(tt.tag); got != tt.want {
			t.Errorf("IsNoun(%q)=%v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestProseTagger_Tag(t *testing.T) {
	tokens, err := NewProseTagger().Tag("Experienced with Kubernetes and distributed systems")
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) == 0 {
		t.Fatal("expected tokens")
	}
	found := false
	for _, tok := range tokens {
		if tok.Tag == "" {
			t.Errorf("token %q has no tag", tok.Text)
		}
		if tok.Text == "Kubernetes" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a Kubernetes token, got %+v", tokens)
	}
}

func TestProseTagger_Empty(t *testing.T) {
	tokens, err := NewProseTagger().Tag("")
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 0 {
		t.Errorf("expected no tokens, got %+v", tokens)
	}
}
