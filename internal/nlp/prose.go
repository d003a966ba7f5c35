package nlp

import (
	"fmt"

	"github.com/jdkato/prose/v2"
)

// ProseTagger tags English text with prose's averaged perceptron model.
// The model is embedded in the library, so construction needs no files.
type ProseTagger struct{}

// NewProseTagger returns a tagger backed by prose.
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// Tag tokenizes and tags text. Entity extraction and sentence segmentation are disabled.
func (p *ProseTagger) Tag(text string) ([]Token, error) {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("failed to tag text: %w", err)
	}
	ptoks := doc.Tokens()
	tokens := make([]Token, len(ptoks))
	for i, tok := range ptoks {
		tokens[i] = Token{Text: tok.Text, Tag: tok.Tag}
	}
	return tokens, nil
}
