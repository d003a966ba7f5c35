// Package nlp wraps tokenization, part-of-speech tagging and the English
// stop-word list used by skill extraction.
package nlp

// Token is one word of tagged text. Tag is a Penn Treebank tag such as NN or NNP.
type Token struct {
	Text string
	Tag  string
}

// Tagger tokenizes text and tags each token with its part of speech.
type Tagger interface {
	Tag(text string) ([]Token, error)
}

// IsNoun reports whether tag is a singular common or proper noun (NN, NNP).
func IsNoun(tag string) bool {
	return tag == "NN" || tag == "NNP"
}
