package embedding

import (
	"hash/fnv"
	"strings"
)

// Tokenizer produces the three BERT-style model inputs for text, each padded to maxTokens.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

const (
	clsTokenID = 101
	sepTokenID = 102

	// Word IDs are hashed into [firstWordID, vocabSize) so they never collide
	// with the special and unused slots of a BERT vocabulary.
	firstWordID = 1000
	vocabSize   = 30522

	defaultMaxTokens = 256

	// maxWindows caps how many token windows of one text are run through a model.
	maxWindows = 8
)

// HashTokenizer splits text the same way HashEmbedder does and hashes each word
// into the model vocabulary. It has no vocabulary file, so similar words do not
// share IDs the way WordPiece pieces would.
type HashTokenizer struct{}

// Tokenize returns [CLS] words... [SEP] followed by zero padding. Words past
// maxTokens-2 are dropped.
func (HashTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens < 2 {
		maxTokens = defaultMaxTokens
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = clsTokenID
	attentionMask[0] = 1
	pos := 1
	for _, word := range hashTokens(text) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = wordID(word)
		attentionMask[pos] = 1
		pos++
	}
	inputIDs[pos] = sepTokenID
	attentionMask[pos] = 1
	return inputIDs, attentionMask, tokenTypeIDs
}

func wordID(word string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(word))
	return firstWordID + int64(h.Sum32()%(vocabSize-firstWordID))
}

// tokenWindows splits text into at most maxWindows chunks of size words each.
func tokenWindows(text string, size int) []string {
	words := hashTokens(text)
	if size < 1 {
		size = 1
	}
	var windows []string
	for start := 0; start < len(words) && len(windows) < maxWindows; start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		windows = append(windows, strings.Join(words[start:end], " "))
	}
	return windows
}
