package nlp

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
)

var (
	stopwordsOnce sync.Once
	stopwords     analysis.TokenMap
)

// Stopwords returns the English stop-word set. The returned map must not be modified.
func Stopwords() map[string]bool {
	stopwordsOnce.Do(func() {
		stopwords = mustLoadTokenMap(en.EnglishStopWords)
	})
	return stopwords
}

// mustLoadTokenMap parses a compiled-in word list. It panics when the list
// fails to parse or is empty, since skill filtering depends on it.
func mustLoadTokenMap(data []byte) analysis.TokenMap {
	tm := analysis.NewTokenMap()
	if err := tm.LoadBytes(data); err != nil {
		panic(fmt.Sprintf("nlp: load stop words: %v", err))
	}
	if len(tm) == 0 {
		panic("nlp: stop word list is empty")
	}
	return tm
}

// IsStopword reports whether word, compared case-insensitively, is an English stop word.
func IsStopword(word string) bool {
	return Stopwords()[strings.ToLower(word)]
}
