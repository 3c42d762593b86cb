package stats

import (
	_ "embed"
	"strings"
)

//go:embed stop_words.txt
var stopWordsData string

var stopWords = initStopWords()

func initStopWords() map[string]struct{} {
	lines := strings.Split(stopWordsData, "\n")
	words := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		word := strings.TrimSpace(line)
		if word != "" {
			words[word] = struct{}{}
		}
	}
	return words
}

// IsStopWord reports whether w is an English stop word.
// w must already be lower-cased.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}
