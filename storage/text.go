package storage

import (
	"strings"

	"github.com/poiesic/beanvault/core"
)

// Stop words to filter out when matching query terms
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// TextPredicate builds a Filter.Where predicate that matches beans whose
// title, summary or gist contains every non-stop-word of the query. Used by
// the text-search variants of the read views.
func TextPredicate(query string) func(*core.Bean) bool {
	queryWords := tokenizeAndFilter(query)
	return func(bean *core.Bean) bool {
		if len(queryWords) == 0 {
			return false
		}

		docWords := tokenizeAndFilter(bean.Title + " " + bean.Summary + " " + bean.Gist)
		docWordSet := make(map[string]bool, len(docWords))
		for _, word := range docWords {
			docWordSet[word] = true
		}

		for _, qWord := range queryWords {
			if !docWordSet[qWord] {
				return false
			}
		}
		return true
	}
}
