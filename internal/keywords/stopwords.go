package keywords

import "slices"

// stopwords are common English function words that never count as keywords.
// The set is built once and never written after package initialization.
var stopwords = func() map[string]struct{} {
	words := []string{
		"the", "and", "a", "to", "of", "in", "for", "on", "with", "is", "are",
		"that", "as", "at", "you", "your", "by", "we", "be", "or", "it",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// IsStopword reports whether word is excluded from keyword candidacy.
// The comparison is exact; callers pass lowercased tokens.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}

// Stopwords returns a sorted copy of the stopword set.
func Stopwords() []string {
	out := make([]string, 0, len(stopwords))
	for w := range stopwords {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}
