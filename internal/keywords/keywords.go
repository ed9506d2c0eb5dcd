// Package keywords extracts the most frequent salient terms from free text such as
// job descriptions and CV bodies.
package keywords

import (
	"slices"
	"strings"
	"unicode"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultLimit is the number of keywords returned by Extract.
const DefaultLimit = 8

// MinTokenLength is the shortest token that can become a keyword.
const MinTokenLength = 3

// Term is a qualifying token and the number of times it occurred.
type Term struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Extract returns up to DefaultLimit keywords from text, most frequent first.
func Extract(text string) []string {
	return ExtractN(text, DefaultLimit)
}

// ExtractN returns up to limit keywords from text, most frequent first.
// Ties keep the order in which tokens first appeared. A limit of zero or less
// yields an empty result.
func ExtractN(text string, limit int) []string {
	return Tokens(Top(Rank(text), limit))
}

// Top returns the first limit terms of an already ranked slice.
func Top(ranked []Term, limit int) []Term {
	if limit < 0 {
		limit = 0
	}
	return ranked[:min(limit, len(ranked))]
}

// Tokens returns the token of each term, in order. The result is never nil.
func Tokens(terms []Term) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		out = append(out, term.Token)
	}
	return out
}

// Rank returns every qualifying token of text with its count, ordered by
// descending count. Tokens with equal counts stay in first-seen order.
func Rank(text string) []Term {
	counts := orderedmap.New[string, int]()
	for _, token := range tokenize(text) {
		if len(token) < MinTokenLength || IsStopword(token) {
			continue
		}
		n, _ := counts.Get(token)
		counts.Set(token, n+1)
	}

	terms := make([]Term, 0, counts.Len())
	for pair := counts.Oldest(); pair != nil; pair = pair.Next() {
		terms = append(terms, Term{Token: pair.Key, Count: pair.Value})
	}

	// Stable: equal counts must not reorder.
	slices.SortStableFunc(terms, func(a, b Term) int {
		return b.Count - a.Count
	})
	return terms
}

// dottedCapitalI lowercases to "i" followed by a combining dot above, which
// then separates the "i" from the rest of the word.
var dottedCapitalI = strings.NewReplacer("\u0130", "i\u0307")

// tokenize lowercases text, blanks out everything except a-z, 0-9 and
// whitespace, and splits the result on whitespace runs.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, strings.ToLower(dottedCapitalI.Replace(text)))

	return strings.Fields(cleaned)
}
