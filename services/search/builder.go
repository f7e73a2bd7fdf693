package search

import (
	"strings"
	"unicode"

	"github.com/meghashyamc/advocates/db/advocatedb"
)

// Strategy is the retrieval path chosen for a query. It only labels the
// choice; the predicate carries everything the store needs.
type Strategy string

const (
	StrategyPlain      Strategy = "plain"
	StrategyRanked     Strategy = "ranked"
	StrategyTags       Strategy = "tags"
	StrategyRankedTags Strategy = "ranked_tags"
)

// BuildTextQuery turns a raw search string into AND-joined terms. Every word
// but the last must match exactly; the last word matches as a prefix since
// it is usually still being typed.
func BuildTextQuery(raw string) advocatedb.TextQuery {
	words := strings.Fields(raw)
	terms := make([]advocatedb.Term, 0, len(words))
	for _, word := range words {
		if !hasSearchableRune(word) {
			continue
		}
		terms = append(terms, advocatedb.Term{Text: word})
	}
	if len(terms) == 0 {
		return advocatedb.TextQuery{}
	}
	terms[len(terms)-1].Prefix = true

	return advocatedb.TextQuery{Terms: terms}
}

func hasSearchableRune(word string) bool {
	return strings.IndexFunc(word, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

// normalizeTags trims tags and drops blanks and repeats, keeping first
// occurrences in order.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	return normalized
}

// buildPredicate is the only place a filter is built. Its result is passed
// unchanged to both the page and the count query.
func buildPredicate(term string, tags []string) advocatedb.Predicate {
	return advocatedb.NewPredicate(BuildTextQuery(term), normalizeTags(tags))
}

func selectStrategy(predicate advocatedb.Predicate) (Strategy, advocatedb.Order) {
	switch {
	case predicate.HasText() && predicate.HasTags():
		return StrategyRankedTags, advocatedb.OrderByRelevance
	case predicate.HasText():
		return StrategyRanked, advocatedb.OrderByRelevance
	case predicate.HasTags():
		return StrategyTags, advocatedb.OrderByID
	default:
		return StrategyPlain, advocatedb.OrderByID
	}
}
