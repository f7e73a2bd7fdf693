package search

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortPage reorders the records of one page. Relevance keeps the retrieval
// order. The sort never looks beyond the page it is given.
func sortPage(records []Record, field SortField, order SortOrder) {
	var compare func(a, b Record) int

	switch field {
	case SortByName:
		collator := newCollator()
		compare = func(a, b Record) int {
			if c := collator.CompareString(a.LastName, b.LastName); c != 0 {
				return c
			}
			return collator.CompareString(a.FirstName, b.FirstName)
		}
	case SortByCity:
		collator := newCollator()
		compare = func(a, b Record) int {
			return collator.CompareString(a.City, b.City)
		}
	case SortByYearsOfExperience:
		compare = func(a, b Record) int {
			return cmp.Compare(a.YearsOfExperience, b.YearsOfExperience)
		}
	default:
		return
	}

	direction := 1
	if order == SortDescending {
		direction = -1
	}

	slices.SortStableFunc(records, func(a, b Record) int {
		return direction * compare(a, b)
	})
}

// Collators keep internal buffers, so each sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}
