package advocatedb

import "strings"

// Term is one word of a text query. Prefix terms match any token that
// starts with Text; the others must match a token exactly.
type Term struct {
	Text   string
	Prefix bool
}

// TextQuery is a conjunction of terms.
type TextQuery struct {
	Terms []Term
}

func (q TextQuery) IsEmpty() bool {
	return len(q.Terms) == 0
}

// FTS5 renders the query as an FTS5 MATCH expression. Each term becomes a
// quoted string so user input is never parsed as FTS5 operators.
func (q TextQuery) FTS5() string {
	parts := make([]string, 0, len(q.Terms))
	for _, term := range q.Terms {
		part := `"` + strings.ReplaceAll(term.Text, `"`, `""`) + `"`
		if term.Prefix {
			part += "*"
		}
		parts = append(parts, part)
	}

	return strings.Join(parts, " AND ")
}

// Predicate is the filter shared by a page fetch and its count. The zero
// value matches every advocate.
type Predicate struct {
	text TextQuery
	tags []string
}

func NewPredicate(text TextQuery, tags []string) Predicate {
	predicate := Predicate{text: TextQuery{Terms: append([]Term(nil), text.Terms...)}}
	if len(tags) > 0 {
		predicate.tags = append([]string(nil), tags...)
	}

	return predicate
}

func (p Predicate) Text() TextQuery { return p.text }

// Tags returns the specialties of which an advocate needs at least one.
func (p Predicate) Tags() []string { return p.tags }

func (p Predicate) HasText() bool { return !p.text.IsEmpty() }

func (p Predicate) HasTags() bool { return len(p.tags) > 0 }
