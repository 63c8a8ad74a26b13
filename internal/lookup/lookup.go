// Package lookup finds naturalized persons by name in a series registry.
//
// Matching is a case-insensitive substring test on the last name and on the
// parenthesized first names, so "Jean" also matches "Jean-Pierre" and
// "Dupont" matches "DUPONTEL". Results are first-match in registry insertion
// order: series first, then persons within a series.
package lookup

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/a3tai/jorf-reader/internal/gazette"
	"github.com/a3tai/jorf-reader/internal/store"
)

// NotFoundMessage is shown when a search has no result
const NotFoundMessage = "The simple search has not resulted in any result. " +
	"Make sure name is spelled right. If name is spelled right, then the person has not yet been naturalized."

// Query describes a person search
type Query struct {
	FirstName string
	LastName  string
	// Series is scanned alone when SeriesKnown is set.
	Series      string
	SeriesKnown bool
}

var fold = cases.Fold()

// Search returns the first person matching q
func Search(reg *store.Registry, q Query) (gazette.Person, bool) {
	matches := Find(reg, q, 1)
	if len(matches) == 0 {
		return gazette.Person{}, false
	}
	return matches[0], true
}

// Find returns up to limit persons matching q in lookup order.
// A limit of zero or less returns every match.
func Find(reg *store.Registry, q Query, limit int) []gazette.Person {
	first := fold.String(strings.TrimSpace(q.FirstName))
	last := fold.String(strings.TrimSpace(q.LastName))

	codes := reg.Codes()
	if q.SeriesKnown {
		codes = []string{q.Series}
	}

	var out []gazette.Person
	for _, code := range codes {
		for _, p := range reg.People(code) {
			if !matches(p, first, last) {
				continue
			}
			out = append(out, p)
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
	}
	return out
}

func matches(p gazette.Person, first, last string) bool {
	return strings.Contains(fold.String(p.FirstNames()), first) &&
		strings.Contains(fold.String(p.LastName()), last)
}
