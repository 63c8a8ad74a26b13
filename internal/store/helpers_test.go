package store

import (
	"strings"

	"github.com/a3tai/jorf-reader/internal/gazette"
)

func indexOf(s, sub string) int {
	return strings.Index(s, sub)
}

func gazettePerson(name, series string) gazette.Person {
	return gazette.Person{
		Name:    name,
		Series:  series,
		Dep:     "075",
		Country: "France",
		Date:    "15/03/2020",
	}
}
