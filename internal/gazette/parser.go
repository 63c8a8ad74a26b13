package gazette

import (
	"fmt"
	"regexp"
	"strings"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
)

// DefaultYearToken is the dossier year prefix of the 2020 naturalization batches
const DefaultYearToken = "2020X"

// personPattern matches one entry: an upper-case name with parenthesized
// first names, a lazy middle, and the residence department.
var personPattern = regexp.MustCompile(
	`([A-Z\-\s]*\s\([a-zA-Z\s,\-À-ÿ’]*\),)(.*?)(,\sdpt\s[0-9]{2,3}|,\sdép\.\s[0-9]{2,3})`)

var birthClause = regexp.MustCompile(`née? le [0-9]{2}/[0-9]{2}/[0-9]{4} à`)

// ParseResult holds the persons recovered from one window
type ParseResult struct {
	Persons    []Person
	Candidates int
	Skipped    int
	Errors     []error
}

// Parser extracts person entries from naturalization windows
type Parser struct {
	yearToken string
	tag       string
}

// NewParser creates a parser for dossiers numbered "<yearToken> <series>..."
func NewParser(yearToken string) (*Parser, error) {
	yearToken = strings.TrimSpace(yearToken)
	if yearToken == "" {
		return nil, fmt.Errorf("year token cannot be empty")
	}
	return &Parser{
		yearToken: yearToken,
		tag:       "), NAT, " + yearToken + " ",
	}, nil
}

// YearToken returns the dossier year prefix
func (p *Parser) YearToken() string {
	return p.yearToken
}

// Candidates returns every entry-shaped span of window
func (p *Parser) Candidates(window string) []string {
	return personPattern.FindAllString(window, -1)
}

// Parse returns the persons of the given series found in window, stamped
// with the decree date. Malformed candidates are counted and skipped.
func (p *Parser) Parse(window, date, series string) *ParseResult {
	result := &ParseResult{}
	for _, candidate := range p.Candidates(window) {
		result.Candidates++
		if !strings.Contains(candidate, p.tag+series) {
			continue
		}

		person, err := p.parseCandidate(candidate, series)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, err)
			continue
		}
		person.Date = date
		result.Persons = append(result.Persons, person)
	}
	return result
}

func (p *Parser) parseCandidate(candidate, series string) (Person, error) {
	malformed := func(reason string) (Person, error) {
		return Person{}, jerrors.New(jerrors.ErrorTypeMalformedCandidate, reason).
			WithContext(truncate(strings.TrimSpace(candidate), 120))
	}

	tagIdx := strings.LastIndex(candidate, p.tag)
	dossier, _, _ := strings.Cut(candidate[tagIdx+len(p.tag):], ",")
	dossier = strings.TrimSpace(dossier)
	if len(dossier) < 3 {
		return malformed("dossier number too short")
	}
	if dossier[:3] != series {
		// two entries merged by a missing department marker
		return malformed(fmt.Sprintf("last dossier %s is not in series %s", dossier, series))
	}

	name, _, found := strings.Cut(candidate, ", né")
	if !found {
		return malformed("no birth marker after name")
	}
	name = strings.TrimSpace(name)

	dep := departmentOf(candidate)
	if dep == "" {
		return malformed("no department")
	}

	births := birthClause.FindAllStringIndex(candidate, -1)
	if births == nil {
		return malformed("no birth date clause")
	}
	birth := strings.TrimSpace(candidate[births[len(births)-1][1]:])
	birth, _, _ = strings.Cut(birth, ")")
	place, country, found := strings.Cut(birth, "(")
	if !found || strings.Contains(country, "(") {
		return malformed("birth place is not of the form place (country)")
	}
	country = strings.TrimSpace(country)
	if isDigits(country) {
		country = FranceCountry
	}
	if country == "" {
		return malformed("empty birth country")
	}

	return Person{
		Name:       name,
		Series:     dossier[:3],
		Dossier:    dossier,
		Dep:        dep,
		Country:    country,
		BirthPlace: strings.TrimSpace(place),
	}, nil
}

// departmentOf returns the code after the last ", dép." or ", dpt" marker
func departmentOf(candidate string) string {
	idx, width := -1, 0
	for _, marker := range []string{", dép.", ", dpt"} {
		if i := strings.LastIndex(candidate, marker); i > idx {
			idx, width = i, len(marker)
		}
	}
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(candidate[idx+width:])
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
