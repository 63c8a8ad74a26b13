package gazette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser(DefaultYearToken)
	require.NoError(t, err)
	return p
}

func TestParseSingleEntry(t *testing.T) {
	p := newTestParser(t)
	window := "DUPONT (Jean), né le 01/01/1990 à (75), NAT, 2020X 027, dép. 075"

	result := p.Parse(window, "15/03/2020", "027")
	require.Len(t, result.Persons, 1)
	assert.Equal(t, Person{
		Name:    "DUPONT (Jean)",
		Series:  "027",
		Dossier: "027",
		Dep:     "075",
		Country: "France",
		Date:    "15/03/2020",
	}, result.Persons[0])
	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 0, result.Skipped)
}

func TestParseWindow(t *testing.T) {
	p := newTestParser(t)
	window := "Décret du 12 mars 2020 portant naturalisation NOR : INTN2000001D " +
		"Article 1er Sont naturalisés français : " +
		"ABDOU (Fatima, Leïla), née le 03/04/1985 à Oran (Algérie), NAT, 2020X 027456, dép. 069 " +
		"VILLARREAL LARRAURI (Alejandro), né le 12/12/1980 à Monterrey (Mexique), NAT, 2020X 031002, dép. 013 " +
		"BEN-SAID (Karim), né le 05/06/1975 à Lyon (69), NAT, 2020X 027457, dpt 069 " +
		"O’NEIL (Seán), né le 01/02/1990 à Dublin (Irlande), NAT, 2019X 027001, dép. 075 "

	result := p.Parse(window, "15/03/2020", "027")
	require.Len(t, result.Persons, 2)

	first := result.Persons[0]
	assert.Equal(t, "ABDOU (Fatima, Leïla)", first.Name)
	assert.Equal(t, "Algérie", first.Country)
	assert.Equal(t, "Oran", first.BirthPlace)
	assert.Equal(t, "069", first.Dep)
	assert.Equal(t, "027456", first.Dossier)
	assert.Equal(t, "027", first.Series)

	second := result.Persons[1]
	assert.Equal(t, "BEN-SAID (Karim)", second.Name)
	assert.Equal(t, "France", second.Country)
	assert.Equal(t, "Lyon", second.BirthPlace)
	assert.Equal(t, "069", second.Dep)

	other := p.Parse(window, "15/03/2020", "031")
	require.Len(t, other.Persons, 1)
	assert.Equal(t, "VILLARREAL LARRAURI (Alejandro)", other.Persons[0].Name)
	assert.Equal(t, "Mexique", other.Persons[0].Country)
}

func TestParseConfigurableYearToken(t *testing.T) {
	window := "MARTIN (Paul), né le 01/02/1990 à Rabat (Maroc), NAT, 2021X 027001, dép. 075"

	assert.Empty(t, newTestParser(t).Parse(window, "01/06/2021", "027").Persons)

	p, err := NewParser("2021X")
	require.NoError(t, err)
	assert.Equal(t, "2021X", p.YearToken())
	result := p.Parse(window, "01/06/2021", "027")
	require.Len(t, result.Persons, 1)
	assert.Equal(t, "Maroc", result.Persons[0].Country)
}

func TestParseSkipsMalformedCandidates(t *testing.T) {
	p := newTestParser(t)
	window := "DUPONT (Jean), né à Paris (75), NAT, 2020X 027001, dép. 075 " +
		"MARTIN (Paul), né le 01/02/1990 à Rabat (), NAT, 2020X 027002, dép. 075 " +
		"DURAND (Luc), né le 01/02/1990 à Lille (59), NAT, 2020X 027003, dép. 059"

	result := p.Parse(window, "15/03/2020", "027")
	require.Len(t, result.Persons, 1)
	assert.Equal(t, "DURAND (Luc)", result.Persons[0].Name)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 2)
	for _, err := range result.Errors {
		assert.True(t, jerrors.IsType(err, jerrors.ErrorTypeMalformedCandidate))
	}
}

func TestParseCountsMergedEntryOfAnotherSeries(t *testing.T) {
	p := newTestParser(t)
	window := "DUPONT (Jean), né le 01/01/1990 à Paris (75), NAT, 2020X 027001 " +
		"MARTIN (Paul), né le 01/02/1990 à Rabat (Maroc), NAT, 2020X 031002, dép. 075"

	result := p.Parse(window, "15/03/2020", "027")
	assert.Empty(t, result.Persons)
	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.True(t, jerrors.IsType(result.Errors[0], jerrors.ErrorTypeMalformedCandidate))
}

func TestParseEmptyWindow(t *testing.T) {
	result := newTestParser(t).Parse("", "15/03/2020", "027")
	assert.Empty(t, result.Persons)
	assert.Zero(t, result.Candidates)
}

func TestNewParserRejectsEmptyToken(t *testing.T) {
	_, err := NewParser("  ")
	assert.Error(t, err)
}

func TestCountryRule(t *testing.T) {
	p := newTestParser(t)
	tests := []struct {
		birth   string
		country string
	}{
		{"Paris (75)", "France"},
		{"Cayenne (973)", "France"},
		{"Tunis (Tunisie)", "Tunisie"},
		{"Kinshasa (République démocratique du Congo)", "République démocratique du Congo"},
	}

	for _, tt := range tests {
		t.Run(tt.birth, func(t *testing.T) {
			window := "DUPONT (Jean), né le 01/01/1990 à " + tt.birth + ", NAT, 2020X 027123, dép. 075"
			result := p.Parse(window, "15/03/2020", "027")
			require.Len(t, result.Persons, 1)
			assert.Equal(t, tt.country, result.Persons[0].Country)
		})
	}
}

func TestPersonNames(t *testing.T) {
	tests := []struct {
		name  string
		last  string
		first string
	}{
		{"DUPONT (Jean)", "DUPONT", "Jean"},
		{"VILLARREAL LARRAURI (Alejandro)", "VILLARREAL LARRAURI", "Alejandro"},
		{"ABDOU (Fatima, Leïla)", "ABDOU", "Fatima, Leïla"},
		{"SANSPRENOM", "SANSPRENOM", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Person{Name: tt.name}
			assert.Equal(t, tt.last, p.LastName())
			assert.Equal(t, tt.first, p.FirstNames())
		})
	}
}
