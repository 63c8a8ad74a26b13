package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
	"github.com/a3tai/jorf-reader/internal/gazette"
)

func TestDecodeRegistry(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		series  string
		person  string
		dep     string
		dossier string
	}{
		{
			name:   "current form",
			input:  `{"000": {}, "027": {"DUPONT (Jean)": {"date": "15/03/2020", "dep": "075", "country": "France"}}}`,
			series: "027",
			person: "DUPONT (Jean)",
			dep:    "075",
		},
		{
			name:   "single series form",
			input:  `{"DUPONT (Jean)": {"date": "15/03/2020", "dep": "075", "country": "France"}}`,
			series: "027",
			person: "DUPONT (Jean)",
			dep:    "075",
		},
		{
			name:    "dossier number form",
			input:   `{"031": {"123": {"DUPONT (Jean)": {"date": "15/03/2020"}, "dep": "075", "country": "France"}}}`,
			series:  "031",
			person:  "DUPONT (Jean)",
			dep:     "075",
			dossier: "031123",
		},
		{
			name:   "series outside the default set",
			input:  `{"305": {"MARTIN (Paul)": {"date": "02/04/2020", "dep": "013", "country": "Maroc"}}}`,
			series: "305",
			person: "MARTIN (Paul)",
			dep:    "013",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := DecodeRegistry([]byte(tt.input), DefaultSeriesCodes(), "027")
			require.NoError(t, err)
			p, ok := reg.Get(tt.series, tt.person)
			require.True(t, ok)
			assert.Equal(t, tt.series, p.Series)
			assert.Equal(t, tt.dep, p.Dep)
			assert.Equal(t, tt.dossier, p.Dossier)
			assert.Equal(t, 1, reg.Total())
		})
	}
}

func TestDecodeRegistryRejectsInvalidPersons(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not an object", `[]`},
		{"series is a list", `{"027": []}`},
		{"empty country", `{"027": {"X (Y)": {"date": "15/03/2020", "dep": "075", "country": ""}}}`},
		{"empty department", `{"027": {"X (Y)": {"date": "15/03/2020", "dep": "", "country": "France"}}}`},
		{"bad date", `{"027": {"X (Y)": {"date": "2020-03-15", "dep": "075", "country": "France"}}}`},
		{"unknown top key", `{"abc": {"X (Y)": {}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRegistry([]byte(tt.input), DefaultSeriesCodes(), "027")
			require.Error(t, err)
			assert.True(t, jerrors.IsType(err, jerrors.ErrorTypeCorruptState))
		})
	}
}

func TestDecodeDecreeIndex(t *testing.T) {
	nested := `{"027": {"15/03/2020": "a.pdf", "02/04/2020": "b.pdf"}, "301": {"02/04/2020": "b.pdf"}}`
	idx, err := DecodeDecreeIndex([]byte(nested), "027")
	require.NoError(t, err)
	assert.Equal(t, []string{"027", "301"}, idx.Codes())
	assert.Equal(t, []string{"15/03/2020", "02/04/2020"}, idx.Decrees("027").Keys())
	assert.True(t, idx.HasPath("301", "b.pdf"))
	assert.False(t, idx.HasPath("301", "a.pdf"))

	date, ok := idx.DateOfPath("a.pdf")
	require.True(t, ok)
	assert.Equal(t, "15/03/2020", date)

	_, err = DecodeDecreeIndex([]byte(`{"027": 5}`), "027")
	assert.True(t, jerrors.IsType(err, jerrors.ErrorTypeCorruptState))
}

func TestRegistryKeepsInsertionOrder(t *testing.T) {
	input := `{"027": {"ZOLA (Émile)": {"date": "15/03/2020", "dep": "075", "country": "France"},` +
		`"ABEL (Jean)": {"date": "15/03/2020", "dep": "075", "country": "France"}}}`
	reg, err := DecodeRegistry([]byte(input), []string{"027"}, "027")
	require.NoError(t, err)

	people := reg.People("027")
	require.Len(t, people, 2)
	assert.Equal(t, "ZOLA (Émile)", people[0].Name)
	assert.Equal(t, "ABEL (Jean)", people[1].Name)

	out, err := reg.MarshalJSON()
	require.NoError(t, err)
	assert.Less(t, indexOf(string(out), "ZOLA"), indexOf(string(out), "ABEL"))
}

func TestRegistryPut(t *testing.T) {
	reg := NewRegistry([]string{"027"})
	assert.Error(t, reg.Put(gazettePerson("X (Y)", "999")))
	assert.Error(t, reg.Put(gazettePerson("", "027")))

	require.NoError(t, reg.Put(gazettePerson("A (B)", "027")))
	require.NoError(t, reg.Put(gazettePerson("C (D)", "027")))
	replaced := gazettePerson("A (B)", "027")
	replaced.Dep = "013"
	require.NoError(t, reg.Put(replaced))

	people := reg.People("027")
	require.Len(t, people, 2)
	assert.Equal(t, "A (B)", people[0].Name)
	assert.Equal(t, "013", people[0].Dep)
}

func TestDecodeRegistryDossierBucketWithSeveralNames(t *testing.T) {
	input := `{"027": {"123": {"DUPONT (Jean)": {"date": "15/03/2020"},` +
		`"MARTIN (Paul)": {"date": "02/04/2020"}, "dep": "075", "country": "France"}}}`
	reg, err := DecodeRegistry([]byte(input), DefaultSeriesCodes(), "027")
	require.NoError(t, err)
	require.Equal(t, 2, reg.Total())

	people := reg.People("027")
	require.Len(t, people, 2)
	assert.Equal(t, "DUPONT (Jean)", people[0].Name)
	assert.Equal(t, "15/03/2020", people[0].Date)
	assert.Equal(t, "MARTIN (Paul)", people[1].Name)
	assert.Equal(t, "02/04/2020", people[1].Date)
	for _, p := range people {
		assert.Equal(t, "027123", p.Dossier)
		assert.Equal(t, "075", p.Dep)
		assert.Equal(t, "France", p.Country)
	}
}

func TestDecodeRegistryReadsMarshaledRegistry(t *testing.T) {
	reg := NewRegistry(DefaultSeriesCodes())
	require.NoError(t, reg.Put(gazette.Person{
		Name: "DUPONT (Jean)", Series: "027", Dep: "075", Country: "France", Date: "15/03/2020",
	}))
	out, err := reg.MarshalJSON()
	require.NoError(t, err)

	loaded, err := DecodeRegistry(out, DefaultSeriesCodes(), "027")
	require.NoError(t, err)
	p, ok := loaded.Get("027", "DUPONT (Jean)")
	require.True(t, ok)
	assert.Equal(t, "075", p.Dep)
	assert.Equal(t, "France", p.Country)
	assert.Equal(t, "15/03/2020", p.Date)
}
