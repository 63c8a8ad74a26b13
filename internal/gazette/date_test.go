package gazette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
)

func TestParseDecreeDate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Mercredi 23 juin 2021", "23/06/2021"},
		{"Dimanche 1er août 2021", "01/08/2021"},
		{"1er aout 2021", "01/08/2021"},
		{"Jeudi 6 février 2020", "06/02/2020"},
		{"6 FEVRIER 2020", "06/02/2020"},
		{"31 décembre 2020", "31/12/2020"},
		{"Texte 3 sur 90 17 mars 2020", "17/03/2020"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseDecreeDate(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDecreeDateErrors(t *testing.T) {
	for _, text := range []string{"", "JOURNAL OFFICIEL", "32 mars 2020"} {
		_, err := ParseDecreeDate(text)
		require.Error(t, err, text)
		assert.True(t, jerrors.IsType(err, jerrors.ErrorTypeDateNotFound), text)
	}
}

func TestDecreeDateFromPage(t *testing.T) {
	date, err := DecreeDateFromPage([]string{"Mardi 17 mars 2020 / JOURNAL OFFICIEL"}, "")
	require.NoError(t, err)
	assert.Equal(t, "17/03/2020", date)

	// heading without date, page text has one
	date, err = DecreeDateFromPage([]string{"Sommaire / 12 avril 2020"}, "Sommaire 14 avril 2020")
	require.NoError(t, err)
	assert.Equal(t, "14/04/2020", date)

	_, err = DecreeDateFromPage(nil, "")
	assert.True(t, jerrors.IsType(err, jerrors.ErrorTypeDateNotFound))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "éé...", truncate("ééé", 2))
}
