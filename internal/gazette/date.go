package gazette

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/goodsign/monday"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
)

// DateLayout is the normalized decree date format
const DateLayout = "02/01/2006"

var frenchDate = regexp.MustCompile(
	`(?i)(\d{1,2})(?:er)?\s+(janvier|f[ée]vrier|mars|avril|mai|juin|juillet|ao[ûu]t|septembre|octobre|novembre|d[ée]cembre)\s+(\d{4})`)

var accentedMonths = strings.NewReplacer("fevrier", "février", "aout", "août", "decembre", "décembre")

// ParseDecreeDate finds the first French long date ("23 juin 2021",
// "1er août 2021") in text and returns it as DD/MM/YYYY.
func ParseDecreeDate(text string) (string, error) {
	m := frenchDate.FindStringSubmatch(text)
	if m == nil {
		return "", jerrors.New(jerrors.ErrorTypeDateNotFound, "no decree date in text").
			WithContext(truncate(text, 80))
	}

	month := accentedMonths.Replace(strings.ToLower(m[2]))
	value := fmt.Sprintf("%s %s %s", m[1], month, m[3])
	t, err := monday.ParseInLocation("2 January 2006", value, time.UTC, monday.LocaleFrFR)
	if err != nil {
		return "", jerrors.Wrap(jerrors.ErrorTypeDateNotFound, "cannot parse decree date", err).
			WithContext(value)
	}
	return t.Format(DateLayout), nil
}

// DecreeDateFromPage reads the date from the issue heading: the first
// fragment of page one, cut at the first "/". The whole normalized page is
// searched when the heading carries no date.
func DecreeDateFromPage(fragments []string, normalizedPage string) (string, error) {
	if len(fragments) > 0 {
		heading, _, _ := strings.Cut(fragments[0], "/")
		if date, err := ParseDecreeDate(heading); err == nil {
			return date, nil
		}
	}
	return ParseDecreeDate(normalizedPage)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
