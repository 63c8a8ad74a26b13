package gazette

import "strings"

// FranceCountry is the country recorded for people born in a French department
const FranceCountry = "France"

// Person is one naturalized person as printed in a decree
type Person struct {
	// Name is the printed form "LASTNAME (Firstname, Firstname)".
	Name       string `json:"name"`
	Series     string `json:"series"`
	Dossier    string `json:"dossier,omitempty"`
	Dep        string `json:"dep"`
	Country    string `json:"country"`
	BirthPlace string `json:"birth_place,omitempty"`
	Date       string `json:"date"`
}

// LastName returns the part of the name before the first parenthesis
func (p Person) LastName() string {
	last, _, _ := strings.Cut(p.Name, "(")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(last), ","))
}

// FirstNames returns the parenthesized first names, comma separated
func (p Person) FirstNames() string {
	idx := strings.LastIndex(p.Name, "(")
	if idx < 0 {
		return ""
	}
	first := strings.TrimSpace(p.Name[idx+1:])
	first = strings.TrimRight(first, "),")
	return strings.TrimSpace(first)
}
