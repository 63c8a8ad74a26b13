package gazette

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Markers holds the literal headings and patterns that delimit the
// naturalization section of a gazette issue. Layout changes in the
// Journal Officiel are absorbed by editing this table, not the code.
type Markers struct {
	// Masthead is the running page heading; page text before its last
	// occurrence is dropped.
	Masthead string `yaml:"masthead"`

	// Start is the pattern whose first match opens the window.
	Start string `yaml:"start"`

	// Page-one literals deciding which end marker applies.
	Amendment      string `yaml:"amendment"`
	Naturalization string `yaml:"naturalization"`
	Rescinding     string `yaml:"rescinding"`
	Announcements  string `yaml:"announcements"`

	// AnnouncementsEnd is the literal closing the window when the issue
	// carries an announcements section.
	AnnouncementsEnd string `yaml:"announcements_end"`

	// ISSN is the generic end pattern used when nothing else applies.
	ISSN string `yaml:"issn"`

	// DecreeSection heads the summary of decrees on page one.
	DecreeSection string `yaml:"decree_section"`
}

// DefaultMarkers returns the markers observed in 2020-2021 JORF issues
func DefaultMarkers() Markers {
	return Markers{
		Masthead:         "JOURNAL OFFICIEL DE LA RÉPUBLIQUE FRANÇAISE ",
		Start:            `(Décret\sdu)(.*?)(\sNOR)`,
		Amendment:        "Décret modificatif du",
		Naturalization:   "portant naturalisation",
		Rescinding:       "rapportant un décret de naturalisation",
		Announcements:    "Annonces",
		AnnouncementsEnd: "Les annonces sont reçues à la direction de l’information légale et administrative",
		ISSN:             `ISSN\s[0-9]*\-{0,1}[0-9]*`,
		DecreeSection:    "Naturalisations et réintégrations",
	}
}

// LoadMarkers reads a YAML marker table. Keys missing from the file keep
// their default value.
func LoadMarkers(path string) (Markers, error) {
	m := DefaultMarkers()
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("cannot read markers file: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("cannot parse markers file %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return m, fmt.Errorf("invalid markers file %s: %w", path, err)
	}
	return m, nil
}

// Validate checks that every literal is set and every pattern compiles
func (m Markers) Validate() error {
	literals := map[string]string{
		"amendment":         m.Amendment,
		"naturalization":    m.Naturalization,
		"rescinding":        m.Rescinding,
		"announcements":     m.Announcements,
		"announcements_end": m.AnnouncementsEnd,
		"decree_section":    m.DecreeSection,
	}
	for name, value := range literals {
		if value == "" {
			return fmt.Errorf("marker %q cannot be empty", name)
		}
	}
	if _, err := regexp.Compile(m.Start); err != nil {
		return fmt.Errorf("start pattern: %w", err)
	}
	if _, err := regexp.Compile(m.ISSN); err != nil {
		return fmt.Errorf("issn pattern: %w", err)
	}
	return nil
}
