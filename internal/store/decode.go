package store

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
	"github.com/a3tai/jorf-reader/internal/gazette"
)

var seriesCode = regexp.MustCompile(`^[0-9]{3}$`)

// member is one key/value pair of a JSON object, in document order
type member struct {
	key string
	raw json.RawMessage
}

func members(data []byte) ([]member, error) {
	var out []member
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		out = append(out, member{key: key, raw: raw})
		return nil
	})
	return out, err
}

// isObject reports whether raw is a JSON object and returns its members
func isObject(raw json.RawMessage) ([]member, bool) {
	ms, err := members(raw)
	if err != nil {
		return nil, false
	}
	return ms, true
}

func stringMember(ms []member, key string) (string, bool) {
	for _, m := range ms {
		if m.key != key {
			continue
		}
		var s string
		if err := json.Unmarshal(m.raw, &s); err != nil {
			return "", false
		}
		return s, true
	}
	return "", false
}

func corrupt(file, reason string) error {
	return jerrors.New(jerrors.ErrorTypeCorruptState, reason).WithFile(file)
}

// DecodeRegistry reads a naturalized file. Three shapes are accepted:
//
//	{series: {name: {date, dep, country, ...}}}          current form
//	{name: {date, dep, country}}                          single-series form
//	{series: {"123": {name: {"date"}, "dep", "country"}}} dossier-number form
//
// The single-series form is loaded into defaultSeries, as is a top level
// that only holds dossier-number entries. Every loaded person is validated.
func DecodeRegistry(data []byte, codes []string, defaultSeries string) (*Registry, error) {
	const file = "naturalized"
	reg := NewRegistry(codes)

	top, err := members(data)
	if err != nil {
		return nil, jerrors.Wrap(jerrors.ErrorTypeCorruptState, "naturalized file is not a JSON object", err)
	}

	for _, m := range top {
		inner, ok := isObject(m.raw)
		if !ok {
			return nil, corrupt(file, fmt.Sprintf("value of %q is not an object", m.key))
		}
		if len(inner) == 0 {
			continue
		}

		if _, ok := stringMember(inner, "date"); ok {
			p, err := typedPerson(m.key, defaultSeries, m.raw)
			if err != nil {
				return nil, err
			}
			if err := putLoaded(reg, p); err != nil {
				return nil, err
			}
			continue
		}
		if isDossierEntry(inner) {
			people, err := dossierPersons(defaultSeries, m.key, inner)
			if err != nil {
				return nil, err
			}
			if err := putLoaded(reg, people...); err != nil {
				return nil, err
			}
			continue
		}

		if !seriesCode.MatchString(m.key) {
			return nil, corrupt(file, fmt.Sprintf("%q is neither a series code nor a person", m.key))
		}
		reg.ensure(m.key)
		for _, entry := range inner {
			fields, ok := isObject(entry.raw)
			if !ok {
				return nil, corrupt(file, fmt.Sprintf("series %s: value of %q is not an object", m.key, entry.key))
			}
			if len(fields) == 0 {
				continue
			}
			var people []gazette.Person
			if isDossierEntry(fields) {
				people, err = dossierPersons(m.key, entry.key, fields)
			} else {
				var p gazette.Person
				p, err = typedPerson(entry.key, m.key, entry.raw)
				people = []gazette.Person{p}
			}
			if err != nil {
				return nil, err
			}
			if err := putLoaded(reg, people...); err != nil {
				return nil, err
			}
		}
	}
	return reg, nil
}

func putLoaded(reg *Registry, people ...gazette.Person) error {
	for _, p := range people {
		reg.ensure(p.Series)
		if err := reg.Put(p); err != nil {
			return err
		}
	}
	return nil
}

func typedPerson(name, code string, raw json.RawMessage) (gazette.Person, error) {
	var e personEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return gazette.Person{}, corrupt("naturalized", fmt.Sprintf("series %s: %q: %v", code, name, err))
	}
	p := gazette.Person{
		Name:       name,
		Series:     code,
		Dossier:    e.Dossier,
		Dep:        e.Dep,
		Country:    e.Country,
		BirthPlace: e.BirthPlace,
		Date:       e.Date,
	}
	return p, validatePerson(p)
}

// isDossierEntry detects {name: {"date": d}, ..., "dep": x, "country": y}.
// A person entry carries its own "date" string and is never a bucket.
func isDossierEntry(fields []member) bool {
	if _, ok := stringMember(fields, "date"); ok {
		return false
	}
	for _, f := range fields {
		if _, ok := isObject(f.raw); ok {
			return true
		}
	}
	return false
}

// dossierPersons returns one person per name of a dossier bucket; they
// share the bucket's department and country.
func dossierPersons(code, number string, fields []member) ([]gazette.Person, error) {
	dep, _ := stringMember(fields, "dep")
	country, _ := stringMember(fields, "country")
	var people []gazette.Person
	for _, f := range fields {
		if f.key == "dep" || f.key == "country" {
			continue
		}
		inner, ok := isObject(f.raw)
		if !ok {
			return nil, corrupt("naturalized", fmt.Sprintf("series %s: dossier %s has unexpected key %q", code, number, f.key))
		}
		p := gazette.Person{
			Name:    f.key,
			Series:  code,
			Dossier: code + number,
			Dep:     dep,
			Country: country,
		}
		p.Date, _ = stringMember(inner, "date")
		if err := validatePerson(p); err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, nil
}

func validatePerson(p gazette.Person) error {
	where := fmt.Sprintf("series %s: %q", p.Series, p.Name)
	switch {
	case p.Name == "":
		return corrupt("naturalized", fmt.Sprintf("series %s: entry without a name", p.Series))
	case p.Country == "":
		return corrupt("naturalized", where+": empty country")
	case p.Dep == "":
		return corrupt("naturalized", where+": empty department")
	}
	if _, err := time.Parse(gazette.DateLayout, p.Date); err != nil {
		return corrupt("naturalized", fmt.Sprintf("%s: bad date %q", where, p.Date))
	}
	return nil
}

// DecodeDecreeIndex reads a decrees file, either nested per series
// ({series: {date: path}}) or flat ({date: path}); the flat form is
// assigned to defaultSeries.
func DecodeDecreeIndex(data []byte, defaultSeries string) (*DecreeIndex, error) {
	idx := NewDecreeIndex()
	top, err := members(data)
	if err != nil {
		return nil, jerrors.Wrap(jerrors.ErrorTypeCorruptState, "decrees file is not a JSON object", err)
	}
	for _, m := range top {
		var path string
		if err := json.Unmarshal(m.raw, &path); err == nil {
			idx.Set(defaultSeries, m.key, path)
			continue
		}
		var dates StringIndex
		if err := dates.UnmarshalJSON(m.raw); err != nil {
			return nil, corrupt("decrees", fmt.Sprintf("series %q: %v", m.key, err))
		}
		for _, date := range dates.Keys() {
			p, _ := dates.Get(date)
			idx.Set(m.key, date, p)
		}
	}
	return idx, nil
}

// DecodeWindows reads a decrees-string file ({date: window})
func DecodeWindows(data []byte) (*StringIndex, error) {
	windows := NewStringIndex()
	if err := windows.UnmarshalJSON(data); err != nil {
		return nil, jerrors.Wrap(jerrors.ErrorTypeCorruptState, "decrees string file is malformed", err)
	}
	return windows, nil
}
