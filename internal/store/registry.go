package store

import (
	"bytes"
	"fmt"

	"github.com/a3tai/jorf-reader/internal/gazette"
)

// DefaultSeriesCodes returns the series the registry is created with:
// 000 to 054 plus the special series 300 and 301.
func DefaultSeriesCodes() []string {
	codes := make([]string, 0, 57)
	for i := 0; i <= 54; i++ {
		codes = append(codes, fmt.Sprintf("%03d", i))
	}
	return append(codes, "300", "301")
}

// Registry maps series code -> printed name -> person. Iteration follows
// insertion order at both levels, so lookups scanning it are reproducible.
type Registry struct {
	codes  []string
	series map[string]*series
}

type series struct {
	names  []string
	people map[string]gazette.Person
}

// NewRegistry creates a registry with an empty mapping for every code
func NewRegistry(codes []string) *Registry {
	r := &Registry{series: make(map[string]*series, len(codes))}
	for _, code := range codes {
		r.ensure(code)
	}
	return r
}

func (r *Registry) ensure(code string) *series {
	s, ok := r.series[code]
	if !ok {
		s = &series{people: make(map[string]gazette.Person)}
		r.series[code] = s
		r.codes = append(r.codes, code)
	}
	return s
}

// AddSeries registers code with an empty mapping if it is not known yet
func (r *Registry) AddSeries(code string) {
	r.ensure(code)
}

// Codes returns the series codes in insertion order
func (r *Registry) Codes() []string {
	out := make([]string, len(r.codes))
	copy(out, r.codes)
	return out
}

// Has reports whether code is a registered series
func (r *Registry) Has(code string) bool {
	_, ok := r.series[code]
	return ok
}

// Put inserts or replaces the person keyed by name within its series.
// A replaced person keeps its position.
func (r *Registry) Put(p gazette.Person) error {
	s, ok := r.series[p.Series]
	if !ok {
		return fmt.Errorf("unknown series %q", p.Series)
	}
	if p.Name == "" {
		return fmt.Errorf("person without a name in series %s", p.Series)
	}
	if _, exists := s.people[p.Name]; !exists {
		s.names = append(s.names, p.Name)
	}
	s.people[p.Name] = p
	return nil
}

// Get returns the person stored under name in series code
func (r *Registry) Get(code, name string) (gazette.Person, bool) {
	s, ok := r.series[code]
	if !ok {
		return gazette.Person{}, false
	}
	p, ok := s.people[name]
	return p, ok
}

// People returns the persons of series code in insertion order
func (r *Registry) People(code string) []gazette.Person {
	s, ok := r.series[code]
	if !ok {
		return nil
	}
	out := make([]gazette.Person, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.people[name])
	}
	return out
}

// Len returns the number of persons in series code
func (r *Registry) Len(code string) int {
	if s, ok := r.series[code]; ok {
		return len(s.names)
	}
	return 0
}

// Total returns the number of persons across all series
func (r *Registry) Total() int {
	total := 0
	for _, s := range r.series {
		total += len(s.names)
	}
	return total
}

// personEntry is the persisted form of a person; series and name are keys
type personEntry struct {
	Date       string `json:"date"`
	Dep        string `json:"dep"`
	Country    string `json:"country"`
	BirthPlace string `json:"birth_place,omitempty"`
	Dossier    string `json:"dossier,omitempty"`
}

func entryOf(p gazette.Person) personEntry {
	return personEntry{
		Date:       p.Date,
		Dep:        p.Dep,
		Country:    p.Country,
		BirthPlace: p.BirthPlace,
		Dossier:    p.Dossier,
	}
}

// MarshalJSON writes {series: {name: entry}} in insertion order
func (r *Registry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, code := range r.codes {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, code); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		s := r.series[code]
		for j, name := range s.names {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, name); err != nil {
				return nil, err
			}
			if err := writeValue(&buf, entryOf(s.people[name])); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecreeIndex maps series code -> decree date -> source PDF path. A
// document counts as processed for a series once its path is indexed there.
type DecreeIndex struct {
	codes    []string
	bySeries map[string]*StringIndex
}

// NewDecreeIndex creates an empty index
func NewDecreeIndex() *DecreeIndex {
	return &DecreeIndex{bySeries: make(map[string]*StringIndex)}
}

func (d *DecreeIndex) ensure(code string) *StringIndex {
	x, ok := d.bySeries[code]
	if !ok {
		x = NewStringIndex()
		d.bySeries[code] = x
		d.codes = append(d.codes, code)
	}
	return x
}

// Set records that the decree of date, read from path, was processed for code
func (d *DecreeIndex) Set(code, date, path string) {
	d.ensure(code).Set(date, path)
}

// HasPath reports whether path was processed for series code
func (d *DecreeIndex) HasPath(code, path string) bool {
	x, ok := d.bySeries[code]
	if !ok {
		return false
	}
	_, found := x.KeyOf(path)
	return found
}

// DateOfPath returns the decree date recorded for path under any series
func (d *DecreeIndex) DateOfPath(path string) (string, bool) {
	for _, code := range d.codes {
		if date, ok := d.bySeries[code].KeyOf(path); ok {
			return date, true
		}
	}
	return "", false
}

// PathOfDate returns the source path recorded for date under any series
func (d *DecreeIndex) PathOfDate(date string) (string, bool) {
	for _, code := range d.codes {
		if path, ok := d.bySeries[code].Get(date); ok {
			return path, true
		}
	}
	return "", false
}

// Decrees returns the date index of series code, or an empty index
func (d *DecreeIndex) Decrees(code string) *StringIndex {
	if x, ok := d.bySeries[code]; ok {
		return x
	}
	return NewStringIndex()
}

// Codes returns the series with at least one indexed decree, in insertion order
func (d *DecreeIndex) Codes() []string {
	out := make([]string, len(d.codes))
	copy(out, d.codes)
	return out
}

// MarshalJSON writes {series: {date: path}} in insertion order
func (d *DecreeIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, code := range d.codes {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, code); err != nil {
			return nil, err
		}
		inner, err := d.bySeries[code].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// State is everything persisted between runs
type State struct {
	Registry *Registry
	Decrees  *DecreeIndex
	// Windows caches each decree's naturalization window by date.
	Windows *StringIndex
}

// NewState creates an empty state whose registry holds the given series
func NewState(codes []string) *State {
	return &State{
		Registry: NewRegistry(codes),
		Decrees:  NewDecreeIndex(),
		Windows:  NewStringIndex(),
	}
}

// marshalState encodes the three persisted documents
func marshalState(st *State) (decrees, windows, naturalized []byte, err error) {
	if decrees, err = st.Decrees.MarshalJSON(); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding decrees: %w", err)
	}
	if windows, err = st.Windows.MarshalJSON(); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding decree windows: %w", err)
	}
	if naturalized, err = st.Registry.MarshalJSON(); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding naturalized: %w", err)
	}
	return decrees, windows, naturalized, nil
}
