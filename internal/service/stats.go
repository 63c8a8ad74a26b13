package service

// SeriesStats counts what is known about one series
type SeriesStats struct {
	Series  string `json:"series"`
	Persons int    `json:"persons"`
	Decrees int    `json:"decrees"`
}

// Stats summarizes the whole state
type Stats struct {
	Series        []SeriesStats `json:"series"`
	TotalPersons  int           `json:"total_persons"`
	CachedWindows int           `json:"cached_windows"`
}

// Decree is one processed decree of a series
type Decree struct {
	Date string `json:"date"`
	Path string `json:"path"`
}

// Stats returns per-series counts. Series with neither persons nor decrees
// are left out unless all is set.
func (s *Service) Stats(all bool) *Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &Stats{
		TotalPersons:  s.state.Registry.Total(),
		CachedWindows: s.state.Windows.Len(),
	}
	seen := make(map[string]bool)
	add := func(code string) {
		if seen[code] {
			return
		}
		seen[code] = true
		st := SeriesStats{
			Series:  code,
			Persons: s.state.Registry.Len(code),
			Decrees: s.state.Decrees.Decrees(code).Len(),
		}
		if all || st.Persons > 0 || st.Decrees > 0 {
			out.Series = append(out.Series, st)
		}
	}
	for _, code := range s.state.Registry.Codes() {
		add(code)
	}
	for _, code := range s.state.Decrees.Codes() {
		add(code)
	}
	return out
}

// Decrees lists the decrees processed for series (the configured series
// when empty) in processing order.
func (s *Service) Decrees(series string) []Decree {
	s.mu.Lock()
	defer s.mu.Unlock()

	dates := s.state.Decrees.Decrees(s.resolveSeries(series))
	out := make([]Decree, 0, dates.Len())
	for _, date := range dates.Keys() {
		path, _ := dates.Get(date)
		out = append(out, Decree{Date: date, Path: path})
	}
	return out
}
