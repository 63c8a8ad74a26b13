// Package service runs the extraction pipeline over gazette PDFs and keeps
// the persisted state up to date. Documents are processed one at a time and
// the state is saved after each of them.
package service

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/a3tai/jorf-reader/internal/config"
	jerrors "github.com/a3tai/jorf-reader/internal/errors"
	"github.com/a3tai/jorf-reader/internal/gazette"
	"github.com/a3tai/jorf-reader/internal/lookup"
	"github.com/a3tai/jorf-reader/internal/pdf"
	"github.com/a3tai/jorf-reader/internal/store"
)

// Source is an opened gazette issue
type Source interface {
	gazette.PageSource
	Close() error
}

// Opener opens the PDF at path
type Opener func(path string) (Source, error)

// PDFOpener validates the file structure with pdfcpu, then opens it for
// text extraction.
func PDFOpener(maxFileSize int64) Opener {
	validator := pdf.NewValidator(maxFileSize)
	reader := pdf.NewReader(maxFileSize)
	return func(path string) (Source, error) {
		if _, err := validator.Validate(path); err != nil {
			return nil, err
		}
		doc, err := reader.Open(path)
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
}

// Option customizes a Service
type Option func(*Service)

// WithOpener replaces the PDF opener
func WithOpener(open Opener) Option {
	return func(s *Service) { s.open = open }
}

// WithLogger replaces the default logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithProgress enables or disables the batch progress bar
func WithProgress(enabled bool) Option {
	return func(s *Service) { s.progress = enabled }
}

// Service owns the state and the extraction components
type Service struct {
	mu sync.Mutex

	store     store.Store
	state     *store.State
	extractor *gazette.Extractor
	parser    *gazette.Parser
	search    *pdf.Search
	open      Opener

	dir      string
	series   string
	progress bool
	log      *slog.Logger
}

// New builds the pipeline from cfg and loads the persisted state. A
// recoverable load failure (an explicit state path that does not exist)
// is logged and the service starts from an empty, memory-only state.
func New(cfg *config.Config, st store.Store, opts ...Option) (*Service, error) {
	markers := gazette.DefaultMarkers()
	if cfg.MarkersFile != "" {
		m, err := gazette.LoadMarkers(cfg.MarkersFile)
		if err != nil {
			return nil, err
		}
		markers = m
	}

	extractor, err := gazette.NewExtractor(markers)
	if err != nil {
		return nil, err
	}
	parser, err := gazette.NewParser(cfg.YearToken)
	if err != nil {
		return nil, err
	}

	s := &Service{
		store:     st,
		extractor: extractor,
		parser:    parser,
		search:    pdf.NewSearch(cfg.MaxFileSize),
		open:      PDFOpener(cfg.MaxFileSize),
		dir:       cfg.Dir,
		progress:  cfg.Progress,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	series, err := cfg.ResolveSeries()
	if err != nil {
		s.log.Warn("Invalid series, using default", "series", cfg.Series, "default", series)
	}
	s.series = series

	state, err := st.Load()
	switch {
	case err == nil:
	case jerrors.IsRecoverable(err) && state != nil:
		s.log.Warn("State not loaded, results will not be saved", "error", err)
	default:
		return nil, fmt.Errorf("loading state from %s: %w", st.Describe(), err)
	}
	state.Registry.AddSeries(s.series)
	s.state = state

	s.log.Debug("Service ready",
		"store", st.Describe(),
		"series", s.series,
		"persons", state.Registry.Total(),
		"decrees", state.Windows.Len())
	return s, nil
}

// Series returns the configured series after validation
func (s *Service) Series() string {
	return s.series
}

// Dir returns the configured PDF folder
func (s *Service) Dir() string {
	return s.dir
}

// YearToken returns the dossier year token used by the parser
func (s *Service) YearToken() string {
	return s.parser.YearToken()
}

// StoreDescription describes the state backend
func (s *Service) StoreDescription() string {
	return s.store.Describe()
}

// Close releases the store
func (s *Service) Close() error {
	return s.store.Close()
}

// resolveSeries maps an empty request to the configured series and an
// invalid one to the default series.
func (s *Service) resolveSeries(code string) string {
	if code == "" {
		return s.series
	}
	resolved, err := config.ResolveSeries(code)
	if err != nil {
		s.log.Warn("Invalid series, using default", "series", code, "default", resolved)
	}
	return resolved
}

// Search returns the first person matching q. An empty series in a query
// with SeriesKnown set means the configured series.
func (s *Service) Search(q lookup.Query) (gazette.Person, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.SeriesKnown {
		q.Series = s.resolveSeries(q.Series)
	}
	return lookup.Search(s.state.Registry, q)
}

// Find returns up to limit persons matching q
func (s *Service) Find(q lookup.Query, limit int) []gazette.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.SeriesKnown {
		q.Series = s.resolveSeries(q.Series)
	}
	return lookup.Find(s.state.Registry, q, limit)
}
