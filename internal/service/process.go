package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
)

// DocumentResult reports the processing of one PDF for one series
type DocumentResult struct {
	Path             string `json:"path"`
	Date             string `json:"date"`
	Series           string `json:"series"`
	AlreadyProcessed bool   `json:"already_processed"`
	FromCache        bool   `json:"from_cache"`
	EndMarker        string `json:"end_marker,omitempty"`
	DecreeCount      int    `json:"decree_count"`
	Candidates       int    `json:"candidates"`
	Persons          int    `json:"persons"`
	Skipped          int    `json:"skipped"`
	SeriesTotal      int    `json:"series_total"`
}

// BatchResult summarizes a folder run
type BatchResult struct {
	RunID     string                   `json:"run_id"`
	Series    string                   `json:"series"`
	Documents []*DocumentResult        `json:"documents"`
	Failed    int                      `json:"failed"`
	Errors    *jerrors.ErrorCollection `json:"errors"`
	Duration  time.Duration            `json:"duration"`
}

// Processed returns the number of documents read in this run
func (b *BatchResult) Processed() int {
	n := 0
	for _, d := range b.Documents {
		if !d.AlreadyProcessed {
			n++
		}
	}
	return n
}

// Persons returns the number of person entries recorded in this run
func (b *BatchResult) Persons() int {
	n := 0
	for _, d := range b.Documents {
		n += d.Persons
	}
	return n
}

// ProcessFile runs the pipeline on one PDF. A document already indexed for
// the series is skipped unless force is set; a document already read for
// another series reuses its cached window.
func (s *Service) ProcessFile(ctx context.Context, path, series string, force bool) (*DocumentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processFile(ctx, path, s.resolveSeries(series), force, s.log)
}

// ProcessFolder processes every PDF of dir (the configured folder when
// empty). Per-document failures are collected and the run continues;
// a persistence failure ends it.
func (s *Service) ProcessFolder(ctx context.Context, dir, series string, force bool) (*BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir == "" {
		dir = s.dir
	}
	series = s.resolveSeries(series)
	result := &BatchResult{
		RunID:  uuid.New().String(),
		Series: series,
		Errors: jerrors.NewErrorCollection(),
	}
	log := s.log.With("run_id", result.RunID, "series", series)
	start := time.Now()

	files, skipped, err := s.search.FindPDFs(dir)
	if err != nil {
		return nil, err
	}
	for _, skip := range skipped {
		log.Warn("Skipping file", "error", skip)
		result.Errors.Add(skip)
		result.Failed++
	}
	log.Info("Processing folder", "dir", dir, "files", len(files))

	var bar *pb.ProgressBar
	if s.progress && len(files) > 0 {
		bar = pb.Full.Start(len(files))
		bar.Set("prefix", fmt.Sprintf("Series %s: ", series))
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		doc, err := s.processFile(ctx, f.Path, series, force, log)
		if bar != nil {
			bar.Increment()
		}
		if err != nil {
			if !jerrors.IsRecoverable(err) {
				return result, err
			}
			log.Warn("Document failed", "path", f.Path, "error", err)
			result.Errors.Add(err)
			result.Failed++
			continue
		}
		result.Documents = append(result.Documents, doc)
	}

	result.Duration = time.Since(start)
	log.Info("Folder processed",
		"documents", humanize.Comma(int64(result.Processed())),
		"persons", humanize.Comma(int64(result.Persons())),
		"failed", result.Failed,
		"series_total", humanize.Comma(int64(s.state.Registry.Len(series))),
		"duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

func (s *Service) processFile(ctx context.Context, path, series string, force bool, log *slog.Logger) (*DocumentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &DocumentResult{Path: path, Series: series}
	if !force && s.state.Decrees.HasPath(series, path) {
		result.AlreadyProcessed = true
		result.Date, _ = s.state.Decrees.DateOfPath(path)
		result.SeriesTotal = s.state.Registry.Len(series)
		log.Debug("Already processed", "path", path, "date", result.Date)
		return result, nil
	}

	window, err := s.window(path, force, result)
	if err != nil {
		return nil, err
	}

	s.record(window, series, result, log)

	if err := s.store.Save(s.state); err != nil {
		return nil, err
	}

	log.Info(fmt.Sprintf("Naturalized of serie %s until Journal of %s: %s",
		series, result.Date, humanize.Comma(int64(result.SeriesTotal))),
		"path", path,
		"persons", result.Persons,
		"skipped", result.Skipped,
		"cached", result.FromCache)
	return result, nil
}

// window returns the naturalization window of path, from the cache when
// the document was already read, otherwise from the PDF. The state is only
// touched once extraction has succeeded.
func (s *Service) window(path string, force bool, result *DocumentResult) (string, error) {
	if !force {
		if date, ok := s.state.Decrees.DateOfPath(path); ok {
			if window, ok := s.state.Windows.Get(date); ok {
				result.Date = date
				result.FromCache = true
				return window, nil
			}
		}
	}

	src, err := s.open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	doc, err := s.extractor.Extract(src)
	if err != nil {
		return "", withFile(err, path)
	}

	result.Date = doc.Date
	result.EndMarker = doc.EndMarker.String()
	result.DecreeCount = doc.DecreeCount
	s.state.Windows.Set(doc.Date, doc.Window)
	return doc.Window, nil
}

// record parses window for series and merges the persons and the decree
// into the state.
func (s *Service) record(window, series string, result *DocumentResult, log *slog.Logger) {
	parsed := s.parser.Parse(window, result.Date, series)
	for _, err := range parsed.Errors {
		log.Debug("Skipping malformed entry", "path", result.Path, "error", err)
	}

	s.state.Registry.AddSeries(series)
	for _, p := range parsed.Persons {
		if err := s.state.Registry.Put(p); err != nil {
			log.Warn("Cannot record person", "name", p.Name, "error", err)
			result.Skipped++
			continue
		}
		result.Persons++
	}
	if result.Path != "" {
		s.state.Decrees.Set(series, result.Date, result.Path)
	}

	result.Candidates = parsed.Candidates
	result.Skipped += parsed.Skipped
	result.SeriesTotal = s.state.Registry.Len(series)
}

// Reparse runs the parser over every cached window for series without
// reading any PDF. Windows whose source path is unknown are parsed but
// not indexed.
func (s *Service) Reparse(ctx context.Context, series string) (*BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series = s.resolveSeries(series)
	result := &BatchResult{
		RunID:  uuid.New().String(),
		Series: series,
		Errors: jerrors.NewErrorCollection(),
	}
	log := s.log.With("run_id", result.RunID, "series", series)
	start := time.Now()

	for _, date := range s.state.Windows.Keys() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		window, _ := s.state.Windows.Get(date)
		path, _ := s.state.Decrees.PathOfDate(date)

		doc := &DocumentResult{Path: path, Date: date, Series: series, FromCache: true}
		s.record(window, series, doc, log)

		if err := s.store.Save(s.state); err != nil {
			return result, err
		}
		log.Debug("Reparsed window", "date", date, "persons", doc.Persons)
		result.Documents = append(result.Documents, doc)
	}

	result.Duration = time.Since(start)
	log.Info("Cached windows reparsed",
		"windows", len(result.Documents),
		"persons", humanize.Comma(int64(result.Persons())),
		"series_total", humanize.Comma(int64(s.state.Registry.Len(series))))
	return result, nil
}

func withFile(err error, path string) error {
	var je *jerrors.JORFError
	if errors.As(err, &je) && je.FilePath == "" {
		je.WithFile(path)
		return err
	}
	return fmt.Errorf("%s: %w", path, err)
}
