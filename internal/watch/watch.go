// Package watch feeds PDFs dropped into the JOs folder to the extraction
// service as they appear.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
	"github.com/a3tai/jorf-reader/internal/pdf"
	"github.com/a3tai/jorf-reader/internal/service"
)

// DefaultSettle is how long a file must stay unchanged before it is read
const DefaultSettle = 2 * time.Second

// Processor handles one PDF
type Processor interface {
	ProcessFile(ctx context.Context, path, series string, force bool) (*service.DocumentResult, error)
}

// Watcher processes new PDFs of a folder one at a time
type Watcher struct {
	dir    string
	series string
	p      Processor
	log    *slog.Logger
	settle time.Duration

	pending map[string]time.Time
}

// Option customizes a Watcher
type Option func(*Watcher)

// WithSettle sets the quiet period after the last write event
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// WithLogger replaces the default logger
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// New creates a watcher on dir for series
func New(dir, series string, p Processor, opts ...Option) *Watcher {
	w := &Watcher{
		dir:     dir,
		series:  series,
		p:       p,
		log:     slog.Default(),
		settle:  DefaultSettle,
		pending: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the folder until ctx is done. Per-document failures are
// logged; a persistence failure stops the watcher and is returned.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return jerrors.Wrap(jerrors.ErrorTypeInvalidPath, "cannot watch folder", err).WithFile(w.dir)
	}
	w.log.Info("Watching folder", "dir", w.dir, "series", w.series)

	tick := time.NewTicker(w.tickInterval())
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev, time.Now())
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watcher error", "error", err)
		case now := <-tick.C:
			if err := w.flush(ctx, now); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) tickInterval() time.Duration {
	if d := w.settle / 2; d > 10*time.Millisecond {
		return d
	}
	return 10 * time.Millisecond
}

// handleEvent records or forgets a pending PDF. It reports whether the
// event concerned a PDF of the folder.
func (w *Watcher) handleEvent(ev fsnotify.Event, at time.Time) bool {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") || !pdf.IsPDFName(name) {
		return false
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		delete(w.pending, ev.Name)
		return true
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil || info.IsDir() {
			return false
		}
		w.pending[ev.Name] = at
		return true
	default:
		return false
	}
}

// ready returns, sorted, the pending paths quiet since settle
func (w *Watcher) ready(now time.Time) []string {
	var paths []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.settle {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

func (w *Watcher) flush(ctx context.Context, now time.Time) error {
	for _, path := range w.ready(now) {
		delete(w.pending, path)

		doc, err := w.p.ProcessFile(ctx, path, w.series, false)
		if err != nil {
			if !jerrors.IsRecoverable(err) {
				return err
			}
			w.log.Warn("Document failed", "path", path, "error", err)
			continue
		}
		w.log.Info("Document processed",
			"path", path,
			"date", doc.Date,
			"persons", doc.Persons,
			"already_processed", doc.AlreadyProcessed)
	}
	return nil
}
