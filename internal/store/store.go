// Package store keeps the series registry, the decree index and the
// window cache between runs.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	// Default file names inside the save directory
	DecreesFileName       = "decrees.json"
	DecreesStringFileName = "decrees_string.json"
	NaturalizedFileName   = "naturalized.json"
	SQLiteFileName        = "jorf.db"

	dirPerm  = 0o750
	filePerm = 0o644
)

// Store loads and persists State. Save is called after every document.
type Store interface {
	// Load returns the persisted state. A recoverable *errors.JORFError may
	// accompany a usable, empty state; callers log it and carry on.
	Load() (*State, error)
	Save(st *State) error
	Close() error
	Describe() string
}

// Options configures the registry a store loads into
type Options struct {
	Codes         []string
	DefaultSeries string
}

// JSONPaths are the three JSON documents; empty entries use the defaults
// in the save directory.
type JSONPaths struct {
	Decrees       string
	DecreesString string
	Naturalized   string
}

// JSONStore persists state as three UTF-8 JSON files
type JSONStore struct {
	paths      JSONPaths
	opts       Options
	memoryOnly bool
	missing    []string
}

// NewJSONStore resolves the file paths. Explicit paths must exist: when one
// does not, the store works in memory only and Load reports InvalidPath.
func NewJSONStore(saveDir string, explicit JSONPaths, opts Options) *JSONStore {
	s := &JSONStore{opts: opts}
	resolve := func(given, name string) string {
		if given == "" {
			return filepath.Join(saveDir, name)
		}
		if _, err := os.Stat(given); err != nil {
			s.missing = append(s.missing, given)
		}
		return given
	}
	s.paths = JSONPaths{
		Decrees:       resolve(explicit.Decrees, DecreesFileName),
		DecreesString: resolve(explicit.DecreesString, DecreesStringFileName),
		Naturalized:   resolve(explicit.Naturalized, NaturalizedFileName),
	}
	s.memoryOnly = len(s.missing) > 0
	return s
}

// Paths returns the resolved file paths
func (s *JSONStore) Paths() JSONPaths {
	return s.paths
}

// MemoryOnly reports whether Save is disabled
func (s *JSONStore) MemoryOnly() bool {
	return s.memoryOnly
}

// Describe returns a short description of the backend
func (s *JSONStore) Describe() string {
	if s.memoryOnly {
		return "json (memory only)"
	}
	return fmt.Sprintf("json (%s)", filepath.Dir(s.paths.Naturalized))
}

// Load reads the three files; a missing default file yields empty data
func (s *JSONStore) Load() (*State, error) {
	st := NewState(s.opts.Codes)
	if s.memoryOnly {
		return st, jerrors.New(jerrors.ErrorTypeInvalidPath, "state file does not exist, working in memory only").
			WithFile(s.missing[0])
	}

	if data, ok, err := readOptional(s.paths.Naturalized); err != nil {
		return nil, err
	} else if ok {
		reg, err := DecodeRegistry(data, s.opts.Codes, s.opts.DefaultSeries)
		if err != nil {
			return nil, withFile(err, s.paths.Naturalized)
		}
		st.Registry = reg
	}

	if data, ok, err := readOptional(s.paths.Decrees); err != nil {
		return nil, err
	} else if ok {
		idx, err := DecodeDecreeIndex(data, s.opts.DefaultSeries)
		if err != nil {
			return nil, withFile(err, s.paths.Decrees)
		}
		st.Decrees = idx
	}

	if data, ok, err := readOptional(s.paths.DecreesString); err != nil {
		return nil, err
	} else if ok {
		windows, err := DecodeWindows(data)
		if err != nil {
			return nil, withFile(err, s.paths.DecreesString)
		}
		st.Windows = windows
	}

	return st, nil
}

// Save writes the registry first and the decree index last, so an
// interrupted save never marks a decree processed without its persons.
func (s *JSONStore) Save(st *State) error {
	if s.memoryOnly {
		return nil
	}
	decrees, windows, naturalized, err := marshalState(st)
	if err != nil {
		return jerrors.Wrap(jerrors.ErrorTypePersistence, "cannot encode state", err)
	}
	for _, f := range []struct {
		path string
		data []byte
	}{
		{s.paths.Naturalized, naturalized},
		{s.paths.DecreesString, windows},
		{s.paths.Decrees, decrees},
	} {
		if err := writeFileAtomic(f.path, f.data); err != nil {
			return jerrors.Wrap(jerrors.ErrorTypePersistence, "cannot write state file", err).WithFile(f.path)
		}
	}
	return nil
}

// Close releases nothing; files are closed after each save
func (s *JSONStore) Close() error {
	return nil
}

func readOptional(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, jerrors.Wrap(jerrors.ErrorTypePersistence, "cannot read state file", err).WithFile(path)
	}
	return data, true, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func withFile(err error, path string) error {
	var je *jerrors.JORFError
	if errors.As(err, &je) {
		return je.WithFile(path)
	}
	return fmt.Errorf("%s: %w", path, err)
}
