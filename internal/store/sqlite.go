package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
	"github.com/a3tai/jorf-reader/internal/gazette"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS persons (
	seq         INTEGER PRIMARY KEY,
	series      TEXT NOT NULL,
	name        TEXT NOT NULL,
	dossier     TEXT NOT NULL DEFAULT '',
	dep         TEXT NOT NULL,
	country     TEXT NOT NULL,
	birth_place TEXT NOT NULL DEFAULT '',
	date        TEXT NOT NULL,
	UNIQUE (series, name)
);
CREATE TABLE IF NOT EXISTS decrees (
	seq    INTEGER PRIMARY KEY,
	series TEXT NOT NULL,
	date   TEXT NOT NULL,
	path   TEXT NOT NULL,
	UNIQUE (series, date)
);
CREATE TABLE IF NOT EXISTS windows (
	seq  INTEGER PRIMARY KEY,
	date TEXT NOT NULL UNIQUE,
	text TEXT NOT NULL
);`

// SQLiteStore persists state in a single SQLite database. Row order
// (seq) preserves insertion order.
type SQLiteStore struct {
	db   *sql.DB
	path string
	opts Options
}

// NewSQLiteStore opens or creates the database at path
func NewSQLiteStore(path string, opts Options) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path, opts: opts}, nil
}

// Describe returns a short description of the backend
func (s *SQLiteStore) Describe() string {
	return fmt.Sprintf("sqlite (%s)", s.path)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads every table in insertion order
func (s *SQLiteStore) Load() (*State, error) {
	st := NewState(s.opts.Codes)
	for _, load := range []func(*State) error{s.loadPersons, s.loadDecrees, s.loadWindows} {
		if err := load(st); err != nil {
			return nil, withFile(err, s.path)
		}
	}
	return st, nil
}

func (s *SQLiteStore) loadPersons(st *State) error {
	rows, err := s.db.Query(`SELECT series, name, dossier, dep, country, birth_place, date FROM persons ORDER BY seq`)
	if err != nil {
		return jerrors.Wrap(jerrors.ErrorTypePersistence, "cannot query persons", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p gazette.Person
		if err := rows.Scan(&p.Series, &p.Name, &p.Dossier, &p.Dep, &p.Country, &p.BirthPlace, &p.Date); err != nil {
			return jerrors.Wrap(jerrors.ErrorTypePersistence, "cannot scan person", err)
		}
		if err := validatePerson(p); err != nil {
			return err
		}
		if err := putLoaded(st.Registry, p); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return jerrors.Wrap(jerrors.ErrorTypePersistence, "cannot read persons", err)
	}
	return nil
}

func (s *SQLiteStore) loadDecrees(st *State) error {
	rows, err := s.db.Query(`SELECT series, date, path FROM decrees ORDER BY seq`)
	if err != nil {
		return jerrors.Wrap(jerrors.ErrorTypePersistence, "cannot query decrees", err)
	}
	defer rows.Close()
	for rows.Next() {
		var code, date, path string
		if err := rows.Scan(&code, &date, &path); err != nil {
			return jerrors.Wrap(jerrors.ErrorTypePersistence, "cannot scan decree", err)
		}
		st.Decrees.Set(code, date, path)
	}
	if err := rows.Err(); err != nil {
		return jerrors.Wrap(jerrors.ErrorTypePersistence, "cannot read decrees", err)
	}
	return nil
}

func (s *SQLiteStore) loadWindows(st *State) error {
	rows, err := s.db.Query(`SELECT date, text FROM windows ORDER BY seq`)
	if err != nil {
		return jerrors.Wrap(jerrors.ErrorTypePersistence, "cannot query windows", err)
	}
	defer rows.Close()
	for rows.Next() {
		var date, text string
		if err := rows.Scan(&date, &text); err != nil {
			return jerrors.Wrap(jerrors.ErrorTypePersistence, "cannot scan window", err)
		}
		st.Windows.Set(date, text)
	}
	if err := rows.Err(); err != nil {
		return jerrors.Wrap(jerrors.ErrorTypePersistence, "cannot read windows", err)
	}
	return nil
}

// Save rewrites every table inside one transaction
func (s *SQLiteStore) Save(st *State) error {
	if err := s.save(st); err != nil {
		return jerrors.Wrap(jerrors.ErrorTypePersistence, "cannot save state", err).WithFile(s.path)
	}
	return nil
}

func (s *SQLiteStore) save(st *State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, table := range []string{"persons", "decrees", "windows"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	insertPerson, err := tx.Prepare(`INSERT INTO persons (seq, series, name, dossier, dep, country, birth_place, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insertPerson.Close()
	seq := 0
	for _, code := range st.Registry.Codes() {
		for _, p := range st.Registry.People(code) {
			seq++
			if _, err := insertPerson.Exec(seq, p.Series, p.Name, p.Dossier, p.Dep, p.Country, p.BirthPlace, p.Date); err != nil {
				return fmt.Errorf("inserting %q: %w", p.Name, err)
			}
		}
	}

	seq = 0
	for _, code := range st.Decrees.Codes() {
		dates := st.Decrees.Decrees(code)
		for _, date := range dates.Keys() {
			path, _ := dates.Get(date)
			seq++
			if _, err := tx.Exec(`INSERT INTO decrees (seq, series, date, path) VALUES (?, ?, ?, ?)`,
				seq, code, date, path); err != nil {
				return fmt.Errorf("inserting decree %s: %w", date, err)
			}
		}
	}

	for i, date := range st.Windows.Keys() {
		text, _ := st.Windows.Get(date)
		if _, err := tx.Exec(`INSERT INTO windows (seq, date, text) VALUES (?, ?, ?)`, i+1, date, text); err != nil {
			return fmt.Errorf("inserting window %s: %w", date, err)
		}
	}

	return tx.Commit()
}

// Open creates the store selected by backend
func Open(backend, saveDir string, paths JSONPaths, sqlitePath string, opts Options) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return NewJSONStore(saveDir, paths, opts), nil
	case BackendSQLite:
		if sqlitePath == "" {
			sqlitePath = filepath.Join(saveDir, SQLiteFileName)
		}
		return NewSQLiteStore(sqlitePath, opts)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
