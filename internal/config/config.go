package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	jerrors "github.com/a3tai/jorf-reader/internal/errors"
)

const (
	// Store backends
	StoreJSON   = "json"
	StoreSQLite = "sqlite"

	// Log formats
	LogFormatText = "text"
	LogFormatJSON = "json"

	// Default values
	DefaultDir         = "JOs"
	DefaultSaveDir     = "results"
	DefaultSeries      = "027"
	DefaultYearToken   = "2020X"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// EnvPrefix prefixes every environment variable (JORF_DIR, JORF_SERIES, ...)
	EnvPrefix = "JORF"
)

// Config holds all configuration for the gazette reader
type Config struct {
	// Input
	Dir         string // folder holding the gazette PDFs
	MarkersFile string // optional YAML marker table
	MaxFileSize int64  // Maximum PDF file size in bytes

	// Extraction
	Series    string
	YearToken string

	// Persistence
	Store             string
	SaveDir           string
	DecreesFile       string
	DecreesStringFile string
	NaturalizedFile   string
	SQLitePath        string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	LogFormat  string
	Progress   bool
	ConfigFile string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Dir:         DefaultDir,
		MaxFileSize: DefaultMaxFileSize,
		Series:      DefaultSeries,
		YearToken:   DefaultYearToken,
		Store:       StoreJSON,
		SaveDir:     DefaultSaveDir,
		Version:     "1.0.0",
		ServerName:  "jorf-reader",
		LogLevel:    DefaultLogLevel,
		LogFormat:   LogFormatText,
		Progress:    true,
	}
}

// AddFlags defines every configuration flag on fs
func AddFlags(fs *pflag.FlagSet) {
	cfg := DefaultConfig()
	fs.String("config", "", "Configuration file (YAML, TOML or JSON)")
	fs.String("dir", cfg.Dir, "Folder containing the JORF PDF files")
	fs.String("markers-file", "", "YAML file overriding the gazette marker table")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	fs.String("series", cfg.Series, "Naturalization series code (000-054, 300-305)")
	fs.String("year-token", cfg.YearToken, "Dossier year token preceding the series code")
	fs.String("store", cfg.Store, "State backend: 'json' or 'sqlite'")
	fs.String("save-dir", cfg.SaveDir, "Folder for the state files")
	fs.String("decrees-file", "", "Decrees JSON file (default <save-dir>/decrees.json)")
	fs.String("decrees-string-file", "", "Decree windows JSON file (default <save-dir>/decrees_string.json)")
	fs.String("naturalized-file", "", "Naturalized JSON file (default <save-dir>/naturalized.json)")
	fs.String("sqlite-path", "", "SQLite database (default <save-dir>/jorf.db)")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.String("logformat", cfg.LogFormat, "Log format (text, json)")
	fs.Bool("progress", cfg.Progress, "Show a progress bar while processing folders")
}

// Load reads configuration from, in increasing priority: defaults, the
// config file, JORF_* environment variables and flags set on fs.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	cfg := DefaultConfig()
	populateConfigFromViper(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.ConfigFile = v.GetString("config")
	cfg.Dir = v.GetString("dir")
	cfg.MarkersFile = v.GetString("markers-file")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.Series = strings.TrimSpace(v.GetString("series"))
	cfg.YearToken = strings.TrimSpace(v.GetString("year-token"))
	cfg.Store = v.GetString("store")
	cfg.SaveDir = v.GetString("save-dir")
	cfg.DecreesFile = v.GetString("decrees-file")
	cfg.DecreesStringFile = v.GetString("decrees-string-file")
	cfg.NaturalizedFile = v.GetString("naturalized-file")
	cfg.SQLitePath = v.GetString("sqlite-path")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.LogFormat = v.GetString("logformat")
	cfg.Progress = v.GetBool("progress")
}

// Validate checks if the configuration is valid. An unknown series is not
// an error here; see ResolveSeries.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return errors.New("PDF directory cannot be empty")
	}

	if c.SaveDir == "" {
		return errors.New("save directory cannot be empty")
	}

	if c.YearToken == "" {
		return errors.New("year token cannot be empty")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.Store != StoreJSON && c.Store != StoreSQLite {
		return fmt.Errorf("invalid store: %s (must be one of: json, sqlite)", c.Store)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("invalid log format: %s (must be one of: text, json)", c.LogFormat)
	}

	return nil
}

// ResolveSeries returns the configured series, or DefaultSeries with a
// recoverable SeriesCodeInvalid error when it is outside the valid set.
func (c *Config) ResolveSeries() (string, error) {
	return ResolveSeries(c.Series)
}

// ResolveSeries validates code against SeriesCodes
func ResolveSeries(code string) (string, error) {
	code = strings.TrimSpace(code)
	if IsValidSeries(code) {
		return code, nil
	}
	return DefaultSeries, jerrors.New(jerrors.ErrorTypeSeriesCodeInvalid,
		fmt.Sprintf("series %q is not valid, using %s", code, DefaultSeries))
}

// SeriesCodes returns every accepted series code: 000 to 054 and 300 to 305
func SeriesCodes() []string {
	codes := make([]string, 0, 61)
	for i := 0; i <= 54; i++ {
		codes = append(codes, fmt.Sprintf("%03d", i))
	}
	for i := 300; i <= 305; i++ {
		codes = append(codes, fmt.Sprintf("%d", i))
	}
	return codes
}

// IsValidSeries reports whether code is an accepted series code
func IsValidSeries(code string) bool {
	for _, c := range SeriesCodes() {
		if c == code {
			return true
		}
	}
	return false
}

// SQLiteFile returns the database path, defaulting inside the save directory
func (c *Config) SQLiteFile() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.SaveDir, "jorf.db")
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Dir: %s, Series: %s, YearToken: %s, Store: %s, SaveDir: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Dir, c.Series, c.YearToken, c.Store, c.SaveDir, c.LogLevel, c.MaxFileSize)
}
