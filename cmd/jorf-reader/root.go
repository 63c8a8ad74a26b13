package main

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/a3tai/jorf-reader/internal/config"
	"github.com/a3tai/jorf-reader/internal/logger"
	"github.com/a3tai/jorf-reader/internal/service"
	"github.com/a3tai/jorf-reader/internal/store"
)

// app carries what the subcommands share once flags are parsed
type app struct {
	cfg *config.Config
	log *slog.Logger
}

func versionString() string {
	return fmt.Sprintf("version: %s\nbuild:   %s\ncommit:  %s\ngo:      %s",
		version, buildTime, gitCommit, runtime.Version())
}

// getRootCmd builds the command tree. Without a subcommand the
// interactive lookup runs.
func getRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "jorf-reader",
		Short: "Find naturalized persons in Journal Officiel decrees",
		Long: `jorf-reader reads the naturalization decrees published in the French
Journal Officiel (JORF) PDFs, records every naturalized person of a series
and looks persons up by name.

Without a subcommand it asks for the JOs folder, a first name, a last name
and a series, processes the folder and prints the matching record.

Configuration precedence (highest to lowest):
  1. CLI flags (--dir, --series, etc.)
  2. Environment variables (JORF_DIR, JORF_SERIES, JORF_SAVE_DIR, ...)
  3. Config file (--config)
  4. Built-in defaults`,
		Version: versionString(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.bootstrap(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPrompt(cmd)
		},
		SilenceUsage: true,
	}

	config.AddFlags(rootCmd.PersistentFlags())
	rootCmd.Flags().BoolP("version", "V", false, "version for jorf-reader")

	rootCmd.AddCommand(
		a.getPromptCmd(),
		a.getProcessCmd(),
		a.getReparseCmd(),
		a.getSearchCmd(),
		a.getStatsCmd(),
		a.getServeCmd(),
		a.getWatchCmd(),
	)
	return rootCmd
}

func (a *app) bootstrap(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if version != "dev" {
		cfg.Version = version
	}
	a.cfg = cfg
	a.log = logger.Init(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	a.log.Debug("Configuration loaded", "config", cfg.String(), "config_file", cfg.ConfigFile)
	return nil
}

// openService opens the configured store and loads the state
func (a *app) openService(opts ...service.Option) (*service.Service, error) {
	defaultSeries, _ := a.cfg.ResolveSeries()

	st, err := store.Open(a.cfg.Store, a.cfg.SaveDir,
		store.JSONPaths{
			Decrees:       a.cfg.DecreesFile,
			DecreesString: a.cfg.DecreesStringFile,
			Naturalized:   a.cfg.NaturalizedFile,
		},
		a.cfg.SQLiteFile(),
		store.Options{
			Codes:         store.DefaultSeriesCodes(),
			DefaultSeries: defaultSeries,
		})
	if err != nil {
		return nil, err
	}

	opts = append([]service.Option{service.WithLogger(a.log)}, opts...)
	svc, err := service.New(a.cfg, st, opts...)
	if err != nil {
		st.Close()
		return nil, err
	}
	return svc, nil
}

func closeService(svc *service.Service, log *slog.Logger) {
	if err := svc.Close(); err != nil {
		log.Warn("Closing store failed", "error", err)
	}
}
