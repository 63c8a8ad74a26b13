package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/a3tai/jorf-reader/internal/lookup"
	"github.com/a3tai/jorf-reader/internal/mcp"
	"github.com/a3tai/jorf-reader/internal/prompt"
	"github.com/a3tai/jorf-reader/internal/service"
	"github.com/a3tai/jorf-reader/internal/watch"
)

func (a *app) getPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Interactive lookup (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPrompt(cmd)
		},
	}
}

func (a *app) runPrompt(cmd *cobra.Command) error {
	svc, err := a.openService(service.WithProgress(a.cfg.Progress))
	if err != nil {
		return err
	}
	defer closeService(svc, a.log)

	session := prompt.NewSession(cmd.InOrStdin(), cmd.OutOrStdout(), svc, a.cfg.Dir, svc.Series())
	return session.Run(cmd.Context())
}

func (a *app) getProcessCmd() *cobra.Command {
	var force bool

	processCmd := &cobra.Command{
		Use:   "process [folder]",
		Short: "Record the naturalized persons of a series from a folder of JORF PDFs",
		Long: `Reads every PDF of the folder (default --dir), extracts the naturalization
decrees and records the persons of the series (default --series).

Documents already processed for the series are skipped unless --force is
given; documents already read for another series are parsed again from the
cached decree text. State is saved after every document.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}

			svc, err := a.openService()
			if err != nil {
				return err
			}
			defer closeService(svc, a.log)

			result, err := svc.ProcessFolder(cmd.Context(), dir, "", force)
			if result != nil {
				printBatch(cmd, result)
			}
			return err
		},
	}
	processCmd.Flags().BoolVarP(&force, "force", "f", false, "re-read documents already processed for the series")
	return processCmd
}

func (a *app) getReparseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reparse",
		Short: "Parse the cached decree text again for a series without reading PDFs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.openService()
			if err != nil {
				return err
			}
			defer closeService(svc, a.log)

			result, err := svc.Reparse(cmd.Context(), "")
			if result != nil {
				printBatch(cmd, result)
			}
			return err
		},
	}
}

func printBatch(cmd *cobra.Command, result *service.BatchResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Series %s: %s document(s) read, %s person(s) recorded, %d failed\n",
		result.Series,
		humanize.Comma(int64(result.Processed())),
		humanize.Comma(int64(result.Persons())),
		result.Failed)
	for _, e := range result.Errors.Errors {
		fmt.Fprintf(out, "  %s\n", e.Error())
	}
}

func (a *app) getSearchCmd() *cobra.Command {
	var (
		firstName string
		lastName  string
		anySeries bool
		limit     int
	)

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Look up naturalized persons by name in the recorded state",
		Long: `Searches the recorded persons without reading any PDF. Both names are
case-insensitive substrings of the printed name "LASTNAME (Firstnames)".
Only the configured series is searched unless --any-series is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.openService()
			if err != nil {
				return err
			}
			defer closeService(svc, a.log)

			q := lookup.Query{FirstName: firstName, LastName: lastName, SeriesKnown: !anySeries}
			persons := svc.Find(q, limit)

			out := cmd.OutOrStdout()
			if len(persons) == 0 {
				fmt.Fprintln(out, lookup.NotFoundMessage)
				return nil
			}
			for _, p := range persons {
				fmt.Fprintf(out, "%s\tseries %s\tdecree %s\tdep. %s\t%s\n", p.Name, p.Series, p.Date, p.Dep, p.Country)
			}
			return nil
		},
	}
	searchCmd.Flags().StringVar(&firstName, "first-name", "", "first name, or part of it")
	searchCmd.Flags().StringVar(&lastName, "last-name", "", "last name, or part of it")
	searchCmd.Flags().BoolVarP(&anySeries, "any-series", "a", false, "search every series")
	searchCmd.Flags().IntVarP(&limit, "limit", "n", 1, "maximum number of matches")
	return searchCmd
}

func (a *app) getStatsCmd() *cobra.Command {
	var (
		all     bool
		decrees bool
	)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recorded persons and processed decrees per series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.openService()
			if err != nil {
				return err
			}
			defer closeService(svc, a.log)

			out := cmd.OutOrStdout()
			if decrees {
				for _, d := range svc.Decrees("") {
					fmt.Fprintf(out, "%s\t%s\n", d.Date, d.Path)
				}
				return nil
			}

			stats := svc.Stats(all)
			fmt.Fprintf(out, "Total persons: %s\n", humanize.Comma(int64(stats.TotalPersons)))
			fmt.Fprintf(out, "Cached decree windows: %d\n", stats.CachedWindows)
			for _, st := range stats.Series {
				fmt.Fprintf(out, "%s\t%s person(s)\t%d decree(s)\n", st.Series, humanize.Comma(int64(st.Persons)), st.Decrees)
			}
			return nil
		},
	}
	statsCmd.Flags().BoolVar(&all, "all", false, "include series with no data")
	statsCmd.Flags().BoolVar(&decrees, "decrees", false, "list the decrees processed for the series instead")
	return statsCmd
}

func (a *app) getServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the lookup and processing tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the protocol
			svc, err := a.openService(service.WithProgress(false))
			if err != nil {
				return err
			}
			defer closeService(svc, a.log)

			server, err := mcp.NewServer(a.cfg, svc)
			if err != nil {
				return err
			}
			return server.Run(cmd.Context())
		},
	}
}

func (a *app) getWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Process the folder, then process PDFs as they are added to it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := a.openService(service.WithProgress(a.cfg.Progress))
			if err != nil {
				return err
			}
			defer closeService(svc, a.log)

			result, err := svc.ProcessFolder(ctx, "", "", false)
			if result != nil {
				printBatch(cmd, result)
			}
			if err != nil {
				return err
			}

			w := watch.New(svc.Dir(), svc.Series(), svc, watch.WithLogger(a.log))
			return w.Run(ctx)
		},
	}
}
