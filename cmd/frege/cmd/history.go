package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/frege/internal/history/store"
)

var (
	historyLimit  int
	historyFailed bool
	historyOrigin string
	historyPrune  time.Duration
	historyStats  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded runs",
	Long: `Lists recorded runs, newest first. With a run ID the full record is shown.

Examples:
  frege history
  frege history --failed --limit 5
  frege history --origin playground
  frege history --stats
  frege history --prune 168h   # delete runs older than a week`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "only failed runs")
	historyCmd.Flags().StringVar(&historyOrigin, "origin", "", "only runs from cli, watch, playground or repl")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "delete runs older than this duration")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "show totals instead of runs")
}

func runHistory(cmd *cobra.Command, args []string) error {
	history, err := openHistory()
	if err != nil {
		return err
	}
	if history == nil {
		return errors.New("run history is disabled in the configuration")
	}
	defer history.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case historyPrune > 0:
		n, err := history.Prune(ctx, historyPrune)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "pruned %d runs older than %s\n", n, historyPrune)
		return nil

	case historyStats:
		stats, err := history.Stats(ctx)
		if err != nil {
			return err
		}
		printStats(out, stats)
		return nil

	case len(args) == 1:
		rec, err := history.Get(ctx, args[0])
		if err != nil {
			return err
		}
		printRun(out, rec)
		return nil
	}

	runs, err := history.List(ctx, store.RunFilter{
		Origin:     store.Origin(historyOrigin),
		OnlyFailed: historyFailed,
		Limit:      historyLimit,
	})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return nil
	}

	for _, r := range runs {
		status := "[+]"
		if r.Failed() {
			status = "[-]"
		}
		fmt.Fprintf(out, "%s %s  %s  %-10s %8s  %s\n",
			status, shortID(r.ID), r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Origin, r.Duration.Round(time.Microsecond), r.Preview())
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printRun(out io.Writer, r *store.RunRecord) {
	fmt.Fprintf(out, "ID:       %s\n", r.ID)
	fmt.Fprintf(out, "Started:  %s\n", r.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "Origin:   %s\n", r.Origin)
	fmt.Fprintf(out, "Duration: %s\n", r.Duration)
	fmt.Fprintln(out, "Source:")
	for _, line := range strings.Split(strings.TrimRight(r.Source, "\n"), "\n") {
		fmt.Fprintf(out, "  %s\n", line)
	}
	if len(r.Output) > 0 {
		fmt.Fprintln(out, "Output:")
		for _, line := range r.Output {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
	if r.Failed() {
		fmt.Fprintf(out, "Error (%s): %s\n", r.ErrorKind, r.ErrorMessage)
	}
}

func printStats(out io.Writer, s *store.RunStats) {
	fmt.Fprintf(out, "Total:  %d\n", s.Total)
	fmt.Fprintf(out, "Failed: %d\n", s.Failed)
	if !s.LastRun.IsZero() {
		fmt.Fprintf(out, "Last:   %s\n", s.LastRun.Local().Format(time.RFC3339))
	}
	printCounts(out, "By origin:", s.ByOrigin)
	printCounts(out, "By error kind:", s.ByKind)
}

func printCounts[K ~string](out io.Writer, title string, counts map[K]int64) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	fmt.Fprintln(out, title)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-12s %d\n", k, counts[K(k)])
	}
}
