package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/codeshift/pkg/config"
	"github.com/dshills/codeshift/pkg/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	var (
		limit      int
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past migration runs",
		Long: `Show migration runs recorded in the history database, newest first.
With a run ID, show that single run.

Examples:
  codeshift history
  codeshift history --limit 5
  codeshift history 2f1c9c7e-8a44-4e1b-9c63-7a0d4be2f1aa`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := history.NewRepository(config.HistoryDBPath())
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()

			if len(args) == 1 {
				run, err := repo.Get(args[0])
				if err != nil {
					return err
				}
				if outputJSON {
					return printJSON(cmd, run)
				}
				printRun(cmd, run)
				return nil
			}

			runs, err := repo.List(limit)
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(cmd, runs)
			}
			if len(runs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}
			for _, run := range runs {
				printRun(cmd, run)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&outputJSON, "output-json", false, "Output runs as JSON")

	return cmd
}

func printRun(cmd *cobra.Command, run *history.Run) {
	mode := ""
	if run.DryRun {
		mode = " (dry run)"
	}
	duration := ""
	if run.CompletedAt != nil {
		duration = fmt.Sprintf(" in %s", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-12s %s%s  changed %d/%d, failed %d%s\n",
		run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.ID,
		run.MigrationType, run.Status, mode,
		run.FilesChanged, run.FilesScanned, run.FilesFailed, duration)
}
