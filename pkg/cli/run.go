package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/codeshift/pkg/audit"
	"github.com/dshills/codeshift/pkg/config"
	"github.com/dshills/codeshift/pkg/history"
	"github.com/dshills/codeshift/pkg/migrate"
	"github.com/dshills/codeshift/pkg/security"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var (
		dryRun      bool
		filter      string
		profilePath string
		outputJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "run <migration-type> <path>",
		Short: "Apply a migration to a project directory",
		Long: `Apply a migration to every candidate file under a project directory.

Every file is validated against the project root before it is read, and
rewritten atomically with a backup in .codeshift-backups/. Runs are
recorded in the history database.

Examples:
  # Convert React class components to hooks
  codeshift run react-hooks ./src

  # Preview a Python 2 to 3 migration without writing
  codeshift run python3 ./scripts --dry-run

  # Narrow the file set with a filter expression
  codeshift run python3 . --filter 'size < 100000 && !hasPrefix(path, "vendor/")'

  # Run a saved profile
  codeshift run --profile migrate.json`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			migrationType, root, err := resolveJob(args, profilePath, &dryRun, &filter)
			if err != nil {
				return err
			}
			root, err = resolveRoot(root)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			auditLog := audit.NewNop()
			if cfg.AuditLog {
				auditLog, err = audit.New(config.AuditLogDir())
				if err != nil {
					return err
				}
			}
			defer func() { _ = auditLog.Close() }()

			driver, err := migrate.NewDriver(root, migrate.DefaultRegistry(), migrate.Options{
				DryRun: dryRun,
				Filter: filter,
				Logger: runLogger(),
			})
			if err != nil {
				auditLog.SecurityViolation("run", err)
				return err
			}

			repo, err := history.NewRepository(config.HistoryDBPath())
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()

			run := history.NewRun(migrationType, root, dryRun)
			if err := repo.Save(run); err != nil {
				return err
			}

			report, err := driver.Run(cmd.Context(), migrationType, ".")
			if err != nil {
				run.Fail()
				_ = repo.Save(run)
				if security.ReasonOf(err) != "" {
					auditLog.SecurityViolation("run", err)
				}
				auditLog.MigrationEvent(migrationType, root, "run", "failed", zap.Error(err))
				return err
			}

			run.Complete(report.Scanned, report.Changed, report.Failed)
			if err := repo.Save(run); err != nil {
				return err
			}

			if !report.DryRun {
				for _, file := range report.Files {
					if file.Status == migrate.StatusChanged {
						auditLog.FileWrite(file.Path, file.Bytes)
					}
				}
			}
			auditLog.MigrationEvent(migrationType, root, "run", "completed",
				zap.String("run_id", run.ID),
				zap.Bool("dry_run", dryRun),
				zap.Int("scanned", report.Scanned),
				zap.Int("changed", report.Changed),
				zap.Int("failed", report.Failed))

			if outputJSON {
				return printJSON(cmd, report)
			}
			printReport(cmd, run.ID, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without writing files")
	cmd.Flags().StringVar(&filter, "filter", "", "File filter expression (name, ext, path, size)")
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Migration profile JSON file")
	cmd.Flags().BoolVar(&outputJSON, "output-json", false, "Output report as JSON")

	return cmd
}

// resolveJob combines positional args, flags, and an optional profile
// into the migration type and project root for a run. Flags win over
// profile values so a profile can be overridden from the command line.
func resolveJob(args []string, profilePath string, dryRun *bool, filter *string) (migrationType, root string, err error) {
	if profilePath != "" {
		profile, err := config.LoadProfile(profilePath)
		if err != nil {
			return "", "", err
		}
		migrationType = profile.Type
		root = profile.Root
		if *filter == "" {
			*filter = profile.Filter
		}
		if profile.DryRun {
			*dryRun = true
		}
	}

	switch len(args) {
	case 2:
		migrationType, root = args[0], args[1]
	case 1:
		migrationType = args[0]
		if root == "" {
			root = "."
		}
	case 0:
		if migrationType == "" {
			return "", "", fmt.Errorf("migration type required (positional argument or --profile)")
		}
	}
	if root == "" {
		root = "."
	}
	return migrationType, root, nil
}

func printReport(cmd *cobra.Command, runID string, report *migrate.Report) {
	out := cmd.OutOrStdout()
	for _, file := range report.Files {
		switch file.Status {
		case migrate.StatusChanged:
			_, _ = fmt.Fprintf(out, "✓ %s\n", file.Path)
		case migrate.StatusFailed:
			_, _ = fmt.Fprintf(out, "✗ %s: %s\n", file.Path, file.Detail)
		case migrate.StatusSkipped:
			if GlobalConfig.Debug {
				_, _ = fmt.Fprintf(out, "- %s (%s)\n", file.Path, file.Detail)
			}
		}
	}

	verb := "changed"
	if report.DryRun {
		verb = "would change"
	}
	_, _ = fmt.Fprintf(out, "\n%s: scanned %d, %s %d, skipped %d, failed %d (run %s)\n",
		report.MigrationType, report.Scanned, verb, report.Changed,
		report.Skipped, report.Failed, runID)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return nil
}
