package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dshills/codeshift/pkg/migrate"
)

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand() *cobra.Command {
	var (
		filter     string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <migration-type> <path>",
		Short: "Report what a migration would change, per file",
		Long: `Analyze a project and report the migration steps and breaking changes
for each candidate file, without modifying anything.

Examples:
  # See which class components would be converted
  codeshift analyze react-hooks ./src

  # Analysis of a Python 2 codebase
  codeshift analyze python3 . --output-json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			migrationType := args[0]
			root, err := resolveRoot(args[1])
			if err != nil {
				return err
			}

			driver, err := migrate.NewDriver(root, migrate.DefaultRegistry(), migrate.Options{
				Filter: filter,
				Logger: runLogger(),
			})
			if err != nil {
				return err
			}

			plans, err := driver.Analyze(cmd.Context(), migrationType, ".")
			if err != nil {
				return err
			}

			if outputJSON {
				return printJSON(cmd, plans)
			}

			out := cmd.OutOrStdout()
			if len(plans) == 0 {
				_, _ = fmt.Fprintln(out, "No changes needed.")
				return nil
			}

			paths := make([]string, 0, len(plans))
			for path := range plans {
				paths = append(paths, path)
			}
			sort.Strings(paths)

			for _, path := range paths {
				plan := plans[path]
				_, _ = fmt.Fprintf(out, "%s\n", path)
				for _, step := range plan.Steps {
					_, _ = fmt.Fprintf(out, "  • %s\n", step.Description)
				}
				for _, breaking := range plan.BreakingChanges {
					_, _ = fmt.Fprintf(out, "  ! %s\n", breaking)
				}
			}
			_, _ = fmt.Fprintf(out, "\n%d file(s) need changes\n", len(plans))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "File filter expression (name, ext, path, size)")
	cmd.Flags().BoolVar(&outputJSON, "output-json", false, "Output plans as JSON")

	return cmd
}
