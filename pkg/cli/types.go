package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dshills/codeshift/pkg/migrate"
	"github.com/dshills/codeshift/pkg/security"
)

// NewTypesCommand creates the types command
func NewTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List available migration types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			registry := migrate.DefaultRegistry()

			implemented := make(map[string]bool)
			_, _ = fmt.Fprintln(out, "Available migrations:")
			for _, name := range registry.Names() {
				migrator, err := registry.Get(name)
				if err != nil {
					return err
				}
				implemented[name] = true
				_, _ = fmt.Fprintf(out, "  %-14s %s\n", name, migrator.Description())
			}

			var recognized []string
			for name := range security.AllowedMigrationTypes {
				if !implemented[name] {
					recognized = append(recognized, name)
				}
			}
			if len(recognized) > 0 {
				sort.Strings(recognized)
				_, _ = fmt.Fprintln(out, "\nRecognized but not yet implemented:")
				for _, name := range recognized {
					_, _ = fmt.Fprintf(out, "  %s\n", name)
				}
			}
			return nil
		},
	}
}
