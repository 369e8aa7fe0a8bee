package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/codeshift/pkg/safeio"
)

// NewRestoreCommand creates the restore command
func NewRestoreCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore a file from its most recent backup",
		Long: `Restore a file from the backup taken before its last migration. The
backup lives in .codeshift-backups/ next to the file and holds the
content from immediately before the most recent write.

Examples:
  codeshift restore src/App.jsx
  codeshift restore scripts/build.py --root ./project`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveRoot(root)
			if err != nil {
				return err
			}
			if err := safeio.Restore(args[0], base); err != nil {
				return fmt.Errorf("failed to restore %s: %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Restored %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Project root the file path is validated against")

	return cmd
}
