package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/codeshift/pkg/security"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	var inline bool

	cmd := &cobra.Command{
		Use:   "validate <pattern-file>",
		Short: "Validate a custom pattern against the security rules",
		Long: `Validate a user-supplied search pattern against the pattern security
rules: size and line limits, forbidden keywords and modules, and Python
syntax.

Examples:
  # Validate a pattern stored in a file
  codeshift validate pattern.py

  # Validate a pattern passed directly
  codeshift validate --inline 'x = compute(y)'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := args[0]
			if !inline {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read pattern file: %w", err)
				}
				pattern = string(data)
			}

			if err := security.ValidatePattern(pattern); err != nil {
				return fmt.Errorf("pattern rejected: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Pattern is valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&inline, "inline", false, "Treat the argument as the pattern itself, not a file path")

	return cmd
}
