package cli

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/codeshift/pkg/compliance"
	"github.com/dshills/codeshift/pkg/security"
)

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Scan a project for PII and PHI before migrating it",
		Long: `Scan every readable source file under a project directory for personal
data (emails, SSNs, credit cards, medical identifiers) and report each
finding with its regulation and a remediation hint. Matched values are
truncated in the output.

Examples:
  codeshift scan ./src
  codeshift scan . --output-json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot(args[0])
			if err != nil {
				return err
			}

			detector, err := compliance.NewDetector(root)
			if err != nil {
				return err
			}

			paths, err := collectScanPaths(root)
			if err != nil {
				return err
			}

			report, err := detector.ScanDir(paths)
			if err != nil {
				return err
			}

			if outputJSON {
				return printJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			for _, finding := range report.Findings {
				_, _ = fmt.Fprintf(out, "%s:%d:%d [%s/%s] %s: %s\n",
					finding.File, finding.Line, finding.Column,
					finding.Severity, finding.Regulation, finding.Type, finding.Match)
				_, _ = fmt.Fprintf(out, "  → %s\n", finding.Recommendation)
			}

			_, _ = fmt.Fprintf(out, "\nScanned %d file(s), %d with personal data, %d finding(s)\n",
				report.FilesScanned, report.FilesWithPII, len(report.Findings))

			if len(report.Findings) > 0 {
				return fmt.Errorf("personal data found; review before migrating")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "output-json", false, "Output report as JSON")

	return cmd
}

// collectScanPaths walks root and returns root-relative paths of every
// file with an allowed extension. Hidden directories, node_modules, and
// backup directories are not descended into.
func collectScanPaths(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if !security.AllowedExtensions[strings.ToLower(filepath.Ext(name))] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return paths, nil
}
