package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/codeshift/pkg/config"
)

const (
	// Version is the current version of CodeShift
	Version = "1.0.0"
)

// Config holds the global configuration for the CodeShift CLI
type Config struct {
	ConfigDir string
	Debug     bool
}

// GlobalConfig is the shared configuration instance
var GlobalConfig = &Config{}

// NewRootCommand creates the root cobra command for CodeShift
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codeshift",
		Short: "CodeShift - Security-first source code migration",
		Long: `CodeShift migrates source code between framework and language versions
(React class components to hooks, Python 2 to 3) with every file access
validated against the project root, atomic writes, and automatic backups.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if GlobalConfig.ConfigDir != "" {
				config.SetDir(GlobalConfig.ConfigDir)
			}
			if err := config.Init(); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			return nil
		},
	}

	// Persistent flags (available to all subcommands)
	cmd.PersistentFlags().BoolVar(&GlobalConfig.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&GlobalConfig.ConfigDir, "config-dir", "", "Configuration directory (default: ~/.codeshift)")

	// Add subcommands
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewAnalyzeCommand())
	cmd.AddCommand(NewTypesCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewRestoreCommand())

	return cmd
}

// runLogger returns the structured logger for driver internals. Debug
// mode gets a development logger on stderr; otherwise driver logs are
// discarded and only the audit log records what happened.
func runLogger() *zap.Logger {
	if !GlobalConfig.Debug {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// resolveRoot makes a user-supplied project root absolute. The path
// guard only accepts an absolute base, while the CLI takes relative
// paths like "." and "./src".
func resolveRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root %s: %w", path, err)
	}
	return abs, nil
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}
