package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	Config    string // explicit config file path
	DB        string // conformance store path
	MaxSteps  int    // VM step quota, 0 for unlimited
	Normalize bool   // NFC-normalize patterns and subjects
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the minrx CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "minrx",
		Short: "minrx - a minimal backtracking regex VM",
		Long: `Compile structural patterns to bytecode and run them on a
backtracking virtual machine, with a naive matcher as the reference oracle.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.loadConfig(cmd); err != nil {
				return WrapExitError(ExitCommandError, "loading config", err)
			}

			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.MaxSteps < 0 {
				return NewExitError(ExitCommandError, "--max-steps must not be negative")
			}

			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default: nearest "+DefaultConfigFile+")")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "conformance store (SQLite database path)")
	cmd.PersistentFlags().IntVar(&opts.MaxSteps, "max-steps", 0, "VM step limit per run (0 = unlimited)")
	cmd.PersistentFlags().BoolVar(&opts.Normalize, "normalize", false, "NFC-normalize patterns and subjects")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewFuzzCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))

	return cmd
}

// loadConfig reads --config, or the nearest minrx.toml when no path was
// given, and applies it beneath explicit flags.
func (opts *RootOptions) loadConfig(cmd *cobra.Command) error {
	path := opts.Config
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		found, err := FindConfig(wd)
		if err != nil {
			return err
		}
		if found == "" {
			return nil
		}
		path = found
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	opts.applyConfig(cfg, cmd)
	slog.Debug("loaded config", "path", cfg.Path)
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
