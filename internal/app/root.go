// Package app contains the Cobra command tree for envoic.
package app

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envoic/internal/config"
	"github.com/blackwell-systems/envoic/internal/manager"
	"github.com/blackwell-systems/envoic/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "envoic",
	Short: "Find, inspect and clean up Python environments and build artifacts",
	Long: `envoic walks a directory tree looking for Python virtual environments
(venv, virtualenv, conda, .env directories) and build or tool artifacts
(__pycache__, .pytest_cache, .tox, dist, ...). It reports their size, age
and staleness and can delete them with a confirm-first, dry-run friendly
workflow that never leaves the scanned directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetFlags(0)
		log.SetOutput(cmd.ErrOrStderr())
		if flagNoColor || !stdoutIsTerminal() {
			output.SetNoColor(true)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "envoic", appVersion)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Use a subcommand:")
		fmt.Fprintln(w, "  scan      Report environments and artifacts under a directory")
		fmt.Fprintln(w, "  list      Compact table of environments")
		fmt.Fprintln(w, "  info      Details for a single environment")
		fmt.Fprintln(w, "  manage    Select and delete environments and artifacts")
		fmt.Fprintln(w, "  clean     Delete stale environments in one pass")
		fmt.Fprintln(w, "  history   Show recorded scans and deletions")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, manager.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Aborted.")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies its output preferences.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Output.Color {
		output.SetNoColor(true)
	}
	return cfg, nil
}

// verbosef logs only when --verbose is set.
func verbosef(format string, args ...any) {
	if flagVerbose {
		log.Printf(format, args...)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/envoic/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
