package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envoic/internal/config"
	"github.com/blackwell-systems/envoic/internal/disk"
	"github.com/blackwell-systems/envoic/internal/output"
	"github.com/blackwell-systems/envoic/internal/scanner"
)

// settings is the merged view of config file values and command flags.
// A flag only wins when it was given on the command line.
type settings struct {
	depth         int
	staleDays     int
	deep          bool
	includeDotenv bool
	artifacts     bool
	pathMode      output.PathMode
	exclude       []string
	record        bool
}

func resolveSettings(cmd *cobra.Command, cfg *config.Config) (settings, error) {
	s := settings{
		depth:         cfg.Depth,
		staleDays:     cfg.StaleDays,
		deep:          cfg.Deep,
		includeDotenv: cfg.IncludeDotenv,
		artifacts:     cfg.Artifacts,
		exclude:       append([]string(nil), cfg.Exclude...),
		record:        cfg.Record,
	}
	mode := cfg.PathMode

	f := cmd.Flags()
	if f.Changed("depth") {
		s.depth, _ = f.GetInt("depth")
	}
	if f.Changed("stale-days") {
		s.staleDays, _ = f.GetInt("stale-days")
	}
	if f.Changed("deep") {
		s.deep, _ = f.GetBool("deep")
	}
	if f.Changed("include-dotenv") {
		s.includeDotenv, _ = f.GetBool("include-dotenv")
	}
	if f.Changed("no-artifacts") {
		off, _ := f.GetBool("no-artifacts")
		s.artifacts = !off
	}
	if f.Changed("path-mode") {
		mode, _ = f.GetString("path-mode")
	}
	if f.Changed("exclude") {
		extra, _ := f.GetStringSlice("exclude")
		s.exclude = append(s.exclude, extra...)
	}
	if f.Changed("record") {
		s.record, _ = f.GetBool("record")
	}

	if s.depth < 1 {
		return s, fmt.Errorf("--depth must be at least 1, got %d", s.depth)
	}
	if s.staleDays < 1 {
		return s, fmt.Errorf("--stale-days must be at least 1, got %d", s.staleDays)
	}
	pm, err := output.ParsePathMode(mode)
	if err != nil {
		return s, err
	}
	s.pathMode = pm
	return s, nil
}

// scanRoot picks the directory argument (default ".") and checks it.
func scanRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	if !disk.IsDir(root) {
		return "", fmt.Errorf("%s is not a directory", root)
	}
	return root, nil
}

// runPipeline scans root, showing a spinner on an interactive stderr.
func runPipeline(cmd *cobra.Command, root string, s settings, quiet bool) *scanner.Result {
	progress := output.NewProgress(cmd.ErrOrStderr(), !quiet && stderrIsTerminal())
	visited := 0
	result := scanner.Build(root, scanner.Config{
		MaxDepth:         s.depth,
		StaleDays:        s.staleDays,
		Deep:             s.deep,
		IncludeDotenv:    s.includeDotenv,
		IncludeArtifacts: s.artifacts,
		Exclude:          s.exclude,
		OnVisit: func(dir string) {
			visited++
			progress.Visit(dir)
		},
	})
	progress.Done()
	verbosef("scanned %d directories under %s in %.2fs", visited, result.ScanPath, result.DurationSeconds)
	return result
}

// outputFormat resolves --format, with --json taking precedence.
func outputFormat(format string) (string, error) {
	if flagJSON {
		return "json", nil
	}
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", "table":
		return "table", nil
	case "json", "yaml":
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}
