package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envoic/internal/artifacts"
	"github.com/blackwell-systems/envoic/internal/manager"
	"github.com/blackwell-systems/envoic/internal/output"
)

var (
	manageFlagDepth       int
	manageFlagDeep        bool
	manageFlagStaleOnly   bool
	manageFlagStaleDays   int
	manageFlagDryRun      bool
	manageFlagYes         bool
	manageFlagRecord      bool
	manageFlagNoArtifacts bool
	manageFlagExclude     []string
)

var manageCmd = &cobra.Command{
	Use:   "manage [path]",
	Short: "Select and delete environments and artifacts",
	Long: `Manage scans path, lets you pick environments and artifact groups
to delete, asks again for careful items (.tox, .nox, *.egg-info), lists
everything that will be removed and requires typing "delete" before
anything is touched. Nothing outside path is ever deleted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runManage,
}

func init() {
	manageCmd.Flags().IntVarP(&manageFlagDepth, "depth", "d", 5, "Max directory depth")
	manageCmd.Flags().BoolVar(&manageFlagDeep, "deep", false, "Compute sizes and package metadata")
	manageCmd.Flags().BoolVar(&manageFlagStaleOnly, "stale-only", false, "Pre-select stale environments")
	manageCmd.Flags().IntVar(&manageFlagStaleDays, "stale-days", 90, "Days since modification after which an environment is stale")
	manageCmd.Flags().BoolVar(&manageFlagDryRun, "dry-run", false, "Show what would be deleted without deleting")
	manageCmd.Flags().BoolVarP(&manageFlagYes, "yes", "y", false, "Skip the final confirmation")
	manageCmd.Flags().BoolVar(&manageFlagRecord, "record", false, "Record the deletion in the local history database")
	manageCmd.Flags().BoolVar(&manageFlagNoArtifacts, "no-artifacts", false, "Only offer environments")
	manageCmd.Flags().StringSliceVar(&manageFlagExclude, "exclude", nil, "Gitignore-style pattern to skip (can be repeated)")

	rootCmd.AddCommand(manageCmd)
}

// newManager wires the manager to the command's streams, switching to the
// arrow-key checklist and prompts when attached to a terminal. With --json
// the listings, prompts and report go to stderr so stdout carries only the
// DeletionSummary.
func newManager(cmd *cobra.Command) *manager.Manager {
	m := manager.New(cmd.InOrStdin(), humanOut(cmd), cmd.ErrOrStderr())
	m.Verbose = flagVerbose
	m.PathMode = output.PathModeRelative
	if interactive() {
		checklist := &manager.ChecklistSelector{Fallback: m.Selector, Err: cmd.ErrOrStderr()}
		prompter := manager.TerminalPrompter{}
		if flagJSON {
			checklist.Stdout = os.Stderr
			prompter.Stdout = os.Stderr
		}
		m.Selector = checklist
		m.Prompter = prompter
	}
	return m
}

func runManage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := resolveSettings(cmd, cfg)
	if err != nil {
		return err
	}
	root, err := scanRoot(args)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	result := runPipeline(cmd, root, s, false)
	if len(result.Environments) == 0 && len(result.Artifacts) == 0 {
		fmt.Fprintln(humanOut(cmd), "No environments or artifacts found.")
		return nil
	}

	var groups []artifacts.Summary
	if s.artifacts {
		groups = artifacts.SummarizeWithEmpty(result.Artifacts)
	}

	m := newManager(cmd)
	summary, err := m.Manage(manager.Request{
		Environments: result.Environments,
		Groups:       groups,
		ScanRoot:     result.ScanPath,
		DryRun:       manageFlagDryRun,
		Force:        manageFlagYes,
		StaleOnly:    manageFlagStaleOnly,
	})
	switch {
	case errors.Is(err, manager.ErrNothingSelected):
		fmt.Fprintln(humanOut(cmd), "No items selected.")
		return nil
	case errors.Is(err, manager.ErrCancelled):
		return nil
	case err != nil:
		return err
	}

	if s.record {
		recordDeletion(cmd.Name(), result.ScanPath, *summary)
	}
	if flagJSON {
		return writeJSON(w, summary)
	}
	return nil
}
