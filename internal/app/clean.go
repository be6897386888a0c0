package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envoic/internal/artifacts"
	"github.com/blackwell-systems/envoic/internal/detector"
	"github.com/blackwell-systems/envoic/internal/manager"
)

var (
	cleanFlagDepth     int
	cleanFlagDeep      bool
	cleanFlagStaleDays int
	cleanFlagDryRun    bool
	cleanFlagYes       bool
	cleanFlagRecord    bool
	cleanFlagArtifacts bool
	cleanFlagExclude   []string
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Delete stale environments in one pass",
	Long: `Clean deletes every stale environment under path without the
interactive selection step. With --artifacts it also removes artifacts in
the "safe to delete" tier (__pycache__, *.pyc, tool caches). The same
confirmation and dry-run rules as manage apply.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().IntVarP(&cleanFlagDepth, "depth", "d", 5, "Max directory depth")
	cleanCmd.Flags().BoolVar(&cleanFlagDeep, "deep", true, "Compute sizes and package metadata")
	cleanCmd.Flags().IntVar(&cleanFlagStaleDays, "stale-days", 90, "Days since modification after which an environment is stale")
	cleanCmd.Flags().BoolVar(&cleanFlagDryRun, "dry-run", false, "Show what would be deleted without deleting")
	cleanCmd.Flags().BoolVarP(&cleanFlagYes, "yes", "y", false, "Skip the confirmation")
	cleanCmd.Flags().BoolVar(&cleanFlagRecord, "record", false, "Record the deletion in the local history database")
	cleanCmd.Flags().BoolVar(&cleanFlagArtifacts, "artifacts", false, "Also delete always-safe artifacts")
	cleanCmd.Flags().StringSliceVar(&cleanFlagExclude, "exclude", nil, "Gitignore-style pattern to skip (can be repeated)")

	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := resolveSettings(cmd, cfg)
	if err != nil {
		return err
	}
	// clean sizes by default whatever the config says.
	s.deep = cleanFlagDeep
	s.artifacts = cleanFlagArtifacts
	root, err := scanRoot(args)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	result := runPipeline(cmd, root, s, false)
	items := cleanTargets(result.Environments, result.Artifacts)
	if len(items) == 0 {
		fmt.Fprintln(humanOut(cmd), "Nothing to clean.")
		return nil
	}

	summary, err := newManager(cmd).Clean(items, result.ScanPath, cleanFlagDryRun, cleanFlagYes)
	if errors.Is(err, manager.ErrCancelled) {
		return nil
	}
	if err != nil {
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

// cleanTargets picks stale environments and always-safe artifacts.
func cleanTargets(envs []detector.Environment, found []artifacts.Artifact) []manager.Item {
	var items []manager.Item
	for _, env := range envs {
		if env.IsStale {
			items = append(items, manager.EnvironmentItem(env))
		}
	}
	for _, a := range found {
		if a.Safety == artifacts.SafetyAlwaysSafe {
			items = append(items, manager.ArtifactItem(a))
		}
	}
	return items
}
