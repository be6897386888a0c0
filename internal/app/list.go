package app

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	listFlagDepth     int
	listFlagDeep      bool
	listFlagStaleDays int
	listFlagPathMode  string
	listFlagFormat    string
)

var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "Compact table of environments",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVarP(&listFlagDepth, "depth", "d", 5, "Max directory depth")
	listCmd.Flags().BoolVar(&listFlagDeep, "deep", false, "Compute sizes and package metadata")
	listCmd.Flags().IntVar(&listFlagStaleDays, "stale-days", 90, "Days since modification after which an environment is stale")
	listCmd.Flags().StringVar(&listFlagPathMode, "path-mode", "name", "Path labels: name, relative or absolute")
	listCmd.Flags().StringVar(&listFlagFormat, "format", "table", "Output format: table, json or yaml")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := resolveSettings(cmd, cfg)
	if err != nil {
		return err
	}
	s.artifacts = false
	format, err := outputFormat(listFlagFormat)
	if err != nil {
		return err
	}
	root, err := scanRoot(args)
	if err != nil {
		return err
	}

	result := runPipeline(cmd, root, s, format != "table")
	if format != "table" {
		return writeStructured(cmd.OutOrStdout(), format, result.Environments)
	}
	renderList(cmd.OutOrStdout(), result.Environments, result.ScanPath, s.pathMode, time.Now())
	return nil
}
