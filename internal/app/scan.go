package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	scanFlagDepth         int
	scanFlagDeep          bool
	scanFlagStaleDays     int
	scanFlagIncludeDotenv bool
	scanFlagNoArtifacts   bool
	scanFlagShowArtifacts bool
	scanFlagPathMode      string
	scanFlagFormat        string
	scanFlagRecord        bool
	scanFlagExclude       []string
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Report environments and artifacts under a directory",
	Long: `Scan walks the directory tree below path (default: the current
directory) up to --depth levels, classifies every Python environment it
finds and matches build and tool artifacts. Sizes, package counts and
interpreter probing need --deep.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVarP(&scanFlagDepth, "depth", "d", 5, "Max directory depth")
	scanCmd.Flags().BoolVar(&scanFlagDeep, "deep", false, "Compute sizes and package metadata")
	scanCmd.Flags().IntVar(&scanFlagStaleDays, "stale-days", 90, "Days since modification after which an environment is stale")
	scanCmd.Flags().BoolVar(&scanFlagIncludeDotenv, "include-dotenv", false, "Report plain .env directories too")
	scanCmd.Flags().BoolVar(&scanFlagNoArtifacts, "no-artifacts", false, "Skip build and tool artifact detection")
	scanCmd.Flags().BoolVar(&scanFlagShowArtifacts, "show-artifacts", false, "Show the per-pattern artifact breakdown")
	scanCmd.Flags().StringVar(&scanFlagPathMode, "path-mode", "name", "Path labels: name, relative or absolute")
	scanCmd.Flags().StringVar(&scanFlagFormat, "format", "table", "Output format: table, json or yaml")
	scanCmd.Flags().BoolVar(&scanFlagRecord, "record", false, "Record this scan in the local history database")
	scanCmd.Flags().StringSliceVar(&scanFlagExclude, "exclude", nil, "Gitignore-style pattern to skip (can be repeated)")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := resolveSettings(cmd, cfg)
	if err != nil {
		return err
	}
	format, err := outputFormat(scanFlagFormat)
	if err != nil {
		return err
	}
	root, err := scanRoot(args)
	if err != nil {
		return err
	}

	result := runPipeline(cmd, root, s, format != "table")
	if s.record {
		recordScan(cmd.Name(), result)
	}

	w := cmd.OutOrStdout()
	if format != "table" {
		return writeStructured(w, format, result)
	}
	renderReport(w, result, s.staleDays, s.pathMode, scanFlagShowArtifacts, time.Now())
	fmt.Fprintln(w)
	return nil
}
