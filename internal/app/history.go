package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envoic/internal/disk"
	"github.com/blackwell-systems/envoic/internal/output"
	"github.com/blackwell-systems/envoic/internal/store"
)

var (
	historyFlagLimit  int
	historyFlagFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded scans and deletions",
	Long: `History lists scans and deletions saved with --record (or with
record: true in the config file). Nothing is recorded by default.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyFlagLimit, "limit", 10, "Number of entries per section")
	historyCmd.Flags().StringVar(&historyFlagFormat, "format", "table", "Output format: table, json or yaml")

	rootCmd.AddCommand(historyCmd)
}

type historyView struct {
	Scans      []store.Scan     `json:"scans" yaml:"scans"`
	Deletions  []store.Deletion `json:"deletions" yaml:"deletions"`
	BytesFreed int64            `json:"bytes_freed" yaml:"bytes_freed"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	format, err := outputFormat(historyFlagFormat)
	if err != nil {
		return err
	}
	if historyFlagLimit < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", historyFlagLimit)
	}

	w := cmd.OutOrStdout()
	if !disk.Exists(dbPath()) {
		fmt.Fprintln(w, "No history recorded yet. Use --record or set record: true in the config file.")
		return nil
	}

	db, err := openStore()
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer db.Close()

	view, err := loadHistory(db, historyFlagLimit)
	if err != nil {
		return err
	}
	if format != "table" {
		return writeStructured(w, format, view)
	}

	fmt.Fprintln(w, output.Section("Scans"))
	fmt.Fprintln(w)
	if len(view.Scans) == 0 {
		fmt.Fprintln(w, output.StyleMuted.Render(" (no scans recorded)"))
	} else {
		tbl := output.NewTable("#", "When", "Path", "Envs", "Stale", "Size", "Artifacts").AlignRight(0, 3, 4, 5, 6)
		for _, s := range view.Scans {
			tbl.AddRow(
				strconv.FormatInt(s.ID, 10),
				s.TakenAt.Local().Format(timeLayout),
				output.ShortenPath(s.ScanPath, 40),
				strconv.Itoa(s.EnvCount),
				strconv.Itoa(s.StaleCount),
				output.FormatBytes(s.TotalSizeBytes),
				strconv.Itoa(s.ArtifactCount),
			)
		}
		fmt.Fprint(w, tbl.Render())
	}

	fmt.Fprintln(w, output.Section("Deletions"))
	fmt.Fprintln(w)
	if len(view.Deletions) == 0 {
		fmt.Fprintln(w, output.StyleMuted.Render(" (no deletions recorded)"))
	} else {
		tbl := output.NewTable("#", "When", "Command", "Root", "Deleted", "Failed", "Freed").AlignRight(0, 4, 5, 6)
		for _, d := range view.Deletions {
			freed := output.FormatBytes(d.BytesFreed)
			if d.DryRun {
				freed = output.StyleMuted.Render("dry-run " + output.FormatBytes(d.WouldFreeBytes))
			}
			tbl.AddRow(
				strconv.FormatInt(d.ID, 10),
				d.DeletedAt.Local().Format(timeLayout),
				d.Command,
				output.ShortenPath(d.ScanRoot, 40),
				strconv.Itoa(d.DeletedCount),
				strconv.Itoa(d.FailedCount),
				freed,
			)
		}
		fmt.Fprint(w, tbl.Render())
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Total freed"), output.StyleValue.Render(output.FormatBytes(view.BytesFreed)))
	return nil
}

func loadHistory(db *store.DB, limit int) (historyView, error) {
	var view historyView
	var err error
	if view.Scans, err = db.ListScans(limit); err != nil {
		return view, fmt.Errorf("listing scans: %w", err)
	}
	if view.Deletions, err = db.ListDeletions(limit); err != nil {
		return view, fmt.Errorf("listing deletions: %w", err)
	}
	if view.BytesFreed, err = db.TotalBytesFreed(); err != nil {
		return view, fmt.Errorf("summing freed bytes: %w", err)
	}
	if view.Scans == nil {
		view.Scans = []store.Scan{}
	}
	if view.Deletions == nil {
		view.Deletions = []store.Deletion{}
	}
	return view, nil
}
