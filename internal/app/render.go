package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/envoic/internal/artifacts"
	"github.com/blackwell-systems/envoic/internal/detector"
	"github.com/blackwell-systems/envoic/internal/output"
	"github.com/blackwell-systems/envoic/internal/scanner"
)

const timeLayout = "2006-01-02 15:04:05"

// humanOut is where prose goes: stdout normally, stderr when --json keeps
// stdout for the machine-readable document.
func humanOut(cmd *cobra.Command) io.Writer {
	if flagJSON {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeStructured emits v in a machine-readable format.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		return writeJSON(w, v)
	case "yaml":
		return writeYAML(w, v)
	default:
		return fmt.Errorf("unknown structured format %q", format)
	}
}

func labelLine(w io.Writer, label, value string) {
	fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render(label), output.StyleValue.Render(value))
}

func versionOf(env detector.Environment) string {
	if env.PythonVersion == nil {
		return "-"
	}
	return *env.PythonVersion
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// renderReport prints the full scan report.
func renderReport(w io.Writer, r *scanner.Result, staleDays int, mode output.PathMode, showArtifacts bool, now time.Time) {
	fmt.Fprintln(w, output.Section("envoic: Python Environment Report"))
	fmt.Fprintln(w)
	labelLine(w, "Date", r.Timestamp.Local().Format(timeLayout))
	labelLine(w, "Host", r.Hostname)
	labelLine(w, "Scan Path", output.ShortenPath(r.ScanPath, 48))
	labelLine(w, "Scan Depth", strconv.Itoa(r.ScanDepth))
	labelLine(w, "Duration", fmt.Sprintf("%.2fs", r.DurationSeconds))
	labelLine(w, "Envs Found", strconv.Itoa(len(r.Environments)))
	labelLine(w, "Total Size", output.FormatBytes(r.TotalSizeBytes))
	labelLine(w, fmt.Sprintf("Stale >%dd", staleDays), strconv.Itoa(r.StaleCount()))
	if len(r.Artifacts) > 0 {
		labelLine(w, "Artifacts", fmt.Sprintf("%d (%s)", len(r.Artifacts), output.FormatBytes(artifacts.TotalSize(r.ArtifactSummary))))
	}

	fmt.Fprintln(w, output.Section("Environments"))
	fmt.Fprintln(w)
	renderEnvironmentTable(w, r.Environments, r.ScanPath, mode, now)

	fmt.Fprintln(w, output.Section("Size Distribution"))
	fmt.Fprintln(w)
	renderSizeDistribution(w, r.Environments, r.ScanPath, mode)

	switch {
	case showArtifacts:
		fmt.Fprintln(w, output.Section("Artifacts"))
		fmt.Fprintln(w)
		renderArtifactTable(w, r.ArtifactSummary)
	case len(r.Artifacts) > 0:
		fmt.Fprintln(w)
		fmt.Fprintln(w, output.StyleMuted.Render(fmt.Sprintf(" %d artifacts found; run with --show-artifacts for the breakdown.", len(r.Artifacts))))
	}
}

func renderEnvironmentTable(w io.Writer, envs []detector.Environment, root string, mode output.PathMode, now time.Time) {
	if len(envs) == 0 {
		fmt.Fprintln(w, output.StyleMuted.Render(" (no environments found)"))
		return
	}
	tbl := output.NewTable("#", "Path", "Type", "Python", "Size", "Age", "").AlignRight(0, 4, 5)
	for i, env := range envs {
		stale := ""
		if env.IsStale {
			stale = output.StyleWarning.Render("STALE")
		}
		tbl.AddRow(
			strconv.Itoa(i+1),
			output.DisplayPath(env.Path, root, mode),
			env.Kind.String(),
			versionOf(env),
			output.FormatSize(env.SizeBytes),
			output.FormatAge(env.Modified, now),
			stale,
		)
	}
	fmt.Fprint(w, tbl.Render())
}

func renderSizeDistribution(w io.Writer, envs []detector.Environment, root string, mode output.PathMode) {
	if len(envs) == 0 {
		fmt.Fprintln(w, output.StyleMuted.Render(" (no environments)"))
		return
	}
	var sized []detector.Environment
	var largest int64
	for _, env := range envs {
		if env.SizeBytes != nil {
			sized = append(sized, env)
			largest = max(largest, *env.SizeBytes)
		}
	}
	if len(sized) == 0 {
		fmt.Fprintln(w, output.StyleMuted.Render(" (run with --deep to include size data)"))
		return
	}
	for _, env := range sized {
		label := output.DisplayPath(env.Path, root, mode)
		fmt.Fprintf(w, " %s %-24s %6s\n",
			output.StyleHeader.Render(output.BarChart(*env.SizeBytes, largest, 24)),
			output.ShortenPath(label, 24),
			output.FormatSize(env.SizeBytes))
	}
}

func renderArtifactTable(w io.Writer, groups []artifacts.Summary) {
	if len(groups) == 0 {
		fmt.Fprintln(w, output.StyleMuted.Render(" (no artifacts found)"))
		return
	}
	tbl := output.NewTable("Pattern", "Category", "Safety", "Count", "Size").AlignRight(3, 4)
	for _, g := range groups {
		size := "-"
		if g.TotalSizeBytes > 0 {
			size = output.FormatBytes(g.TotalSizeBytes)
		}
		tbl.AddRow(
			g.Pattern,
			g.Category.String(),
			output.SafetyStyle(g.Safety).Render(artifacts.SafetyText(g.Safety)),
			strconv.Itoa(g.Count),
			size,
		)
	}
	fmt.Fprint(w, tbl.Render())
}

// renderList prints the compact environment listing.
func renderList(w io.Writer, envs []detector.Environment, root string, mode output.PathMode, now time.Time) {
	renderEnvironmentTable(w, envs, root, mode, now)
}

// renderInfo prints the detail view for one environment.
func renderInfo(w io.Writer, env detector.Environment, top []string, activation string) {
	fmt.Fprintln(w, output.Section("envoic: Environment Detail"))
	fmt.Fprintln(w)
	labelLine(w, "Path", env.Path)
	labelLine(w, "Type", env.Kind.String())
	labelLine(w, "Python", versionOf(env))
	labelLine(w, "Size", output.FormatSize(env.SizeBytes))
	packages := 0
	if env.PackageCount != nil {
		packages = *env.PackageCount
	}
	labelLine(w, "Packages", strconv.Itoa(packages))
	labelLine(w, "Modified", formatTime(env.Modified))
	labelLine(w, "Created", formatTime(env.Created))
	labelLine(w, "Activate", activation)
	if len(env.Signals) > 0 {
		labelLine(w, "Signals", strings.Join(env.Signals, ", "))
	}

	fmt.Fprintln(w, output.Section("Top Packages"))
	fmt.Fprintln(w)
	if len(top) == 0 {
		fmt.Fprintln(w, output.StyleMuted.Render(" (no package metadata found)"))
		return
	}
	for i, name := range top {
		fmt.Fprintf(w, " %2d. %s\n", i+1, name)
	}
}
