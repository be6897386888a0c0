package manager

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/envoic/internal/artifacts"
	"github.com/blackwell-systems/envoic/internal/detector"
	"github.com/blackwell-systems/envoic/internal/output"
)

// SelectRequest is what a Selector offers to the user.
type SelectRequest struct {
	Environments []detector.Environment
	Groups       []artifacts.Summary
	ScanRoot     string
	// StaleOnly pre-selects stale environments.
	StaleOnly bool
}

// Selection is what the user picked.
type Selection struct {
	Environments []detector.Environment
	Groups       []artifacts.Summary
}

// Empty reports whether nothing was picked.
func (s Selection) Empty() bool {
	return len(s.Environments) == 0 && len(s.Groups) == 0
}

// Items flattens the selection: environments first, then every artifact of
// every picked group.
func (s Selection) Items() []Item {
	items := EnvironmentItems(s.Environments)
	return append(items, ArtifactItems(artifacts.Flatten(s.Groups))...)
}

// CarefulGroups returns the picked groups in the careful tier.
func (s Selection) CarefulGroups() []artifacts.Summary {
	var out []artifacts.Summary
	for _, g := range s.Groups {
		if g.Safety == artifacts.SafetyCareful {
			out = append(out, g)
		}
	}
	return out
}

// Selector lets the user choose what to delete.
type Selector interface {
	Select(req SelectRequest) (Selection, error)
}

// LineSelector asks for comma-separated indexes on a plain line prompt.
// It works on any input stream.
type LineSelector struct {
	Console *Console
	Now     func() time.Time
}

// Select implements Selector.
func (s *LineSelector) Select(req SelectRequest) (Selection, error) {
	var sel Selection
	out := s.Console.out
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	if len(req.Environments) > 0 {
		envs, err := s.selectEnvironments(out, req, now())
		if err != nil {
			return Selection{}, err
		}
		sel.Environments = envs
	}

	groups := nonEmpty(req.Groups)
	if len(groups) > 0 {
		picked, err := s.selectGroups(out, groups)
		if err != nil {
			return Selection{}, err
		}
		sel.Groups = picked
	}
	return sel, nil
}

func (s *LineSelector) selectEnvironments(out io.Writer, req SelectRequest, now time.Time) ([]detector.Environment, error) {
	envs := req.Environments
	labels := make([]string, len(envs))
	for i, e := range envs {
		labels[i] = output.DisplayPath(e.Path, req.ScanRoot, output.PathModeRelative)
	}
	width := columnWidth(labels)

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Found %d environments. Enter numbers to delete (comma-separated):\n", len(envs))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "      %s\n", tableHeader(width))
	fmt.Fprintf(out, "      %s\n", strings.Repeat("-", width+24))

	var stale []string
	for i, e := range envs {
		marker := " "
		if req.StaleOnly && e.IsStale {
			marker = "x"
			stale = append(stale, strconv.Itoa(i+1))
		}
		fmt.Fprintf(out, "  %-3d [%s] %s\n", i+1, marker, environmentRow(e, labels[i], width, now))
	}

	answer, err := s.Console.Prompt("Select [e.g. 1,3,5]", strings.Join(stale, ","))
	if err != nil && !isEOF(err) {
		return nil, err
	}
	var picked []detector.Environment
	for _, i := range parseIndexes(answer, len(envs)) {
		picked = append(picked, envs[i])
	}
	return picked, nil
}

func (s *LineSelector) selectGroups(out io.Writer, groups []artifacts.Summary) ([]artifacts.Summary, error) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Artifact selections (comma-separated indexes, blank to skip):")
	for i, g := range groups {
		fmt.Fprintf(out, "  %-3d %s [%s]\n", i+1, groupLabel(g), artifacts.SafetyText(g.Safety))
	}

	answer, err := s.Console.Prompt("Select artifact groups", "")
	if err != nil && !isEOF(err) {
		return nil, err
	}
	var picked []artifacts.Summary
	for _, i := range parseIndexes(answer, len(groups)) {
		picked = append(picked, groups[i])
	}
	return picked, nil
}

// parseIndexes turns "3, 1,x,9" into sorted unique zero-based indexes,
// ignoring tokens that are not digits or fall outside 1..n.
func parseIndexes(raw string, n int) []int {
	seen := make([]bool, n)
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" || strings.TrimLeft(token, "0123456789") != "" {
			continue
		}
		idx, err := strconv.Atoi(token)
		if err != nil || idx < 1 || idx > n {
			continue
		}
		seen[idx-1] = true
	}
	var out []int
	for i, ok := range seen {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

func nonEmpty(groups []artifacts.Summary) []artifacts.Summary {
	var out []artifacts.Summary
	for _, g := range groups {
		if g.Count > 0 {
			out = append(out, g)
		}
	}
	return out
}

func tableHeader(width int) string {
	return fmt.Sprintf("%-*s %-8s %6s  %5s", width, "Path", "Python", "Size", "Age")
}

func environmentRow(e detector.Environment, label string, width int, now time.Time) string {
	version := "-"
	if e.PythonVersion != nil {
		version = *e.PythonVersion
	}
	stale := ""
	if e.IsStale {
		stale = "  STALE"
	}
	return fmt.Sprintf("%-*s %-8s %6s  %5s%s",
		width, label, version, output.FormatSize(e.SizeBytes), output.FormatAge(e.Modified, now), stale)
}

func groupLabel(g artifacts.Summary) string {
	size := "-"
	if g.TotalSizeBytes > 0 {
		size = output.FormatBytes(g.TotalSizeBytes)
	}
	return fmt.Sprintf("All %-18s (%-8s) %6s", g.Pattern, countLabel(g), size)
}
