// Package manager walks the user from a selection of environments and
// artifacts to their deletion, guarding every removal with a containment
// check, symlink-safe handling and an explicit confirmation protocol.
package manager

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/blackwell-systems/envoic/internal/artifacts"
	"github.com/blackwell-systems/envoic/internal/detector"
	"github.com/blackwell-systems/envoic/internal/output"
)

var (
	// ErrAborted is returned when the user interrupts a prompt. Nothing has
	// been deleted when it is returned.
	ErrAborted = errors.New("aborted")

	// ErrCancelled is returned when the final confirmation is declined.
	ErrCancelled = errors.New("deletion cancelled")

	// ErrNothingSelected is returned when the selection step picks nothing.
	ErrNothingSelected = errors.New("nothing selected")
)

// Manager runs selection, confirmation and deletion against one terminal.
type Manager struct {
	Out io.Writer
	Err io.Writer

	Prompter Prompter
	Selector Selector

	// PathMode controls how paths are labelled in listings.
	PathMode output.PathMode

	// Verbose logs state transitions.
	Verbose bool

	removeAll func(string) error
	unlink    func(string) error
}

// New returns a Manager that reads answers from in and writes to out and
// errOut, using the line selector.
func New(in io.Reader, out, errOut io.Writer) *Manager {
	console := NewConsole(in, out)
	return &Manager{
		Out:       out,
		Err:       errOut,
		Prompter:  console,
		Selector:  &LineSelector{Console: console},
		PathMode:  output.PathModeRelative,
		removeAll: os.RemoveAll,
		unlink:    os.Remove,
	}
}

func (m *Manager) logf(format string, args ...any) {
	if m.Verbose {
		log.Printf(format, args...)
	}
}

func (m *Manager) display(path, root string) string {
	return output.DisplayPath(path, root, m.PathMode)
}

// ConfirmDeletion lists the items with their sizes and a total, then asks
// the user to type "delete". A dry run only lists and returns false.
// skipConfirm returns true without prompting.
func (m *Manager) ConfirmDeletion(items []Item, root string, dryRun, skipConfirm bool) (bool, error) {
	fmt.Fprintln(m.Out)
	fmt.Fprintln(m.Out, output.StyleWarning.Render("⚠ The following items will be PERMANENTLY DELETED:"))
	fmt.Fprintln(m.Out)

	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = m.display(it.Path(), root)
	}
	width := columnWidth(labels)

	var total int64
	for i, it := range items {
		size := it.KnownSize()
		total += size
		fmt.Fprintf(m.Out, "  %-3d %-*s %6s\n", i+1, width, labels[i], output.FormatBytes(size))
	}
	fmt.Fprintln(m.Out)
	fmt.Fprintf(m.Out, "  Total: %s will be freed\n", output.FormatBytes(total))

	if dryRun {
		fmt.Fprintln(m.Out)
		fmt.Fprintln(m.Out, "DRY RUN: no files will be deleted.")
		return false, nil
	}
	if skipConfirm {
		return true, nil
	}

	answer, err := m.Prompter.Prompt(`Type "delete" to confirm`, "")
	if err != nil {
		if errors.Is(err, ErrAborted) {
			return false, err
		}
		return false, nil
	}
	return answer == "delete", nil
}

// ConfirmCareful warns about careful-tier groups and asks for a y/N answer.
// An empty list needs no confirmation.
func (m *Manager) ConfirmCareful(groups []artifacts.Summary) (bool, error) {
	if len(groups) == 0 {
		return true, nil
	}

	fmt.Fprintln(m.Out)
	fmt.Fprintln(m.Out, output.StyleWarning.Render("⚠ You selected items that may impact your workflow:"))
	fmt.Fprintln(m.Out)
	for _, g := range groups {
		fmt.Fprintf(m.Out, "  %s (%s, %s)\n", g.Pattern, countLabel(g), output.FormatBytes(g.TotalSizeBytes))
		if note := artifacts.CarefulNote(g.Pattern); note != "" {
			fmt.Fprintf(m.Out, "    %s\n", note)
		}
		fmt.Fprintln(m.Out)
	}

	answer, err := m.Prompter.Prompt("Continue with these included? [y/N]", "")
	if err != nil {
		if errors.Is(err, ErrAborted) {
			return false, err
		}
		return false, nil
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Outcome is what happened to one item during DeleteItems.
type Outcome int

const (
	OutcomeDeleted Outcome = iota
	OutcomeWouldDelete
	OutcomeSkippedOutsideRoot
	OutcomeSkippedMissing
	OutcomeFailedPermission
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDeleted:
		return "deleted"
	case OutcomeWouldDelete:
		return "would_delete"
	case OutcomeSkippedOutsideRoot:
		return "skipped_outside_root"
	case OutcomeSkippedMissing:
		return "skipped_missing"
	case OutcomeFailedPermission:
		return "failed_permission"
	case OutcomeFailed:
		return "failed"
	default:
		panic(fmt.Sprintf("manager: unknown outcome %d", int(o)))
	}
}

// ItemResult records the outcome for one item.
type ItemResult struct {
	Path    string
	Outcome Outcome
	Bytes   int64
	Err     error
}

// DeletionSummary tallies a deletion pass.
type DeletionSummary struct {
	SelectedCount  int      `json:"selected_count" yaml:"selected_count"`
	DeletedCount   int      `json:"deleted_count" yaml:"deleted_count"`
	FailedCount    int      `json:"failed_count" yaml:"failed_count"`
	SkippedCount   int      `json:"skipped_count" yaml:"skipped_count"`
	BytesFreed     int64    `json:"bytes_freed" yaml:"bytes_freed"`
	WouldFreeBytes int64    `json:"would_free_bytes" yaml:"would_free_bytes"`
	Errors         []string `json:"errors" yaml:"errors"`
	DryRun         bool     `json:"dry_run" yaml:"dry_run"`

	Results []ItemResult `json:"-" yaml:"-"`
}

// Freed is the byte count worth reporting: what was freed, or for a dry
// run what would have been.
func (s DeletionSummary) Freed() int64 {
	if s.DryRun {
		return s.WouldFreeBytes
	}
	return s.BytesFreed
}

// DeleteItems removes each item that lies within root. Items outside the
// root are skipped with a warning and missing paths are skipped. A symlink
// is unlinked, never followed. A failure on one item does not stop the
// batch. With dryRun nothing is touched and only WouldFreeBytes grows.
func (m *Manager) DeleteItems(items []Item, root string, dryRun bool) DeletionSummary {
	return m.deleteItems(items, root, dryRun, true)
}

func (m *Manager) deleteItems(items []Item, root string, dryRun, echoDryRun bool) DeletionSummary {
	summary := DeletionSummary{
		SelectedCount: len(items),
		Errors:        []string{},
		DryRun:        dryRun,
	}
	record := func(path string, o Outcome, n int64, err error) {
		summary.Results = append(summary.Results, ItemResult{Path: path, Outcome: o, Bytes: n, Err: err})
	}

	for _, it := range items {
		path := it.Path()

		if !IsWithinRoot(path, root) {
			warning := "Skipping outside scan path: " + path
			fmt.Fprintln(m.Err, output.StyleWarning.Render("Warning: "+warning))
			summary.SkippedCount++
			summary.Errors = append(summary.Errors, warning)
			record(path, OutcomeSkippedOutsideRoot, 0, nil)
			continue
		}

		size := ComputeDeletionSize(path)
		summary.WouldFreeBytes += size

		if dryRun {
			if echoDryRun {
				fmt.Fprintf(m.Out, "[dry-run] Would delete %s\n", m.display(path, root))
			}
			record(path, OutcomeWouldDelete, size, nil)
			continue
		}

		info, err := os.Lstat(path)
		if err != nil {
			fmt.Fprintf(m.Out, "Skipping missing path: %s\n", path)
			summary.SkippedCount++
			record(path, OutcomeSkippedMissing, 0, nil)
			continue
		}

		fmt.Fprintf(m.Out, "Deleting %s ...", m.display(path, root))
		if info.Mode()&fs.ModeSymlink != 0 {
			err = m.unlink(path)
		} else {
			err = m.removeAll(path)
		}

		switch {
		case err == nil:
			summary.DeletedCount++
			summary.BytesFreed += size
			record(path, OutcomeDeleted, size, nil)
			fmt.Fprintln(m.Out, " "+output.StyleSuccess.Render("done"))
		case errors.Is(err, fs.ErrPermission):
			summary.FailedCount++
			summary.Errors = append(summary.Errors, err.Error())
			record(path, OutcomeFailedPermission, 0, err)
			fmt.Fprintln(m.Out, " "+output.StyleError.Render("failed (permission denied)"))
		default:
			summary.FailedCount++
			summary.Errors = append(summary.Errors, err.Error())
			record(path, OutcomeFailed, 0, err)
			fmt.Fprintln(m.Out, " "+output.StyleError.Render("failed"))
		}
	}
	return summary
}

// PrintReport writes the post-deletion tally. initialTotal is the number of
// candidates that were offered, used for the remaining count.
func (m *Manager) PrintReport(summary DeletionSummary, initialTotal int) {
	remaining := max(initialTotal-summary.DeletedCount, 0)
	rule := output.StyleMuted.Render(strings.Repeat("─", 58))

	fmt.Fprintln(m.Out, rule)
	if summary.DryRun {
		fmt.Fprintln(m.Out, "  "+output.StyleHeader.Render("DRY RUN SUMMARY"))
	}
	fmt.Fprintf(m.Out, "  Deleted:   %d items\n", summary.DeletedCount)
	fmt.Fprintf(m.Out, "  Failed:    %d\n", summary.FailedCount)
	fmt.Fprintf(m.Out, "  Skipped:   %d\n", summary.SkippedCount)
	fmt.Fprintf(m.Out, "  Freed:     %s\n", output.FormatBytes(summary.Freed()))
	fmt.Fprintf(m.Out, "  Remaining: %d items\n", remaining)
	fmt.Fprintln(m.Out, rule)
}

// State is a step of the Manage workflow.
type State int

const (
	StateSelecting State = iota
	StateCarefulConfirm
	StateFinalConfirm
	StateExecuting
	StateReported
)

func (s State) String() string {
	switch s {
	case StateSelecting:
		return "selecting"
	case StateCarefulConfirm:
		return "careful-confirm"
	case StateFinalConfirm:
		return "final-confirm"
	case StateExecuting:
		return "executing"
	case StateReported:
		return "reported"
	default:
		panic(fmt.Sprintf("manager: unknown state %d", int(s)))
	}
}

// Request describes one interactive management session.
type Request struct {
	Environments []detector.Environment
	// Groups is normally artifacts.SummarizeWithEmpty of the scan.
	Groups    []artifacts.Summary
	ScanRoot  string
	DryRun    bool
	Force     bool
	StaleOnly bool
}

// Manage runs selection, the careful confirmation when careful groups were
// picked, the final confirmation and deletion. Declining the careful
// confirmation reopens the selection. The returned summary is nil whenever
// the error is non-nil.
func (m *Manager) Manage(req Request) (*DeletionSummary, error) {
	var (
		sel     Selection
		items   []Item
		summary DeletionSummary
		dryRun  = req.DryRun
	)
	offered := len(req.Environments) + artifacts.TotalCount(req.Groups)

	state := StateSelecting
	for {
		next := state
		switch state {
		case StateSelecting:
			var err error
			sel, err = m.Selector.Select(SelectRequest{
				Environments: req.Environments,
				Groups:       req.Groups,
				ScanRoot:     req.ScanRoot,
				StaleOnly:    req.StaleOnly,
			})
			if err != nil {
				return nil, err
			}
			if sel.Empty() {
				return nil, ErrNothingSelected
			}
			items = sel.Items()
			next = StateFinalConfirm
			if len(sel.CarefulGroups()) > 0 {
				next = StateCarefulConfirm
			}

		case StateCarefulConfirm:
			ok, err := m.ConfirmCareful(sel.CarefulGroups())
			if err != nil {
				return nil, err
			}
			next = StateFinalConfirm
			if !ok {
				fmt.Fprintln(m.Out, "Careful items not confirmed; back to selection.")
				next = StateSelecting
			}

		case StateFinalConfirm:
			ok, err := m.ConfirmDeletion(items, req.ScanRoot, dryRun, req.Force)
			if err != nil {
				return nil, err
			}
			if !ok && !dryRun {
				fmt.Fprintln(m.Out, "Deletion cancelled.")
				return nil, ErrCancelled
			}
			next = StateExecuting

		case StateExecuting:
			summary = m.deleteItems(items, req.ScanRoot, dryRun, false)
			next = StateReported

		case StateReported:
			m.PrintReport(summary, offered)
			return &summary, nil

		default:
			panic(fmt.Sprintf("manager: unknown state %d", int(state)))
		}
		m.logf("manage: %s -> %s", state, next)
		state = next
	}
}

// Clean is the non-interactive path: confirm and delete the given items.
func (m *Manager) Clean(items []Item, root string, dryRun, force bool) (*DeletionSummary, error) {
	if len(items) == 0 {
		return nil, ErrNothingSelected
	}
	ok, err := m.ConfirmDeletion(items, root, dryRun, force)
	if err != nil {
		return nil, err
	}
	if !ok && !dryRun {
		fmt.Fprintln(m.Out, "Deletion cancelled.")
		return nil, ErrCancelled
	}
	summary := m.deleteItems(items, root, dryRun, false)
	m.PrintReport(summary, len(items))
	return &summary, nil
}

func columnWidth(labels []string) int {
	if len(labels) == 0 {
		return 30
	}
	longest := 0
	for _, l := range labels {
		longest = max(longest, len([]rune(l)))
	}
	return min(max(longest+2, 20), 50)
}

func countLabel(g artifacts.Summary) string {
	noun := "dir"
	if g.IsFilePattern() {
		noun = "file"
	}
	if g.Count != 1 {
		noun += "s"
	}
	return fmt.Sprintf("%d %s", g.Count, noun)
}
