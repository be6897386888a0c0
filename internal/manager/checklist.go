package manager

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/manifoldco/promptui"

	"github.com/blackwell-systems/envoic/internal/artifacts"
	"github.com/blackwell-systems/envoic/internal/output"
)

const checklistPageSize = 15

type rowKind int

const (
	rowHeader rowKind = iota
	rowEnvironment
	rowGroup
	rowDone
)

// checkRow is one line of the checklist. Fields are read by the promptui
// templates.
type checkRow struct {
	Label    string
	Header   bool
	Checked  bool
	Disabled bool

	kind  rowKind
	index int
}

// Mark is the checkbox shown in front of selectable rows.
func (r checkRow) Mark() string {
	switch {
	case r.Disabled:
		return "[-]"
	case r.Checked:
		return "[x]"
	default:
		return "[ ]"
	}
}

// Selectable reports whether enter does anything on this row.
func (r checkRow) Selectable() bool {
	return !r.Header && !r.Disabled
}

var checklistTemplates = &promptui.SelectTemplates{
	Label:    "{{ . }}",
	Active:   `{{ if .Header }}  {{ .Label | faint }}{{ else if eq .Label "Done" }}▸ {{ .Label | green | bold }}{{ else }}▸ {{ .Mark }} {{ .Label | cyan }}{{ end }}`,
	Inactive: `{{ if .Header }}  {{ .Label | faint }}{{ else if eq .Label "Done" }}  {{ .Label | green }}{{ else }}  {{ .Mark }} {{ if .Disabled }}{{ .Label | faint }}{{ else }}{{ .Label }}{{ end }}{{ end }}`,
	Selected: `{{ "✔" | green }} {{ .Label }}`,
}

// ChecklistSelector is an arrow-key checklist for interactive terminals.
// Enter toggles the row under the cursor; "Done" finishes. Interrupting
// selects nothing. Any other terminal failure falls back to Fallback.
type ChecklistSelector struct {
	Fallback Selector
	Err      io.Writer
	Stdin    io.ReadCloser
	Stdout   io.WriteCloser
	Now      func() time.Time

	run func(sel *promptui.Select) (int, error)
}

// Select implements Selector.
func (c *ChecklistSelector) Select(req SelectRequest) (Selection, error) {
	if len(req.Environments) == 0 && len(req.Groups) == 0 {
		return Selection{}, nil
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	run := c.run
	if run == nil {
		run = func(sel *promptui.Select) (int, error) {
			i, _, err := sel.Run()
			return i, err
		}
	}

	rows := buildRows(req, now())
	cursor := firstSelectable(rows)
	for {
		sel := &promptui.Select{
			Label:        "Select items to delete (enter toggles, choose Done to finish)",
			Items:        rows,
			Templates:    checklistTemplates,
			Size:         min(len(rows), checklistPageSize),
			CursorPos:    cursor,
			HideSelected: true,
			Stdin:        c.Stdin,
			Stdout:       c.Stdout,
		}
		idx, err := run(sel)
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return Selection{}, nil
			}
			if c.Fallback == nil {
				return Selection{}, fmt.Errorf("running checklist: %w", err)
			}
			if c.Err != nil {
				fmt.Fprintln(c.Err, "(interactive selection unavailable, using text fallback)")
			}
			return c.Fallback.Select(req)
		}

		cursor = idx
		row := &rows[idx]
		switch row.kind {
		case rowDone:
			return collect(rows, req), nil
		case rowEnvironment, rowGroup:
			if row.Selectable() {
				row.Checked = !row.Checked
			}
		case rowHeader:
		default:
			panic(fmt.Sprintf("manager: unknown checklist row kind %d", int(row.kind)))
		}
	}
}

// buildRows lays out environments, then artifact groups by safety tier,
// then the Done row. Empty groups are shown disabled.
func buildRows(req SelectRequest, now time.Time) []checkRow {
	var rows []checkRow

	if len(req.Environments) > 0 {
		labels := make([]string, len(req.Environments))
		for i, e := range req.Environments {
			labels[i] = output.DisplayPath(e.Path, req.ScanRoot, output.PathModeRelative)
		}
		width := columnWidth(labels)
		rows = append(rows,
			checkRow{Label: "Environments:", Header: true},
			checkRow{Label: "    " + tableHeader(width), Header: true},
		)
		for i, e := range req.Environments {
			rows = append(rows, checkRow{
				Label:   environmentRow(e, labels[i], width, now),
				Checked: req.StaleOnly && e.IsStale,
				kind:    rowEnvironment,
				index:   i,
			})
		}
	}

	for _, safety := range artifacts.Safeties {
		first := true
		for i, g := range req.Groups {
			if g.Safety != safety {
				continue
			}
			if first {
				rows = append(rows, checkRow{Label: groupTitle(safety), Header: true})
				first = false
			}
			label := groupLabel(g)
			if g.Count == 0 {
				label += "  none found"
			}
			rows = append(rows, checkRow{
				Label:    label,
				Disabled: g.Count == 0,
				kind:     rowGroup,
				index:    i,
			})
		}
	}

	return append(rows, checkRow{Label: "Done", kind: rowDone})
}

func groupTitle(s artifacts.Safety) string {
	switch s {
	case artifacts.SafetyAlwaysSafe:
		return "Artifacts (safe to delete):"
	case artifacts.SafetyUsuallySafe:
		return "Artifacts (usually safe):"
	case artifacts.SafetyCareful:
		return "Artifacts (careful - slow to recreate):"
	default:
		panic("manager: unknown safety " + s.String())
	}
}

func firstSelectable(rows []checkRow) int {
	for i, r := range rows {
		if r.Selectable() {
			return i
		}
	}
	return 0
}

func collect(rows []checkRow, req SelectRequest) Selection {
	var sel Selection
	for _, r := range rows {
		if !r.Checked {
			continue
		}
		switch r.kind {
		case rowEnvironment:
			sel.Environments = append(sel.Environments, req.Environments[r.index])
		case rowGroup:
			sel.Groups = append(sel.Groups, req.Groups[r.index])
		case rowHeader, rowDone:
		default:
			panic(fmt.Sprintf("manager: unknown checklist row kind %d", int(r.kind)))
		}
	}
	return sel
}

