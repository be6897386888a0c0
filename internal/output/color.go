// Package output provides styled terminal rendering helpers for envoic.
package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/blackwell-systems/envoic/internal/artifacts"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorSuccess is used for safe tiers and completed deletions.
	ColorSuccess = lipgloss.Color("#66bb6a")

	// ColorError is used for failures and careful tiers.
	ColorError = lipgloss.Color("#ef5350")

	// ColorWarning is used for stale markers and usually-safe tiers.
	ColorWarning = lipgloss.Color("#fff59d")

	// ColorMuted is used for secondary text and borders.
	ColorMuted = lipgloss.Color("#888888")
)

// Styles provides reusable lipgloss styles.
var (
	// StyleHeader is used for section headers.
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StyleBold = lipgloss.NewStyle().
			Bold(true)

	// StyleLabel is used for summary labels.
	StyleLabel = lipgloss.NewStyle().
			Width(18)

	// StyleValue is used for summary values.
	StyleValue = lipgloss.NewStyle().
			Bold(true)
)

// noColor tracks whether color output is disabled.
var noColor bool

// colored holds the styles in effect before color was disabled.
var colored = [...]*lipgloss.Style{
	&StyleHeader, &StyleSuccess, &StyleError, &StyleWarning,
	&StyleMuted, &StyleBold, &StyleLabel, &StyleValue,
}

var saved = snapshot()

func snapshot() []lipgloss.Style {
	out := make([]lipgloss.Style, len(colored))
	for i, s := range colored {
		out[i] = *s
	}
	return out
}

// SetNoColor disables or enables color output globally.
// When disabled, all package-level styles are reassigned to unstyled
// renderers; enabling restores them.
func SetNoColor(disabled bool) {
	if disabled == noColor {
		return
	}
	noColor = disabled
	if !disabled {
		for i, s := range colored {
			*s = saved[i]
		}
		return
	}
	saved = snapshot()
	plain := lipgloss.NewStyle()
	StyleHeader = plain
	StyleSuccess = plain
	StyleError = plain
	StyleWarning = plain
	StyleMuted = plain
	StyleBold = plain
	StyleLabel = plain.Width(18)
	StyleValue = plain
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// SafetyStyle picks the style used to render a safety tier.
func SafetyStyle(s artifacts.Safety) lipgloss.Style {
	switch s {
	case artifacts.SafetyAlwaysSafe:
		return StyleSuccess
	case artifacts.SafetyUsuallySafe:
		return StyleWarning
	case artifacts.SafetyCareful:
		return StyleError
	default:
		panic("output: unhandled safety " + s.String())
	}
}
