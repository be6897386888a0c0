package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackwell-systems/envoic/internal/detector"
)

// FormatSize renders a byte count compactly: "512B", "1.5K", "12M", "340G".
// A nil size renders as "-".
func FormatSize(n *int64) string {
	if n == nil {
		return "-"
	}
	return FormatBytes(*n)
}

// FormatBytes is FormatSize for a known value.
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%dB", n)
	}
	units := []string{"K", "M", "G", "T"}
	value := float64(n)
	for i, unit := range units {
		value /= 1024
		if value < 1024 || i == len(units)-1 {
			if value >= 100 {
				return fmt.Sprintf("%.0f%s", value, unit)
			}
			return strings.TrimSuffix(fmt.Sprintf("%.1f", value), ".0") + unit
		}
	}
	return fmt.Sprintf("%dB", n)
}

// FormatAge renders the time since t in days, months or years.
func FormatAge(t *time.Time, now time.Time) string {
	if t == nil {
		return "-"
	}
	days := int(now.Sub(*t).Hours() / 24)
	if days < 0 {
		days = 0
	}
	switch {
	case days < 30:
		return fmt.Sprintf("%dd", days)
	case days < 365:
		return fmt.Sprintf("%dmo", days/30)
	default:
		return fmt.Sprintf("%dy", days/365)
	}
}

// BarChart renders value relative to total as a fixed-width bar.
// Example: "[████████░░░░]"
func BarChart(value, total int64, width int) string {
	if width <= 0 {
		width = 24
	}
	if total <= 0 {
		return "[" + strings.Repeat("░", width) + "]"
	}
	filled := int(math.RoundToEven(float64(value) / float64(total) * float64(width)))
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// ShortenPath abbreviates the home directory to "~" and elides the middle
// of paths longer than maxLen.
func ShortenPath(path string, maxLen int) string {
	text := path
	if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(text, home) {
		text = "~" + text[len(home):]
	}
	runes := []rune(text)
	if len(runes) <= maxLen || maxLen <= 3 {
		return text
	}
	keep := maxLen - 3
	prefix := keep / 2
	suffix := keep - prefix
	return string(runes[:prefix]) + "..." + string(runes[len(runes)-suffix:])
}

// PathMode selects how environment paths are labelled in reports.
type PathMode int

const (
	PathModeName PathMode = iota
	PathModeRelative
	PathModeAbsolute
)

func (m PathMode) String() string {
	switch m {
	case PathModeName:
		return "name"
	case PathModeRelative:
		return "relative"
	case PathModeAbsolute:
		return "absolute"
	default:
		panic(fmt.Sprintf("output: unknown path mode %d", int(m)))
	}
}

// ParsePathMode parses "name", "relative" or "absolute".
func ParsePathMode(s string) (PathMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "":
		return PathModeName, nil
	case "relative":
		return PathModeRelative, nil
	case "absolute":
		return PathModeAbsolute, nil
	}
	return PathModeName, fmt.Errorf("invalid path mode %q (want name, relative or absolute)", s)
}

// DisplayPath labels path for humans. A conventional environment directory
// name (".venv", "env", ...) is collapsed onto its parent so that
// "proj/.venv" reads as "proj".
func DisplayPath(path, root string, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return path
	case PathModeName:
		base := filepath.Base(path)
		if detector.IsEnvironmentDirName(base) {
			if parent := filepath.Base(filepath.Dir(path)); parent != "" && parent != string(filepath.Separator) && parent != "." {
				return parent
			}
		}
		return base
	case PathModeRelative:
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return ShortenPath(path, 50)
		}
		if detector.IsEnvironmentDirName(filepath.Base(rel)) {
			rel = filepath.Dir(rel)
		}
		return filepath.ToSlash(rel)
	default:
		panic(fmt.Sprintf("output: unknown path mode %d", int(mode)))
	}
}
