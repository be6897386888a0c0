// Package artifacts recognizes Python build and tool artifacts, assigns them
// a fixed safety tier and rolls them up per pattern.
package artifacts

import "fmt"

// Category groups artifact patterns by what produced them.
type Category int

const (
	CategoryBytecodeCache Category = iota
	CategoryToolCache
	CategoryTestEnv
	CategoryBuildArtifact
	CategoryCoverageNotebook
)

var categoryNames = [...]string{
	CategoryBytecodeCache:    "bytecode_cache",
	CategoryToolCache:        "tool_cache",
	CategoryTestEnv:          "test_env",
	CategoryBuildArtifact:    "build_artifact",
	CategoryCoverageNotebook: "coverage_notebook",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		panic(fmt.Sprintf("artifacts: unhandled category %d", int(c)))
	}
	return categoryNames[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	for i, name := range categoryNames {
		if name == string(text) {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("unknown artifact category %q", text)
}

// Safety is the fixed deletion-risk tier of a pattern.
type Safety int

const (
	SafetyAlwaysSafe Safety = iota
	SafetyUsuallySafe
	SafetyCareful
)

// Safeties lists every tier in display order.
var Safeties = []Safety{SafetyAlwaysSafe, SafetyUsuallySafe, SafetyCareful}

func (s Safety) String() string {
	switch s {
	case SafetyAlwaysSafe:
		return "always_safe"
	case SafetyUsuallySafe:
		return "usually_safe"
	case SafetyCareful:
		return "careful"
	default:
		panic(fmt.Sprintf("artifacts: unhandled safety %d", int(s)))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Safety) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Safety) UnmarshalText(text []byte) error {
	for _, candidate := range Safeties {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown safety level %q", text)
}

// Artifact is one matched filesystem entry.
type Artifact struct {
	// Path is the resolved absolute path and the dedup key within a scan.
	Path     string   `json:"path" yaml:"path"`
	Category Category `json:"category" yaml:"category"`
	Safety   Safety   `json:"safety" yaml:"safety"`

	// SizeBytes is only set for deep scans.
	SizeBytes *int64 `json:"size_bytes" yaml:"size_bytes"`

	Pattern string `json:"pattern_matched" yaml:"pattern_matched"`
}

// Summary is the per-pattern rollup of a scan's artifacts.
type Summary struct {
	Category       Category   `json:"category" yaml:"category"`
	Safety         Safety     `json:"safety" yaml:"safety"`
	Count          int        `json:"count" yaml:"count"`
	TotalSizeBytes int64      `json:"total_size_bytes" yaml:"total_size_bytes"`
	Items          []Artifact `json:"items" yaml:"items"`
	Pattern        string     `json:"pattern" yaml:"pattern"`
}

// IsFilePattern reports whether the summary's pattern matches files rather
// than directories.
func (s Summary) IsFilePattern() bool {
	p, ok := lookupPattern(s.Pattern)
	return ok && p.kind == entryFile
}
