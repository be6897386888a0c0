package artifacts

import "strings"

type entryKind int

const (
	entryDir entryKind = iota
	entryFile
)

// pattern is one row of the artifact table. Exactly one of name and suffix
// is set.
type pattern struct {
	name     string
	suffix   string
	kind     entryKind
	category Category
	safety   Safety
}

// label is the pattern's display and grouping key: the literal name, or
// "*<suffix>" for suffix patterns.
func (p pattern) label() string {
	if p.name != "" {
		return p.name
	}
	return "*" + p.suffix
}

func (p pattern) matchesName(name string) bool {
	if p.name != "" {
		return name == p.name
	}
	return strings.HasSuffix(name, p.suffix)
}

// patternTable is tested in order; the first match wins. Its order is also
// the display order of summaries.
var patternTable = []pattern{
	{name: "__pycache__", kind: entryDir, category: CategoryBytecodeCache, safety: SafetyAlwaysSafe},
	{suffix: ".pyc", kind: entryFile, category: CategoryBytecodeCache, safety: SafetyAlwaysSafe},
	{suffix: ".pyo", kind: entryFile, category: CategoryBytecodeCache, safety: SafetyAlwaysSafe},
	{name: ".mypy_cache", kind: entryDir, category: CategoryToolCache, safety: SafetyAlwaysSafe},
	{name: ".pytest_cache", kind: entryDir, category: CategoryToolCache, safety: SafetyAlwaysSafe},
	{name: ".ruff_cache", kind: entryDir, category: CategoryToolCache, safety: SafetyAlwaysSafe},
	{name: ".tox", kind: entryDir, category: CategoryTestEnv, safety: SafetyCareful},
	{name: ".nox", kind: entryDir, category: CategoryTestEnv, safety: SafetyCareful},
	{name: "dist", kind: entryDir, category: CategoryBuildArtifact, safety: SafetyUsuallySafe},
	{name: "build", kind: entryDir, category: CategoryBuildArtifact, safety: SafetyUsuallySafe},
	{name: ".eggs", kind: entryDir, category: CategoryBuildArtifact, safety: SafetyUsuallySafe},
	{suffix: ".egg-info", kind: entryDir, category: CategoryBuildArtifact, safety: SafetyCareful},
	{name: ".ipynb_checkpoints", kind: entryDir, category: CategoryCoverageNotebook, safety: SafetyAlwaysSafe},
	{name: "htmlcov", kind: entryDir, category: CategoryCoverageNotebook, safety: SafetyAlwaysSafe},
	{name: ".coverage", kind: entryFile, category: CategoryCoverageNotebook, safety: SafetyAlwaysSafe},
}

// projectGated patterns only count inside a Python project, since dist and
// build are common in every ecosystem.
var projectGated = map[string]bool{"dist": true, "build": true}

// projectMarkers identify a Python project directory.
var projectMarkers = []string{"pyproject.toml", "setup.py", "setup.cfg"}

var safetyText = map[Safety]string{
	SafetyAlwaysSafe:  "safe to delete",
	SafetyUsuallySafe: "usually safe",
	SafetyCareful:     "careful",
}

var carefulNotes = map[string]string{
	"*.egg-info": "Editable installs (pip install -e .) depend on these.",
	".tox":       "Tox environments take significant time to recreate.",
	".nox":       "Nox environments take significant time to recreate.",
}

// PatternNames returns the pattern labels in priority order.
func PatternNames() []string {
	names := make([]string, len(patternTable))
	for i, p := range patternTable {
		names[i] = p.label()
	}
	return names
}

// HiddenPatternNames returns the dot-prefixed directory pattern names, which
// the scanner must not treat as ordinary hidden directories.
func HiddenPatternNames() []string {
	var names []string
	for _, p := range patternTable {
		if p.kind == entryDir && strings.HasPrefix(p.name, ".") {
			names = append(names, p.name)
		}
	}
	return names
}

// SafetyText returns the human label for a safety tier.
func SafetyText(s Safety) string {
	text, ok := safetyText[s]
	if !ok {
		panic("artifacts: no safety text for " + s.String())
	}
	return text
}

// CarefulNote returns the extra warning shown before deleting a careful
// pattern, or "" when there is none.
func CarefulNote(patternName string) string {
	return carefulNotes[patternName]
}

func lookupPattern(label string) (pattern, bool) {
	for _, p := range patternTable {
		if p.label() == label {
			return p, true
		}
	}
	return pattern{}, false
}

func patternPosition(label string) int {
	for i, p := range patternTable {
		if p.label() == label {
			return i
		}
	}
	return len(patternTable) + 1
}
