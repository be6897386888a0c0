package artifacts

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/envoic/internal/disk"
)

// Match tests entry (a child of parentDir) against the pattern table and
// returns the artifact for the first matching pattern. Entry types are
// checked without following symlinks. dist and build only match when
// parentDir is a Python project.
func Match(entry fs.DirEntry, parentDir string) (Artifact, bool) {
	for _, p := range patternTable {
		if !entryMatches(entry, p) {
			continue
		}
		label := p.label()
		if projectGated[label] && !IsPythonProject(parentDir) {
			continue
		}
		return Artifact{
			Path:     disk.Resolve(filepath.Join(parentDir, entry.Name())),
			Category: p.category,
			Safety:   p.safety,
			Pattern:  label,
		}, true
	}
	return Artifact{}, false
}

func entryMatches(entry fs.DirEntry, p pattern) bool {
	switch p.kind {
	case entryDir:
		if !entry.IsDir() {
			return false
		}
	case entryFile:
		if !entry.Type().IsRegular() {
			return false
		}
	default:
		panic("artifacts: unhandled entry kind")
	}
	return p.matchesName(entry.Name())
}

// IsPythonProject reports whether dir holds one of the Python project marker
// files.
func IsPythonProject(dir string) bool {
	for _, marker := range projectMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// ComputeSize returns the symlink-aware size of an artifact path. See
// disk.Usage.
func ComputeSize(path string) int64 {
	return disk.Usage(path)
}
