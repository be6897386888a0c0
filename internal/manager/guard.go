package manager

import (
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/envoic/internal/disk"
)

// IsWithinRoot reports whether path lies strictly below root. Both sides
// are made absolute and have symlinks in their directories resolved; the
// final component of path is left alone so that a symlink is judged by
// where the link itself lives. The root itself is not within root.
func IsWithinRoot(path, root string) bool {
	p := locate(path)
	r := disk.Resolve(root)
	rel, err := filepath.Rel(r, p)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}

// locate resolves every directory component of path but not the last.
func locate(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	dir, base := filepath.Split(abs)
	if base == "" {
		return disk.Resolve(abs)
	}
	return filepath.Join(disk.Resolve(dir), base)
}

// ComputeDeletionSize is the number of bytes removing path would free:
// a symlink counts only itself and directories are walked without
// following links. Unreadable paths count as zero.
func ComputeDeletionSize(path string) int64 {
	return disk.Usage(path)
}
