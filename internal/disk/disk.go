// Package disk provides symlink-aware size and path helpers shared by the
// detector, the artifact matcher and the deletion manager.
package disk

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Usage returns the number of bytes occupied by path.
//
// A symlink reports its own link size and is never followed. A regular file
// reports its size. A directory reports the recursive sum of the files it
// contains, with nested symlinks counted as link size. Entries that cannot be
// stat'd (permission denied, removed mid-walk) are skipped, so the total only
// reflects what could be measured. Usage never fails; an unreadable path
// yields 0.
func Usage(path string) int64 {
	info, err := os.Lstat(path)
	if err != nil {
		return 0
	}
	if info.Mode()&fs.ModeSymlink != 0 || info.Mode().IsRegular() {
		return info.Size()
	}
	if !info.IsDir() {
		return 0
	}

	var total int64
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subdirectory: skip it, keep walking siblings.
			if d != nil && d.IsDir() && p != path {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		total += fi.Size()
		return nil
	})
	return total
}

// Resolve returns an absolute, symlink-free form of path. When the path (or
// one of its parents) cannot be resolved, the cleaned absolute path is
// returned instead.
func Resolve(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// IsDir reports whether path is a directory, following symlinks.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsFile reports whether path is a regular file, following symlinks.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Exists reports whether anything (including a dangling symlink) is at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
