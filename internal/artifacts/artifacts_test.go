package artifacts

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBytes(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

// entryFor returns the DirEntry for name inside dir.
func entryFor(t *testing.T, dir, name string) fs.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		if e.Name() == name {
			return e
		}
	}
	t.Fatalf("entry %q not found in %s", name, dir)
	return nil
}

func TestMatch_PatternTable(t *testing.T) {
	tests := []struct {
		name     string
		file     bool
		pattern  string
		category Category
		safety   Safety
	}{
		{"__pycache__", false, "__pycache__", CategoryBytecodeCache, SafetyAlwaysSafe},
		{"mod.pyc", true, "*.pyc", CategoryBytecodeCache, SafetyAlwaysSafe},
		{"mod.pyo", true, "*.pyo", CategoryBytecodeCache, SafetyAlwaysSafe},
		{".mypy_cache", false, ".mypy_cache", CategoryToolCache, SafetyAlwaysSafe},
		{".pytest_cache", false, ".pytest_cache", CategoryToolCache, SafetyAlwaysSafe},
		{".ruff_cache", false, ".ruff_cache", CategoryToolCache, SafetyAlwaysSafe},
		{".tox", false, ".tox", CategoryTestEnv, SafetyCareful},
		{".nox", false, ".nox", CategoryTestEnv, SafetyCareful},
		{".eggs", false, ".eggs", CategoryBuildArtifact, SafetyUsuallySafe},
		{"mypkg.egg-info", false, "*.egg-info", CategoryBuildArtifact, SafetyCareful},
		{".ipynb_checkpoints", false, ".ipynb_checkpoints", CategoryCoverageNotebook, SafetyAlwaysSafe},
		{"htmlcov", false, "htmlcov", CategoryCoverageNotebook, SafetyAlwaysSafe},
		{".coverage", true, ".coverage", CategoryCoverageNotebook, SafetyAlwaysSafe},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tc.name)
			if tc.file {
				writeBytes(t, path, 4)
			} else {
				require.NoError(t, os.Mkdir(path, 0o755))
			}

			got, ok := Match(entryFor(t, dir, tc.name), dir)

			require.True(t, ok)
			assert.Equal(t, tc.pattern, got.Pattern)
			assert.Equal(t, tc.category, got.Category)
			assert.Equal(t, tc.safety, got.Safety)
			assert.True(t, filepath.IsAbs(got.Path))
			assert.Nil(t, got.SizeBytes)
		})
	}
}

func TestMatch_WrongEntryType(t *testing.T) {
	dir := t.TempDir()
	writeBytes(t, filepath.Join(dir, "__pycache__"), 1)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "odd.pyc"), 0o755))

	_, ok := Match(entryFor(t, dir, "__pycache__"), dir)
	assert.False(t, ok, "a file named __pycache__ is not a cache dir")

	_, ok = Match(entryFor(t, dir, "odd.pyc"), dir)
	assert.False(t, ok, "a directory ending in .pyc is not bytecode")
}

func TestMatch_DistBuildRequireProjectMarker(t *testing.T) {
	for _, marker := range []string{"pyproject.toml", "setup.py", "setup.cfg"} {
		t.Run(marker, func(t *testing.T) {
			dir := t.TempDir()
			writeBytes(t, filepath.Join(dir, marker), 1)
			require.NoError(t, os.Mkdir(filepath.Join(dir, "dist"), 0o755))
			require.NoError(t, os.Mkdir(filepath.Join(dir, "build"), 0o755))

			got, ok := Match(entryFor(t, dir, "dist"), dir)
			require.True(t, ok)
			assert.Equal(t, "dist", got.Pattern)
			assert.Equal(t, SafetyUsuallySafe, got.Safety)

			_, ok = Match(entryFor(t, dir, "build"), dir)
			assert.True(t, ok)
		})
	}

	t.Run("no marker", func(t *testing.T) {
		dir := t.TempDir()
		writeBytes(t, filepath.Join(dir, "package.json"), 1)
		require.NoError(t, os.Mkdir(filepath.Join(dir, "dist"), 0o755))

		_, ok := Match(entryFor(t, dir, "dist"), dir)
		assert.False(t, ok)
	})
}

func TestMatch_NoMatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0o755))
	writeBytes(t, filepath.Join(dir, "main.py"), 1)

	_, ok := Match(entryFor(t, dir, "src"), dir)
	assert.False(t, ok)
	_, ok = Match(entryFor(t, dir, "main.py"), dir)
	assert.False(t, ok)
}

func TestComputeSize(t *testing.T) {
	dir := t.TempDir()
	writeBytes(t, filepath.Join(dir, "a", "one.bin"), 10)
	writeBytes(t, filepath.Join(dir, "a", "sub", "two.bin"), 22)

	assert.Equal(t, int64(32), ComputeSize(filepath.Join(dir, "a")))
	assert.Equal(t, int64(10), ComputeSize(filepath.Join(dir, "a", "one.bin")))
	assert.Equal(t, int64(0), ComputeSize(filepath.Join(dir, "missing")))
}

func TestComputeSize_SymlinkCountsLinkOnly(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "big.bin")
	writeBytes(t, target, 4096)
	link := filepath.Join(dir, "cache", "link")
	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0o755))
	if err := os.Symlink(target, link); err != nil {
		t.Skip("symlinks not supported:", err)
	}

	linkInfo, err := os.Lstat(link)
	require.NoError(t, err)

	assert.Equal(t, linkInfo.Size(), ComputeSize(link))
	assert.Equal(t, linkInfo.Size(), ComputeSize(filepath.Join(dir, "cache")))
}

func sized(path, pattern string, safety Safety, category Category, size int64) Artifact {
	return Artifact{Path: path, Pattern: pattern, Safety: safety, Category: category, SizeBytes: &size}
}

func TestSummarize_RollsUpIdenticalPatterns(t *testing.T) {
	var items []Artifact
	for _, p := range []string{"/r/c/__pycache__", "/r/a/__pycache__", "/r/b/__pycache__"} {
		items = append(items, sized(p, "__pycache__", SafetyAlwaysSafe, CategoryBytecodeCache, 16))
	}

	got := Summarize(items)

	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, int64(48), got[0].TotalSizeBytes)
	assert.Equal(t, "/r/a/__pycache__", got[0].Items[0].Path)
	assert.Equal(t, "/r/c/__pycache__", got[0].Items[2].Path)
}

func TestSummarize_OrdersByPatternTable(t *testing.T) {
	items := []Artifact{
		sized("/r/.coverage", ".coverage", SafetyAlwaysSafe, CategoryCoverageNotebook, 1),
		sized("/r/.tox", ".tox", SafetyCareful, CategoryTestEnv, 1),
		{Path: "/r/x", Pattern: "zz-custom", Safety: SafetyCareful, Category: CategoryToolCache},
		sized("/r/__pycache__", "__pycache__", SafetyAlwaysSafe, CategoryBytecodeCache, 1),
	}

	got := Summarize(items)

	var patterns []string
	for _, s := range got {
		patterns = append(patterns, s.Pattern)
	}
	assert.Equal(t, []string{"__pycache__", ".tox", ".coverage", "zz-custom"}, patterns)
}

func TestSummarize_UnsizedCountsAsZero(t *testing.T) {
	got := Summarize([]Artifact{{Path: "/a", Pattern: "htmlcov", Category: CategoryCoverageNotebook}})
	require.Len(t, got, 1)
	assert.Equal(t, int64(0), got[0].TotalSizeBytes)
}

func TestSummarizeWithEmpty(t *testing.T) {
	items := []Artifact{sized("/r/.tox", ".tox", SafetyCareful, CategoryTestEnv, 100)}

	got := SummarizeWithEmpty(items)

	require.Len(t, got, len(PatternNames()))
	for i, name := range PatternNames() {
		assert.Equal(t, name, got[i].Pattern)
		if name == ".tox" {
			assert.Equal(t, 1, got[i].Count)
			assert.Equal(t, int64(100), got[i].TotalSizeBytes)
			continue
		}
		assert.Zero(t, got[i].Count)
		assert.Zero(t, got[i].TotalSizeBytes)
	}
}

func TestFlattenAndTotals(t *testing.T) {
	groups := Summarize([]Artifact{
		sized("/r/a/__pycache__", "__pycache__", SafetyAlwaysSafe, CategoryBytecodeCache, 5),
		sized("/r/.mypy_cache", ".mypy_cache", SafetyAlwaysSafe, CategoryToolCache, 7),
	})

	assert.Len(t, Flatten(groups), 2)
	assert.Equal(t, 2, TotalCount(groups))
	assert.Equal(t, int64(12), TotalSize(groups))
}

func TestSafetyTextAndNotes(t *testing.T) {
	assert.Equal(t, "safe to delete", SafetyText(SafetyAlwaysSafe))
	assert.Equal(t, "usually safe", SafetyText(SafetyUsuallySafe))
	assert.Equal(t, "careful", SafetyText(SafetyCareful))
	assert.NotEmpty(t, CarefulNote("*.egg-info"))
	assert.Empty(t, CarefulNote("__pycache__"))
}

func TestHiddenPatternNames(t *testing.T) {
	names := HiddenPatternNames()
	assert.Contains(t, names, ".tox")
	assert.Contains(t, names, ".ipynb_checkpoints")
	assert.NotContains(t, names, ".coverage", "file patterns are not directories")
	assert.NotContains(t, names, "__pycache__")
}
