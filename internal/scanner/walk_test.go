package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/envoic/internal/artifacts"
	"github.com/blackwell-systems/envoic/internal/disk"
)

func touch(t *testing.T, path string) {
	t.Helper()
	writeBytes(t, path, 0)
}

func writeBytes(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func writeText(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}

func patterns(items []artifacts.Artifact) map[string][]string {
	out := make(map[string][]string)
	for _, a := range items {
		out[a.Pattern] = append(out[a.Pattern], a.Path)
	}
	return out
}

func TestScan_FindsNamedAndPyvenvDirs(t *testing.T) {
	root := t.TempDir()
	named := filepath.Join(root, "project", ".venv")
	touch(t, filepath.Join(named, "bin", "activate"))
	custom := filepath.Join(root, "other", "custom")
	writeText(t, filepath.Join(custom, "pyvenv.cfg"), "version = 3.11.0\n")

	got := Scan(root, Options{MaxDepth: 4})

	assert.Contains(t, got.Environments, disk.Resolve(named))
	assert.Contains(t, got.Environments, disk.Resolve(custom))
}

func TestScan_RespectsDepthExactly(t *testing.T) {
	root := t.TempDir()
	env := filepath.Join(root, "a", "b", "c", ".venv") // depth 4
	touch(t, filepath.Join(env, "bin", "activate"))

	for depth := 1; depth <= 6; depth++ {
		got := Scan(root, Options{MaxDepth: depth})
		if depth >= 4 {
			assert.Contains(t, got.Environments, disk.Resolve(env), "depth %d", depth)
		} else {
			assert.NotContains(t, got.Environments, disk.Resolve(env), "depth %d", depth)
		}
	}
}

func TestScan_SkipsVCSAndDependencyDirs(t *testing.T) {
	root := t.TempDir()
	for _, parent := range []string{".git", "node_modules", ".hg", ".svn", ".idea"} {
		touch(t, filepath.Join(root, parent, ".venv", "bin", "activate"))
	}

	got := Scan(root, Options{MaxDepth: 5})

	assert.Empty(t, got.Environments)
}

func TestScan_AllowedHiddenDirsAreSearched(t *testing.T) {
	root := t.TempDir()
	toxEnv := filepath.Join(root, "proj", ".tox", "py311")
	writeText(t, filepath.Join(toxEnv, "pyvenv.cfg"), "version = 3.11.2\n")

	got := Scan(root, Options{MaxDepth: 5, IncludeArtifacts: false})

	assert.Contains(t, got.Environments, disk.Resolve(toxEnv))
}

func TestScan_DoesNotDescendIntoEnvironment(t *testing.T) {
	root := t.TempDir()
	outer := filepath.Join(root, ".venv")
	writeText(t, filepath.Join(outer, "pyvenv.cfg"), "version = 3.12.0\n")
	nested := filepath.Join(outer, "lib", "venv")
	touch(t, filepath.Join(nested, "bin", "activate"))

	got := Scan(root, Options{MaxDepth: 6})

	assert.Equal(t, []string{disk.Resolve(outer)}, got.Environments)
}

func TestScan_RecursesIntoFalsePositiveNames(t *testing.T) {
	root := t.TempDir()
	fake := filepath.Join(root, "env")
	inner := filepath.Join(fake, "inner", ".venv")
	touch(t, filepath.Join(inner, "bin", "activate"))

	got := Scan(root, Options{MaxDepth: 5})

	assert.Contains(t, got.Environments, disk.Resolve(fake))
	assert.Contains(t, got.Environments, disk.Resolve(inner))
}

func TestScan_DetectsPycacheAndToolCaches(t *testing.T) {
	root := t.TempDir()
	writeBytes(t, filepath.Join(root, "a", "__pycache__", "mod.cpython-311.pyc"), 16)
	writeBytes(t, filepath.Join(root, "a", "b", "__pycache__", "mod.cpython-312.pyc"), 16)
	mkdir(t, filepath.Join(root, ".mypy_cache"))
	mkdir(t, filepath.Join(root, ".pytest_cache"))
	mkdir(t, filepath.Join(root, ".ruff_cache"))

	got := patterns(Scan(root, Options{MaxDepth: 5, IncludeArtifacts: true}).Artifacts)

	assert.Len(t, got["__pycache__"], 2)
	assert.Len(t, got[".mypy_cache"], 1)
	assert.Len(t, got[".pytest_cache"], 1)
	assert.Len(t, got[".ruff_cache"], 1)
	assert.Empty(t, got["*.pyc"], "files inside a matched cache dir are not reported")
}

func TestScan_DistOnlyInPythonProjects(t *testing.T) {
	root := t.TempDir()
	py := filepath.Join(root, "python_proj")
	writeText(t, filepath.Join(py, "pyproject.toml"), "[project]\nname='x'\n")
	mkdir(t, filepath.Join(py, "dist"))
	front := filepath.Join(root, "frontend")
	mkdir(t, filepath.Join(front, "dist"))
	mkdir(t, filepath.Join(front, "build"))

	got := patterns(Scan(root, Options{MaxDepth: 4, IncludeArtifacts: true}).Artifacts)

	assert.Equal(t, []string{disk.Resolve(filepath.Join(py, "dist"))}, got["dist"])
	assert.Empty(t, got["build"])
}

func TestScan_ArtifactsInsideEnvironmentExcluded(t *testing.T) {
	root := t.TempDir()
	venv := filepath.Join(root, "project", ".venv")
	writeText(t, filepath.Join(venv, "pyvenv.cfg"), "version = 3.12.0\n")
	writeBytes(t, filepath.Join(venv, "lib", "python3.12", "__pycache__", "x.pyc"), 8)
	writeBytes(t, filepath.Join(root, "project", "__pycache__", "y.pyc"), 8)

	got := Scan(root, Options{MaxDepth: 6, IncludeArtifacts: true})

	require.Len(t, got.Artifacts, 1)
	assert.Equal(t, disk.Resolve(filepath.Join(root, "project", "__pycache__")), got.Artifacts[0].Path)
}

func TestScan_EggInfoSuffix(t *testing.T) {
	root := t.TempDir()
	egg := filepath.Join(root, "pkg", "mypkg.egg-info")
	mkdir(t, egg)

	got := patterns(Scan(root, Options{MaxDepth: 4, IncludeArtifacts: true}).Artifacts)

	assert.Equal(t, []string{disk.Resolve(egg)}, got["*.egg-info"])
}

func TestScan_LooseBytecodeFiles(t *testing.T) {
	root := t.TempDir()
	writeBytes(t, filepath.Join(root, "legacy", "mod.pyc"), 3)
	writeBytes(t, filepath.Join(root, "legacy", ".coverage"), 3)

	got := patterns(Scan(root, Options{MaxDepth: 3, IncludeArtifacts: true}).Artifacts)

	assert.Len(t, got["*.pyc"], 1)
	assert.Len(t, got[".coverage"], 1)
}

func TestScan_NoArtifactsFlag(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, ".mypy_cache"))

	got := Scan(root, Options{MaxDepth: 3, IncludeArtifacts: false})

	assert.Empty(t, got.Artifacts)
}

func TestScan_ArtifactSizeOnlyWhenDeep(t *testing.T) {
	root := t.TempDir()
	writeBytes(t, filepath.Join(root, "pkg", "__pycache__", "m.pyc"), 16)

	shallow := Scan(root, Options{MaxDepth: 3, IncludeArtifacts: true})
	require.Len(t, shallow.Artifacts, 1)
	assert.Nil(t, shallow.Artifacts[0].SizeBytes)

	deep := Scan(root, Options{MaxDepth: 3, IncludeArtifacts: true, Deep: true})
	require.Len(t, deep.Artifacts, 1)
	require.NotNil(t, deep.Artifacts[0].SizeBytes)
	assert.Equal(t, int64(16), *deep.Artifacts[0].SizeBytes)
}

func TestScan_ResultsSortedByPath(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		touch(t, filepath.Join(root, name, ".venv", "bin", "activate"))
		mkdir(t, filepath.Join(root, name, "__pycache__"))
	}

	got := Scan(root, Options{MaxDepth: 3, IncludeArtifacts: true})

	require.Len(t, got.Environments, 3)
	assert.IsIncreasing(t, got.Environments)
	require.Len(t, got.Artifacts, 3)
	for i := 1; i < len(got.Artifacts); i++ {
		assert.Less(t, got.Artifacts[i-1].Path, got.Artifacts[i].Path)
	}
}

func TestScan_ExcludePatterns(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "vendor", "lib", ".venv", "bin", "activate"))
	mkdir(t, filepath.Join(root, "vendor", "__pycache__"))
	kept := filepath.Join(root, "app", ".venv")
	touch(t, filepath.Join(kept, "bin", "activate"))

	got := Scan(root, Options{MaxDepth: 5, IncludeArtifacts: true, Exclude: []string{"vendor"}})

	assert.Equal(t, []string{disk.Resolve(kept)}, got.Environments)
	assert.Empty(t, got.Artifacts)
}

func TestScan_OnVisitSeesEveryListedDirectory(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "a", "b"))

	var visited []string
	Scan(root, Options{MaxDepth: 5, OnVisit: func(dir string) { visited = append(visited, dir) }})

	resolved := disk.Resolve(root)
	assert.Equal(t, []string{
		resolved,
		filepath.Join(resolved, "a"),
		filepath.Join(resolved, "a", "b"),
	}, visited)
}

func TestScan_UnreadableDirectoryIsEmpty(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	touch(t, filepath.Join(locked, ".venv", "bin", "activate"))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	got := Scan(root, Options{MaxDepth: 5})

	assert.Empty(t, got.Environments)
}

func TestScan_MissingRoot(t *testing.T) {
	got := Scan(filepath.Join(t.TempDir(), "missing"), Options{MaxDepth: 3, IncludeArtifacts: true})

	assert.Empty(t, got.Environments)
	assert.Empty(t, got.Artifacts)
}
