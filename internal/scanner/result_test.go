package scanner

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/envoic/internal/artifacts"
	"github.com/blackwell-systems/envoic/internal/detector"
)

func TestBuild_VenvEndToEnd(t *testing.T) {
	root := t.TempDir()
	venv := filepath.Join(root, "project", ".venv")
	writeText(t, filepath.Join(venv, "pyvenv.cfg"), "version = 3.12.1\n")
	mkdir(t, filepath.Join(venv, "lib", "python3.12", "site-packages", "foo-1.0.dist-info"))

	result := Build(root, Config{MaxDepth: 3, Deep: true, StaleDays: 90, IncludeArtifacts: true})

	require.Len(t, result.Environments, 1)
	env := result.Environments[0]
	assert.Equal(t, detector.KindVenv, env.Kind)
	require.NotNil(t, env.PythonVersion)
	assert.Equal(t, "3.12.1", *env.PythonVersion)
	require.NotNil(t, env.PackageCount)
	assert.Equal(t, 1, *env.PackageCount)
	require.NotNil(t, env.SizeBytes)
	assert.Equal(t, *env.SizeBytes, result.TotalSizeBytes)
	assert.Equal(t, 3, result.ScanDepth)
	assert.NotEmpty(t, result.Hostname)
}

func TestBuild_PycacheRollup(t *testing.T) {
	root := t.TempDir()
	writeBytes(t, filepath.Join(root, "pkgA", "__pycache__", "m.pyc"), 16)
	writeBytes(t, filepath.Join(root, "pkgB", "__pycache__", "m.pyc"), 16)

	result := Build(root, Config{MaxDepth: 5, Deep: true, IncludeArtifacts: true})

	require.Len(t, result.ArtifactSummary, 1)
	s := result.ArtifactSummary[0]
	assert.Equal(t, "__pycache__", s.Pattern)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, int64(32), s.TotalSizeBytes)
}

func TestBuild_FiltersUnknownAndDotenv(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "proj", ".env"))
	mkdir(t, filepath.Join(root, "other", "venv")) // named but empty

	without := Build(root, Config{MaxDepth: 4})
	assert.Empty(t, without.Environments)

	with := Build(root, Config{MaxDepth: 4, IncludeDotenv: true})
	require.Len(t, with.Environments, 1)
	assert.Equal(t, detector.KindDotenvDir, with.Environments[0].Kind)
}

func TestBuild_ShallowLeavesSizesUnknown(t *testing.T) {
	root := t.TempDir()
	writeText(t, filepath.Join(root, "p", ".venv", "pyvenv.cfg"), "version = 3.9.1\n")

	result := Build(root, Config{MaxDepth: 3})

	require.Len(t, result.Environments, 1)
	assert.Nil(t, result.Environments[0].SizeBytes)
	assert.Zero(t, result.TotalSizeBytes)
	assert.NotNil(t, result.Artifacts)
	assert.Empty(t, result.Artifacts)
}

func TestBuild_StaleCount(t *testing.T) {
	r := &Result{Environments: []detector.Environment{{IsStale: true}, {}, {IsStale: true}}}
	assert.Equal(t, 2, r.StaleCount())
}

func TestResult_JSONKeys(t *testing.T) {
	root := t.TempDir()
	writeText(t, filepath.Join(root, "p", ".venv", "pyvenv.cfg"), "version = 3.12.1\n")
	writeBytes(t, filepath.Join(root, "p", "__pycache__", "m.pyc"), 4)

	result := Build(root, Config{MaxDepth: 3, IncludeArtifacts: true})
	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{
		"scan_path", "scan_depth", "duration_seconds", "environments",
		"total_size_bytes", "hostname", "timestamp", "artifacts", "artifact_summary",
	} {
		assert.Contains(t, decoded, key)
	}

	envs := decoded["environments"].([]any)
	require.Len(t, envs, 1)
	env := envs[0].(map[string]any)
	assert.Equal(t, "venv", env["env_type"])
	assert.Equal(t, "3.12.1", env["python_version"])
	assert.Nil(t, env["size_bytes"])
	assert.Contains(t, env, "package_count")

	items := decoded["artifacts"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "bytecode_cache", item["category"])
	assert.Equal(t, "always_safe", item["safety"])
	assert.Equal(t, "__pycache__", item["pattern_matched"])
}

func TestResult_YAMLUsesSameKeys(t *testing.T) {
	size := int64(8)
	result := &Result{
		ScanPath: "/tmp/x",
		Artifacts: []artifacts.Artifact{{
			Path: "/tmp/x/.tox", Category: artifacts.CategoryTestEnv,
			Safety: artifacts.SafetyCareful, SizeBytes: &size, Pattern: ".tox",
		}},
	}

	data, err := yaml.Marshal(result)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "scan_path: /tmp/x")
	assert.Contains(t, text, "safety: careful")
	assert.Contains(t, text, "category: test_env")
	assert.Contains(t, text, "pattern_matched: .tox")
}
