package disk

import (
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

func TestUsage_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bin")
	writeBytes(t, path, 1234)

	assert.Equal(t, int64(1234), Usage(path))
}

func TestUsage_DirectoryIsRecursiveSum(t *testing.T) {
	root := t.TempDir()
	writeBytes(t, filepath.Join(root, "a"), 100)
	writeBytes(t, filepath.Join(root, "sub", "b"), 200)
	writeBytes(t, filepath.Join(root, "sub", "deeper", "c"), 300)

	assert.Equal(t, int64(600), Usage(root))
}

func TestUsage_MissingPathIsZero(t *testing.T) {
	assert.Equal(t, int64(0), Usage(filepath.Join(t.TempDir(), "missing")))
}

func TestUsage_DanglingSymlinkCountsLinkOnly(t *testing.T) {
	root := t.TempDir()
	link := filepath.Join(root, "dangling")
	target := filepath.Join(root, "gone")
	require.NoError(t, os.Symlink(target, link))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), Usage(link))

	dir := filepath.Join(root, "dir")
	writeBytes(t, filepath.Join(dir, "base"), 50)
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "dangling")))
	assert.Equal(t, int64(50)+info.Size(), Usage(dir))
}

func TestUsage_SymlinkedDirectoryIsNotFollowed(t *testing.T) {
	root := t.TempDir()
	big := filepath.Join(root, "big")
	writeBytes(t, filepath.Join(big, "blob"), 10_000)

	dir := filepath.Join(root, "dir")
	writeBytes(t, filepath.Join(dir, "small"), 10)
	link := filepath.Join(dir, "to-big")
	require.NoError(t, os.Symlink(big, link))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.Equal(t, int64(10)+info.Size(), Usage(dir))
}

func TestUsage_UnreadableSubdirectoryIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := t.TempDir()
	writeBytes(t, filepath.Join(root, "visible"), 70)
	writeBytes(t, filepath.Join(root, "also", "visible"), 30)
	locked := filepath.Join(root, "locked")
	writeBytes(t, filepath.Join(locked, "hidden"), 5000)
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	assert.Equal(t, int64(100), Usage(root))
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	base := Resolve(root)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "target"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(base, "target"), filepath.Join(base, "link")))

	assert.Equal(t, filepath.Join(base, "target"), Resolve(filepath.Join(base, "link")))
	assert.Equal(t, filepath.Join(base, "target"), Resolve(filepath.Join(base, "target", "..", "target")))
	assert.Equal(t, filepath.Join(base, "missing"), Resolve(filepath.Join(base, "missing")))
}

func TestExistenceChecks(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f")
	writeBytes(t, file, 1)
	dangling := filepath.Join(root, "dangling")
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), dangling))

	assert.True(t, IsDir(root))
	assert.False(t, IsDir(file))
	assert.True(t, IsFile(file))
	assert.False(t, IsFile(root))
	assert.True(t, Exists(dangling))
	assert.False(t, IsFile(dangling))
	assert.False(t, Exists(filepath.Join(root, "missing")))
}
