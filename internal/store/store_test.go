package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTest(t)
	require.NoError(t, db.Migrate())

	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, v)
}

func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "envoic.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	assert.FileExists(t, path)
}

func TestRecordScan_RoundTrip(t *testing.T) {
	db := openTest(t)
	size := int64(4096)
	taken := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := db.RecordScan(&Scan{
		TakenAt:         taken,
		Command:         "scan",
		Version:         "1.0.0",
		ScanPath:        "/home/u/code",
		Hostname:        "box",
		ScanDepth:       5,
		DurationSeconds: 0.25,
		EnvCount:        2,
		StaleCount:      1,
		TotalSizeBytes:  size,
		ArtifactCount:   3,
		ArtifactBytes:   99,
	}, []ScanEnvironment{
		{Path: "/home/u/code/b/.venv", EnvType: "venv", PythonVersion: "3.12.1", SizeBytes: &size, IsStale: true},
		{Path: "/home/u/code/a/.venv", EnvType: "conda"},
	})
	require.NoError(t, err)

	scans, err := db.ListScans(10)
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, id, scans[0].ID)
	assert.True(t, taken.Equal(scans[0].TakenAt))
	assert.Equal(t, "/home/u/code", scans[0].ScanPath)
	assert.Equal(t, 1, scans[0].StaleCount)

	envs, err := db.GetScanEnvironments(id)
	require.NoError(t, err)
	require.Len(t, envs, 2)
	assert.Equal(t, "/home/u/code/a/.venv", envs[0].Path)
	assert.Nil(t, envs[0].SizeBytes)
	assert.Empty(t, envs[0].PythonVersion)
	require.NotNil(t, envs[1].SizeBytes)
	assert.Equal(t, size, *envs[1].SizeBytes)
	assert.Equal(t, "3.12.1", envs[1].PythonVersion)
	assert.True(t, envs[1].IsStale)
}

func TestListScans_NewestFirstAndLimit(t *testing.T) {
	db := openTest(t)
	for _, p := range []string{"/one", "/two", "/three"} {
		_, err := db.RecordScan(&Scan{Command: "scan", ScanPath: p}, nil)
		require.NoError(t, err)
	}

	scans, err := db.ListScans(2)
	require.NoError(t, err)
	require.Len(t, scans, 2)
	assert.Equal(t, "/three", scans[0].ScanPath)
	assert.Equal(t, "/two", scans[1].ScanPath)
}

func TestRecordDeletion_RoundTrip(t *testing.T) {
	db := openTest(t)

	id, err := db.RecordDeletion(&Deletion{
		Command:       "manage",
		ScanRoot:      "/r",
		SelectedCount: 2,
		DeletedCount:  1,
		FailedCount:   1,
		BytesFreed:    100,
	}, []DeletedItem{
		{Path: "/r/a/.venv", Outcome: "deleted", Bytes: 100},
		{Path: "/r/b/.venv", Outcome: "failed_permission", Error: "permission denied"},
	})
	require.NoError(t, err)

	_, err = db.RecordDeletion(&Deletion{Command: "clean", ScanRoot: "/r", DryRun: true, WouldFreeBytes: 500}, nil)
	require.NoError(t, err)

	list, err := db.ListDeletions(10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].DryRun)
	assert.Equal(t, "manage", list[1].Command)

	items, err := db.GetDeletedItems(id)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "deleted", items[0].Outcome)
	assert.Empty(t, items[0].Error)
	assert.Equal(t, "permission denied", items[1].Error)

	freed, err := db.TotalBytesFreed()
	require.NoError(t, err)
	assert.Equal(t, int64(100), freed)
}
