// Package store provides SQLite access for the opt-in scan and deletion
// history.
package store

import "time"

// Scan is one recorded scan run.
type Scan struct {
	ID              int64     `json:"id" yaml:"id"`
	TakenAt         time.Time `json:"taken_at" yaml:"taken_at"`
	Command         string    `json:"command" yaml:"command"`
	Version         string    `json:"version" yaml:"version"`
	ScanPath        string    `json:"scan_path" yaml:"scan_path"`
	Hostname        string    `json:"hostname" yaml:"hostname"`
	ScanDepth       int       `json:"scan_depth" yaml:"scan_depth"`
	DurationSeconds float64   `json:"duration_seconds" yaml:"duration_seconds"`
	EnvCount        int       `json:"env_count" yaml:"env_count"`
	StaleCount      int       `json:"stale_count" yaml:"stale_count"`
	TotalSizeBytes  int64     `json:"total_size_bytes" yaml:"total_size_bytes"`
	ArtifactCount   int       `json:"artifact_count" yaml:"artifact_count"`
	ArtifactBytes   int64     `json:"artifact_bytes" yaml:"artifact_bytes"`
}

// ScanEnvironment is one environment seen by a recorded scan.
type ScanEnvironment struct {
	ID            int64  `json:"id" yaml:"id"`
	ScanID        int64  `json:"scan_id" yaml:"scan_id"`
	Path          string `json:"path" yaml:"path"`
	EnvType       string `json:"env_type" yaml:"env_type"`
	PythonVersion string `json:"python_version,omitempty" yaml:"python_version,omitempty"`
	// SizeBytes is nil when the scan was shallow.
	SizeBytes *int64 `json:"size_bytes" yaml:"size_bytes"`
	IsStale   bool   `json:"is_stale" yaml:"is_stale"`
}

// Deletion is one recorded deletion pass.
type Deletion struct {
	ID             int64     `json:"id" yaml:"id"`
	DeletedAt      time.Time `json:"deleted_at" yaml:"deleted_at"`
	Command        string    `json:"command" yaml:"command"`
	ScanRoot       string    `json:"scan_root" yaml:"scan_root"`
	DryRun         bool      `json:"dry_run" yaml:"dry_run"`
	SelectedCount  int       `json:"selected_count" yaml:"selected_count"`
	DeletedCount   int       `json:"deleted_count" yaml:"deleted_count"`
	FailedCount    int       `json:"failed_count" yaml:"failed_count"`
	SkippedCount   int       `json:"skipped_count" yaml:"skipped_count"`
	BytesFreed     int64     `json:"bytes_freed" yaml:"bytes_freed"`
	WouldFreeBytes int64     `json:"would_free_bytes" yaml:"would_free_bytes"`
}

// DeletedItem is the per-path outcome of a deletion pass.
type DeletedItem struct {
	ID         int64  `json:"id" yaml:"id"`
	DeletionID int64  `json:"deletion_id" yaml:"deletion_id"`
	Path       string `json:"path" yaml:"path"`
	Outcome    string `json:"outcome" yaml:"outcome"`
	Bytes      int64  `json:"bytes" yaml:"bytes"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}
