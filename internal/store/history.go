package store

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordScan inserts a scan and its environments in one transaction and
// returns the new scan ID. TakenAt defaults to now.
func (db *DB) RecordScan(s *Scan, envs []ScanEnvironment) (int64, error) {
	if s.TakenAt.IsZero() {
		s.TakenAt = time.Now()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO scans
		(taken_at, command, version, scan_path, hostname, scan_depth, duration_seconds,
		 env_count, stale_count, total_size_bytes, artifact_count, artifact_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.TakenAt.UTC().Format(time.RFC3339), s.Command, s.Version, s.ScanPath, s.Hostname,
		s.ScanDepth, s.DurationSeconds, s.EnvCount, s.StaleCount, s.TotalSizeBytes,
		s.ArtifactCount, s.ArtifactBytes,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting scan: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, e := range envs {
		var version sql.NullString
		if e.PythonVersion != "" {
			version = sql.NullString{String: e.PythonVersion, Valid: true}
		}
		var size sql.NullInt64
		if e.SizeBytes != nil {
			size = sql.NullInt64{Int64: *e.SizeBytes, Valid: true}
		}
		if _, err := tx.Exec(
			`INSERT INTO scan_environments (scan_id, path, env_type, python_version, size_bytes, is_stale)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, e.Path, e.EnvType, version, size, e.IsStale,
		); err != nil {
			return 0, fmt.Errorf("inserting environment %s: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	s.ID = id
	return id, nil
}

// ListScans returns the most recent scans, newest first.
func (db *DB) ListScans(limit int) ([]Scan, error) {
	rows, err := db.conn.Query(
		`SELECT id, taken_at, command, version, scan_path, hostname, scan_depth, duration_seconds,
		 env_count, stale_count, total_size_bytes, artifact_count, artifact_bytes
		 FROM scans ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var scans []Scan
	for rows.Next() {
		var s Scan
		var takenAt string
		if err := rows.Scan(&s.ID, &takenAt, &s.Command, &s.Version, &s.ScanPath, &s.Hostname,
			&s.ScanDepth, &s.DurationSeconds, &s.EnvCount, &s.StaleCount, &s.TotalSizeBytes,
			&s.ArtifactCount, &s.ArtifactBytes); err != nil {
			return nil, err
		}
		s.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

// GetScanEnvironments returns the environments recorded for a scan.
func (db *DB) GetScanEnvironments(scanID int64) ([]ScanEnvironment, error) {
	rows, err := db.conn.Query(
		`SELECT id, scan_id, path, env_type, python_version, size_bytes, is_stale
		 FROM scan_environments WHERE scan_id = ? ORDER BY path`,
		scanID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var envs []ScanEnvironment
	for rows.Next() {
		var e ScanEnvironment
		var version sql.NullString
		var size sql.NullInt64
		if err := rows.Scan(&e.ID, &e.ScanID, &e.Path, &e.EnvType, &version, &size, &e.IsStale); err != nil {
			return nil, err
		}
		e.PythonVersion = version.String
		if size.Valid {
			n := size.Int64
			e.SizeBytes = &n
		}
		envs = append(envs, e)
	}
	return envs, rows.Err()
}

// RecordDeletion inserts a deletion pass and its per-item outcomes.
func (db *DB) RecordDeletion(d *Deletion, items []DeletedItem) (int64, error) {
	if d.DeletedAt.IsZero() {
		d.DeletedAt = time.Now()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO deletions
		(deleted_at, command, scan_root, dry_run, selected_count, deleted_count,
		 failed_count, skipped_count, bytes_freed, would_free_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.DeletedAt.UTC().Format(time.RFC3339), d.Command, d.ScanRoot, d.DryRun,
		d.SelectedCount, d.DeletedCount, d.FailedCount, d.SkippedCount,
		d.BytesFreed, d.WouldFreeBytes,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting deletion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, it := range items {
		var errText sql.NullString
		if it.Error != "" {
			errText = sql.NullString{String: it.Error, Valid: true}
		}
		if _, err := tx.Exec(
			"INSERT INTO deleted_items (deletion_id, path, outcome, bytes, error) VALUES (?, ?, ?, ?, ?)",
			id, it.Path, it.Outcome, it.Bytes, errText,
		); err != nil {
			return 0, fmt.Errorf("inserting item %s: %w", it.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	d.ID = id
	return id, nil
}

// ListDeletions returns the most recent deletion passes, newest first.
func (db *DB) ListDeletions(limit int) ([]Deletion, error) {
	rows, err := db.conn.Query(
		`SELECT id, deleted_at, command, scan_root, dry_run, selected_count, deleted_count,
		 failed_count, skipped_count, bytes_freed, would_free_bytes
		 FROM deletions ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Deletion
	for rows.Next() {
		var d Deletion
		var deletedAt string
		if err := rows.Scan(&d.ID, &deletedAt, &d.Command, &d.ScanRoot, &d.DryRun,
			&d.SelectedCount, &d.DeletedCount, &d.FailedCount, &d.SkippedCount,
			&d.BytesFreed, &d.WouldFreeBytes); err != nil {
			return nil, err
		}
		d.DeletedAt, _ = time.Parse(time.RFC3339, deletedAt)
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDeletedItems returns the per-item outcomes of a deletion pass.
func (db *DB) GetDeletedItems(deletionID int64) ([]DeletedItem, error) {
	rows, err := db.conn.Query(
		"SELECT id, deletion_id, path, outcome, bytes, error FROM deleted_items WHERE deletion_id = ? ORDER BY id",
		deletionID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []DeletedItem
	for rows.Next() {
		var it DeletedItem
		var errText sql.NullString
		if err := rows.Scan(&it.ID, &it.DeletionID, &it.Path, &it.Outcome, &it.Bytes, &errText); err != nil {
			return nil, err
		}
		it.Error = errText.String
		out = append(out, it)
	}
	return out, rows.Err()
}

// TotalBytesFreed sums bytes_freed over every non-dry-run deletion.
func (db *DB) TotalBytesFreed() (int64, error) {
	var total int64
	err := db.conn.QueryRow("SELECT COALESCE(SUM(bytes_freed), 0) FROM deletions WHERE dry_run = 0").Scan(&total)
	return total, err
}
