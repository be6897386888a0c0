package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means a fresh database.
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// SchemaVersion reports the recorded schema version.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	if err := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// migrateV1 creates the scan and deletion history tables.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at         TEXT NOT NULL,
			command          TEXT NOT NULL,
			version          TEXT NOT NULL,
			scan_path        TEXT NOT NULL,
			hostname         TEXT NOT NULL,
			scan_depth       INTEGER NOT NULL,
			duration_seconds REAL NOT NULL,
			env_count        INTEGER NOT NULL,
			stale_count      INTEGER NOT NULL,
			total_size_bytes INTEGER NOT NULL,
			artifact_count   INTEGER NOT NULL,
			artifact_bytes   INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS scan_environments (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id        INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
			path           TEXT NOT NULL,
			env_type       TEXT NOT NULL,
			python_version TEXT,
			size_bytes     INTEGER,
			is_stale       BOOLEAN NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS deletions (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			deleted_at       TEXT NOT NULL,
			command          TEXT NOT NULL,
			scan_root        TEXT NOT NULL,
			dry_run          BOOLEAN NOT NULL,
			selected_count   INTEGER NOT NULL,
			deleted_count    INTEGER NOT NULL,
			failed_count     INTEGER NOT NULL,
			skipped_count    INTEGER NOT NULL,
			bytes_freed      INTEGER NOT NULL,
			would_free_bytes INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS deleted_items (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			deletion_id INTEGER NOT NULL REFERENCES deletions(id) ON DELETE CASCADE,
			path        TEXT NOT NULL,
			outcome     TEXT NOT NULL,
			bytes       INTEGER NOT NULL,
			error       TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_scans_path ON scans(scan_path)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_environments_scan ON scan_environments(scan_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_environments_path ON scan_environments(path)`,
		`CREATE INDEX IF NOT EXISTS idx_deleted_items_deletion ON deleted_items(deletion_id)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
