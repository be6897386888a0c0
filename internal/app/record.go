package app

import (
	"log"

	"github.com/blackwell-systems/envoic/internal/artifacts"
	"github.com/blackwell-systems/envoic/internal/config"
	"github.com/blackwell-systems/envoic/internal/manager"
	"github.com/blackwell-systems/envoic/internal/scanner"
	"github.com/blackwell-systems/envoic/internal/store"
)

// dbPath locates the history database; tests point it at a temp dir.
var dbPath = config.DBPath

func openStore() (*store.DB, error) {
	return store.Open(dbPath())
}

// recordScan saves a scan to the history database. Failures are warnings.
func recordScan(command string, r *scanner.Result) {
	db, err := openStore()
	if err != nil {
		log.Printf("Warning: could not open history database: %v", err)
		return
	}
	defer db.Close()

	scan, envs := scanRecord(command, r)
	id, err := db.RecordScan(scan, envs)
	if err != nil {
		log.Printf("Warning: could not record scan: %v", err)
		return
	}
	verbosef("recorded scan #%d", id)
}

func scanRecord(command string, r *scanner.Result) (*store.Scan, []store.ScanEnvironment) {
	scan := &store.Scan{
		TakenAt:         r.Timestamp,
		Command:         command,
		Version:         appVersion,
		ScanPath:        r.ScanPath,
		Hostname:        r.Hostname,
		ScanDepth:       r.ScanDepth,
		DurationSeconds: r.DurationSeconds,
		EnvCount:        len(r.Environments),
		StaleCount:      r.StaleCount(),
		TotalSizeBytes:  r.TotalSizeBytes,
		ArtifactCount:   len(r.Artifacts),
		ArtifactBytes:   artifacts.TotalSize(r.ArtifactSummary),
	}
	envs := make([]store.ScanEnvironment, 0, len(r.Environments))
	for _, e := range r.Environments {
		row := store.ScanEnvironment{
			Path:      e.Path,
			EnvType:   e.Kind.String(),
			SizeBytes: e.SizeBytes,
			IsStale:   e.IsStale,
		}
		if e.PythonVersion != nil {
			row.PythonVersion = *e.PythonVersion
		}
		envs = append(envs, row)
	}
	return scan, envs
}

// recordDeletion saves a deletion pass to the history database.
func recordDeletion(command, root string, s manager.DeletionSummary) {
	db, err := openStore()
	if err != nil {
		log.Printf("Warning: could not open history database: %v", err)
		return
	}
	defer db.Close()

	d, items := deletionRecord(command, root, s)
	id, err := db.RecordDeletion(d, items)
	if err != nil {
		log.Printf("Warning: could not record deletion: %v", err)
		return
	}
	verbosef("recorded deletion #%d", id)
}

func deletionRecord(command, root string, s manager.DeletionSummary) (*store.Deletion, []store.DeletedItem) {
	d := &store.Deletion{
		Command:        command,
		ScanRoot:       root,
		DryRun:         s.DryRun,
		SelectedCount:  s.SelectedCount,
		DeletedCount:   s.DeletedCount,
		FailedCount:    s.FailedCount,
		SkippedCount:   s.SkippedCount,
		BytesFreed:     s.BytesFreed,
		WouldFreeBytes: s.WouldFreeBytes,
	}
	items := make([]store.DeletedItem, 0, len(s.Results))
	for _, r := range s.Results {
		item := store.DeletedItem{Path: r.Path, Outcome: r.Outcome.String(), Bytes: r.Bytes}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		items = append(items, item)
	}
	return d, items
}
