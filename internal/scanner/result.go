package scanner

import (
	"os"
	"sort"
	"time"

	"github.com/blackwell-systems/envoic/internal/artifacts"
	"github.com/blackwell-systems/envoic/internal/detector"
	"github.com/blackwell-systems/envoic/internal/disk"
)

// Result is the single handoff object between the scan pipeline and its
// presentation. Field names are the serialized contract.
type Result struct {
	ScanPath        string                 `json:"scan_path" yaml:"scan_path"`
	ScanDepth       int                    `json:"scan_depth" yaml:"scan_depth"`
	DurationSeconds float64                `json:"duration_seconds" yaml:"duration_seconds"`
	Environments    []detector.Environment `json:"environments" yaml:"environments"`
	TotalSizeBytes  int64                  `json:"total_size_bytes" yaml:"total_size_bytes"`
	Hostname        string                 `json:"hostname" yaml:"hostname"`
	Timestamp       time.Time              `json:"timestamp" yaml:"timestamp"`
	Artifacts       []artifacts.Artifact   `json:"artifacts" yaml:"artifacts"`
	ArtifactSummary []artifacts.Summary    `json:"artifact_summary" yaml:"artifact_summary"`
}

// StaleCount returns how many environments are stale.
func (r *Result) StaleCount() int {
	n := 0
	for _, env := range r.Environments {
		if env.IsStale {
			n++
		}
	}
	return n
}

// Config is the full set of knobs for Build.
type Config struct {
	MaxDepth         int
	StaleDays        int
	Deep             bool
	IncludeDotenv    bool
	IncludeArtifacts bool
	Exclude          []string
	OnVisit          func(dir string)
}

// Build runs the scan, detects every candidate, drops unknown directories
// (and dotenv directories unless requested) and summarizes artifacts.
func Build(root string, cfg Config) *Result {
	start := time.Now()
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}

	discovery := Scan(root, Options{
		MaxDepth:         cfg.MaxDepth,
		IncludeArtifacts: cfg.IncludeArtifacts,
		Deep:             cfg.Deep,
		Exclude:          cfg.Exclude,
		OnVisit:          cfg.OnVisit,
	})

	envs := make([]detector.Environment, 0, len(discovery.Environments))
	var total int64
	for _, candidate := range discovery.Environments {
		env := detector.Detect(candidate, detector.Options{
			Deep:          cfg.Deep,
			StaleDays:     cfg.StaleDays,
			IncludeDotenv: cfg.IncludeDotenv,
		})
		if !keep(env.Kind, cfg.IncludeDotenv) {
			continue
		}
		if env.SizeBytes != nil {
			total += *env.SizeBytes
		}
		envs = append(envs, env)
	}
	sort.Slice(envs, func(i, j int) bool { return envs[i].Path < envs[j].Path })

	found := discovery.Artifacts
	if !cfg.IncludeArtifacts || found == nil {
		found = []artifacts.Artifact{}
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return &Result{
		ScanPath:        disk.Resolve(root),
		ScanDepth:       cfg.MaxDepth,
		DurationSeconds: time.Since(start).Seconds(),
		Environments:    envs,
		TotalSizeBytes:  total,
		Hostname:        hostname,
		Timestamp:       time.Now().UTC(),
		Artifacts:       found,
		ArtifactSummary: artifacts.Summarize(found),
	}
}

func keep(kind detector.Kind, includeDotenv bool) bool {
	switch kind {
	case detector.KindVenv, detector.KindConda:
		return true
	case detector.KindDotenvDir:
		return includeDotenv
	case detector.KindUnknown:
		return false
	default:
		panic("scanner: unhandled kind " + kind.String())
	}
}
