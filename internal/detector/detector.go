package detector

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/blackwell-systems/envoic/internal/disk"
)

const (
	pyvenvCfgName = "pyvenv.cfg"
	condaMetaName = "conda-meta"
	dotenvName    = ".env"
)

// envDirNames are conventional environment directory names. A match makes a
// directory a scan candidate even when it fails the quick check.
var envDirNames = map[string]bool{
	".env":        true,
	".venv":       true,
	"env":         true,
	"venv":        true,
	".virtualenv": true,
	"virtualenv":  true,
}

// IsEnvironmentDirName reports whether name is a conventional environment
// directory name.
func IsEnvironmentDirName(name string) bool {
	return envDirNames[name]
}

// probeTimeout bounds the interpreter version probe.
var probeTimeout = 2 * time.Second

// nowFunc is replaced in tests to pin staleness calculations.
var nowFunc = time.Now

var pythonDirRe = regexp.MustCompile(`^python(\d+\.\d+)$`)

// versionKeys are checked in order when reading pyvenv.cfg.
var versionKeys = []string{"version", "version_info", "python-version"}

// Detect inspects path and classifies it. Classification is first-match:
// conda metadata, then a definitive venv (pyvenv.cfg, or interpreter plus
// site-packages), then a strong venv (activation script or site-packages
// alone), then a directory literally named ".env", else unknown.
//
// The strong venv branch will also accept a directory that merely contains a
// stray site-packages folder. That false positive is known and kept.
//
// Every positive signal is recorded regardless of which branch decided the
// kind. Detect never fails: unreadable metadata degrades to absent fields.
func Detect(path string, opts Options) Environment {
	path = disk.Resolve(path)
	staleDays := opts.StaleDays
	if staleDays <= 0 {
		staleDays = DefaultStaleDays
	}

	var signals []string

	cfg := parsePyvenvCfg(path)
	hasCfg := len(cfg) > 0
	if hasCfg {
		signals = append(signals, SignalPyvenvCfg)
	}

	condaMeta := disk.IsDir(filepath.Join(path, condaMetaName))
	if condaMeta {
		signals = append(signals, SignalCondaMeta)
	}

	hasBinary := pythonExecutable(path) != ""
	sitePackages := findSitePackages(path)
	hasPackages := sitePackages != ""
	if hasBinary {
		signals = append(signals, SignalPythonBinary)
	}
	if hasPackages {
		signals = append(signals, SignalSitePackages)
	}
	if hasBinary && hasPackages {
		signals = append(signals, SignalPythonAndPackages)
	}

	hasActivate := hasActivateScript(path)
	if hasActivate {
		signals = append(signals, SignalActivateScript)
	}

	definitive := hasCfg || (hasBinary && hasPackages)
	strong := hasActivate || hasPackages

	kind := KindUnknown
	switch {
	case condaMeta:
		kind = KindConda
	case definitive || strong:
		kind = KindVenv
	case filepath.Base(path) == dotenvName:
		kind = KindDotenvDir
	}

	if kind == KindDotenvDir && !opts.IncludeDotenv {
		signals = append(signals, SignalDotenvDir)
	}

	env := Environment{
		Path:          path,
		Kind:          kind,
		PythonVersion: extractVersion(path, cfg, sitePackages, opts.Deep),
		HasPyvenvCfg:  hasCfg,
		Signals:       signals,
	}

	if info, err := os.Stat(path); err == nil {
		modified := info.ModTime().UTC()
		created := createdTime(info).UTC()
		env.Modified = &modified
		env.Created = &created
		cutoff := nowFunc().AddDate(0, 0, -staleDays)
		env.IsStale = modified.Before(cutoff)
	}

	if opts.Deep {
		size := disk.Usage(path)
		env.SizeBytes = &size
		env.PackageCount = countPackages(sitePackages)
	}

	return env
}

// QuickCheck is the cheap heuristic the scanner uses to decide whether a
// directory is an environment it should not descend into.
func QuickCheck(path string) bool {
	if disk.IsFile(filepath.Join(path, pyvenvCfgName)) {
		return true
	}
	if disk.IsDir(filepath.Join(path, condaMetaName)) {
		return true
	}
	if pythonExecutable(path) != "" && findSitePackages(path) != "" {
		return true
	}
	return hasActivateScript(path)
}

// HasPyvenvCfg reports whether path holds a pyvenv.cfg file.
func HasPyvenvCfg(path string) bool {
	return disk.IsFile(filepath.Join(path, pyvenvCfgName))
}

// HasCondaMeta reports whether path holds a conda-meta directory.
func HasCondaMeta(path string) bool {
	return disk.IsDir(filepath.Join(path, condaMetaName))
}

// ActivationHint returns the command a user would run to activate the
// environment at path.
func ActivationHint(path string, kind Kind) string {
	switch kind {
	case KindConda:
		return "conda activate " + filepath.Base(path)
	case KindVenv, KindDotenvDir, KindUnknown:
		windows := filepath.Join(path, "Scripts", "activate")
		if disk.Exists(windows) {
			return windows
		}
		return "source " + filepath.Join(path, "bin", "activate")
	default:
		panic(fmt.Sprintf("detector: unhandled kind %d", int(kind)))
	}
}

// parsePyvenvCfg reads key = value pairs from pyvenv.cfg. Keys are
// lower-cased. A missing or unreadable file yields nil.
func parsePyvenvCfg(path string) map[string]string {
	data, err := os.ReadFile(filepath.Join(path, pyvenvCfgName))
	if err != nil {
		return nil
	}
	values := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return values
}

// findSitePackages locates the site-packages directory for both the Windows
// (Lib/site-packages) and POSIX (lib/pythonX.Y/site-packages) layouts.
func findSitePackages(path string) string {
	for _, candidate := range []string{
		filepath.Join(path, "Lib", "site-packages"),
		filepath.Join(path, "lib", "site-packages"),
	} {
		if disk.IsDir(candidate) {
			return candidate
		}
	}

	for _, libRoot := range []string{filepath.Join(path, "lib"), filepath.Join(path, "Lib")} {
		entries, err := os.ReadDir(libRoot)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !pythonDirRe.MatchString(entry.Name()) {
				continue
			}
			candidate := filepath.Join(libRoot, entry.Name(), "site-packages")
			if disk.IsDir(candidate) {
				return candidate
			}
		}
	}
	return ""
}

func pythonExecutable(path string) string {
	for _, candidate := range []string{
		filepath.Join(path, "bin", "python"),
		filepath.Join(path, "Scripts", "python.exe"),
	} {
		if disk.IsFile(candidate) {
			return candidate
		}
	}
	return ""
}

func hasActivateScript(path string) bool {
	return disk.IsFile(filepath.Join(path, "bin", "activate")) ||
		disk.IsFile(filepath.Join(path, "Scripts", "activate"))
}

// extractVersion tries pyvenv.cfg keys, then the pythonX.Y directory that
// holds site-packages, then (deep only) the interpreter itself.
func extractVersion(path string, cfg map[string]string, sitePackages string, deep bool) *string {
	for _, key := range versionKeys {
		if v := cfg[key]; v != "" {
			return &v
		}
	}

	if sitePackages != "" {
		parent := filepath.Base(filepath.Dir(sitePackages))
		if strings.HasPrefix(parent, "python") {
			v := strings.TrimPrefix(parent, "python")
			return &v
		}
	}

	if !deep {
		return nil
	}
	return probeVersion(pythonExecutable(path))
}

// probeVersion runs "<python> --version" under a short timeout. Any failure
// yields nil.
func probeVersion(pythonBin string) *string {
	if pythonBin == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, pythonBin, "--version")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if ctx.Err() != nil {
		return nil
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		// Python 2 prints its version on stderr.
		out = strings.TrimSpace(stderr.String())
	}
	if out == "" {
		return nil
	}
	fields := strings.Fields(out)
	v := fields[len(fields)-1]
	return &v
}

// countPackages counts installed distributions by their metadata
// directories. A missing site-packages yields nil.
func countPackages(sitePackages string) *int {
	if sitePackages == "" {
		return nil
	}
	entries, err := os.ReadDir(sitePackages)
	if err != nil {
		return nil
	}
	count := 0
	for _, entry := range entries {
		if isMetadataName(entry.Name()) {
			count++
		}
	}
	return &count
}
