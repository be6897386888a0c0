package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/blackwell-systems/envoic/internal/artifacts"
	"github.com/blackwell-systems/envoic/internal/detector"
	"github.com/blackwell-systems/envoic/internal/disk"
)

// DefaultMaxDepth is the walk depth used when Options.MaxDepth is not set.
const DefaultMaxDepth = 5

// skipDirNames are never searched for environments.
var skipDirNames = map[string]bool{
	"node_modules": true,
	"__pycache__":  true,
	".git":         true,
	".hg":          true,
	".svn":         true,
}

// allowedHidden are hidden directory names that are still searched. The
// hidden artifact directories are added at init so tox/nox environments are
// found when artifact detection is off.
var allowedHidden = map[string]bool{
	".env":        true,
	".venv":       true,
	".virtualenv": true,
	".pyenv":      true,
}

func init() {
	for _, name := range artifacts.HiddenPatternNames() {
		allowedHidden[name] = true
	}
}

// Options controls a Scan.
type Options struct {
	// MaxDepth bounds the walk; the root's children are depth 1.
	MaxDepth int

	// IncludeArtifacts enables the artifact matcher.
	IncludeArtifacts bool

	// Deep computes artifact sizes.
	Deep bool

	// Exclude holds gitignore-style patterns, matched against paths relative
	// to the root. Matching entries are neither reported nor descended.
	Exclude []string

	// OnVisit, when set, is called with each directory before it is listed.
	OnVisit func(dir string)
}

// Discovery is the raw output of a walk: candidate environment paths and
// matched artifacts, both sorted by path.
type Discovery struct {
	Environments []string
	Artifacts    []artifacts.Artifact
}

type walker struct {
	root          string
	opts          Options
	exclude       *ignore.GitIgnore
	seen          map[string]bool
	seenArtifacts map[string]bool
	out           Discovery
}

// Scan walks root depth-first and returns environment candidates and
// artifacts. The walk never fails: unreadable directories are treated as
// empty. It does not descend into matched artifact directories, skipped or
// excluded directories, or directories the detector's quick check accepts.
func Scan(root string, opts Options) Discovery {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	w := &walker{
		root:          disk.Resolve(root),
		opts:          opts,
		seen:          make(map[string]bool),
		seenArtifacts: make(map[string]bool),
	}
	if len(opts.Exclude) > 0 {
		w.exclude = ignore.CompileIgnoreLines(opts.Exclude...)
	}

	w.walk(w.root, 1)

	sort.Strings(w.out.Environments)
	sort.Slice(w.out.Artifacts, func(i, j int) bool {
		return w.out.Artifacts[i].Path < w.out.Artifacts[j].Path
	})
	return w.out
}

func (w *walker) walk(dir string, depth int) {
	if depth > w.opts.MaxDepth {
		return
	}
	if w.opts.OnVisit != nil {
		w.opts.OnVisit(dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if w.excluded(full, entry.IsDir()) {
			continue
		}

		if w.opts.IncludeArtifacts {
			if a, ok := artifacts.Match(entry, dir); ok {
				w.addArtifact(a)
				if entry.IsDir() {
					continue
				}
			}
		}

		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if shouldSkip(name) {
			continue
		}

		candidate := detector.IsEnvironmentDirName(name) ||
			detector.HasPyvenvCfg(full) ||
			detector.HasCondaMeta(full)
		isEnv := detector.QuickCheck(full)

		if candidate || isEnv {
			resolved := disk.Resolve(full)
			if !w.seen[resolved] {
				w.seen[resolved] = true
				w.out.Environments = append(w.out.Environments, resolved)
			}
			if isEnv {
				continue
			}
		}

		w.walk(full, depth+1)
	}
}

func (w *walker) addArtifact(a artifacts.Artifact) {
	if w.seenArtifacts[a.Path] {
		return
	}
	w.seenArtifacts[a.Path] = true
	if w.opts.Deep {
		size := artifacts.ComputeSize(a.Path)
		a.SizeBytes = &size
	}
	w.out.Artifacts = append(w.out.Artifacts, a)
}

func (w *walker) excluded(path string, isDir bool) bool {
	if w.exclude == nil {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	return w.exclude.MatchesPath(rel)
}

func shouldSkip(name string) bool {
	if skipDirNames[name] {
		return true
	}
	return strings.HasPrefix(name, ".") && !allowedHidden[name]
}
