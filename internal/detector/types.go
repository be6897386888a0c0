// Package detector classifies candidate directories as Python environments
// and extracts their metadata.
package detector

import (
	"fmt"
	"time"
)

// Kind is the closed set of environment classifications.
type Kind int

const (
	KindUnknown Kind = iota
	KindVenv
	KindConda
	KindDotenvDir
)

// String returns the serialized name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindVenv:
		return "venv"
	case KindConda:
		return "conda"
	case KindDotenvDir:
		return "dotenv_dir"
	default:
		panic(fmt.Sprintf("detector: unhandled kind %d", int(k)))
	}
}

// MarshalText implements encoding.TextMarshaler for JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind maps a serialized kind name back to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindUnknown, KindVenv, KindConda, KindDotenvDir} {
		if k.String() == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown environment kind %q", s)
}

// Signal tags recorded while inspecting a directory.
const (
	SignalPyvenvCfg         = "pyvenv.cfg"
	SignalCondaMeta         = "conda-meta"
	SignalPythonBinary      = "python-binary"
	SignalSitePackages      = "site-packages"
	SignalPythonAndPackages = "python+site-packages"
	SignalActivateScript    = "activate-script"
	SignalDotenvDir         = "dotenv-dir"
)

// Environment is the record produced for one candidate directory. It is
// never mutated after Detect returns it.
type Environment struct {
	// Path is the resolved absolute path and the identity key.
	Path string `json:"path" yaml:"path"`

	Kind Kind `json:"env_type" yaml:"env_type"`

	// PythonVersion is nil when no strategy could determine it.
	PythonVersion *string `json:"python_version" yaml:"python_version"`

	// SizeBytes and PackageCount are only set by a deep detection; nil must
	// be rendered as "unknown", never as zero.
	SizeBytes    *int64 `json:"size_bytes" yaml:"size_bytes"`
	PackageCount *int   `json:"package_count" yaml:"package_count"`

	Created  *time.Time `json:"created" yaml:"created"`
	Modified *time.Time `json:"modified" yaml:"modified"`

	IsStale      bool     `json:"is_stale" yaml:"is_stale"`
	HasPyvenvCfg bool     `json:"has_pyvenv_cfg" yaml:"has_pyvenv_cfg"`
	Signals      []string `json:"signals" yaml:"signals"`
}

// HasSignal reports whether the given signal tag was observed.
func (e Environment) HasSignal(signal string) bool {
	for _, s := range e.Signals {
		if s == signal {
			return true
		}
	}
	return false
}

// Options controls what Detect computes.
type Options struct {
	// Deep enables size computation, package counting and the interpreter
	// version probe.
	Deep bool

	// StaleDays is the modification-age threshold for IsStale.
	StaleDays int

	// IncludeDotenv is informational only: Detect always reports dotenv
	// directories and callers filter them out.
	IncludeDotenv bool
}

// DefaultStaleDays is used when Options.StaleDays is not positive.
const DefaultStaleDays = 90
