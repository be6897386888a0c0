package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level envoic configuration.
type Config struct {
	Depth         int      `mapstructure:"depth"`
	StaleDays     int      `mapstructure:"stale_days"`
	Deep          bool     `mapstructure:"deep"`
	IncludeDotenv bool     `mapstructure:"include_dotenv"`
	Artifacts     bool     `mapstructure:"artifacts"`
	PathMode      string   `mapstructure:"path_mode"`
	Exclude       []string `mapstructure:"exclude"`
	Record        bool     `mapstructure:"record"`
	Output        Output   `mapstructure:"output"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. ENVOIC_* environment
// variables override file values.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("depth", DefaultDepth)
	v.SetDefault("stale_days", DefaultStaleDays)
	v.SetDefault("deep", false)
	v.SetDefault("include_dotenv", false)
	v.SetDefault("artifacts", true)
	v.SetDefault("path_mode", DefaultPathMode)
	v.SetDefault("exclude", DefaultExclude)
	v.SetDefault("record", false)
	v.SetDefault("output.color", DefaultOutput.Color)

	v.SetEnvPrefix("envoic")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		cfgFile = DefaultConfigPath()
	}
	v.SetConfigFile(expandPath(cfgFile))
	v.SetConfigType("yaml")

	// Missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Depth < 1 {
		return fmt.Errorf("config: depth must be at least 1, got %d", c.Depth)
	}
	if c.StaleDays < 1 {
		return fmt.Errorf("config: stale_days must be at least 1, got %d", c.StaleDays)
	}
	switch strings.ToLower(strings.TrimSpace(c.PathMode)) {
	case "name", "relative", "absolute":
	default:
		return fmt.Errorf("config: path_mode must be name, relative or absolute, got %q", c.PathMode)
	}
	return nil
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(ConfigDir(), DefaultDBName)
}

// DefaultConfigPath returns the config file read when --config is not given.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), DefaultConfigFile)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
