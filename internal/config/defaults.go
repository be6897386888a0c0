// Package config provides configuration loading and defaults for envoic.
package config

// DefaultConfigDir is the default location for envoic configuration.
const DefaultConfigDir = "~/.config/envoic"

// DefaultDBName is the filename for the SQLite history database.
const DefaultDBName = "envoic.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultDepth is how many directory levels below the scan root are visited.
const DefaultDepth = 5

// DefaultStaleDays is the modification age after which an environment is
// reported as stale.
const DefaultStaleDays = 90

// DefaultPathMode labels environments by their project directory name.
const DefaultPathMode = "name"

// DefaultExclude holds no exclude patterns.
var DefaultExclude = []string{}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
}
