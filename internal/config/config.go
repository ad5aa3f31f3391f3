// Package config holds the YAML-backed service configuration with
// first-run creation and atomic, 0600-permission saves.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level service configuration.
type Config struct {
	// Listen is the HTTP listen address for the pin API.
	Listen string `yaml:"listen" json:"listen"`

	// DataPath is the JSON file the pin store persists to.
	DataPath string `yaml:"data_path" json:"data_path"`

	// Timezone is the IANA timezone used as the default display zone
	// for feeds and previews. Per-pin timezones always win for
	// filtering.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LookaheadHours is the forward window within which a not-yet-open
	// pin still counts as open under the "now" filter.
	LookaheadHours int `yaml:"lookahead_hours" json:"lookahead_hours"`

	// PruneCron is a cron-style schedule (e.g. "17 3 * * *") for the
	// expired-pin janitor.
	PruneCron string `yaml:"prune" json:"prune"`

	// PruneAfterDays is how many days past its end a one-time pin is
	// kept before the janitor removes it.
	PruneAfterDays int `yaml:"prune_after_days" json:"prune_after_days"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         "127.0.0.1:8080",
		DataPath:       "/var/lib/pinmapd/pins.json",
		Timezone:       "UTC",
		LookaheadHours: 2,
		PruneCron:      "17 3 * * *",
		PruneAfterDays: 30,
		BasicAuth:      nil,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs from older versions still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.DataPath == "" {
		c.DataPath = "/var/lib/pinmapd/pins.json"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	} else if _, err := time.LoadLocation(c.Timezone); err != nil {
		// Unknown zone would poison every feed render; fall back.
		c.Timezone = "UTC"
	}
	if c.LookaheadHours <= 0 {
		c.LookaheadHours = 2
	}
	if c.PruneCron == "" {
		c.PruneCron = "17 3 * * *"
	}
	if c.PruneAfterDays <= 0 {
		c.PruneAfterDays = 30
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there
// (creating the parent directory) and returned. Otherwise the YAML is
// read, unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration to path: parent directory ensured
// (0700), atomic temp-file + rename, final permissions 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".pinmapd-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
