package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	appLog "lifeman/internal/log"
	"lifeman/internal/seed"
)

const (
	defaultTimezone      = "Local"
	defaultLogLevel      = "info"
	defaultEventDuration = time.Hour
	defaultTimeLayout    = "2006-01-02 15:04"
)

// SeedConfig selects the default items written into an empty calendar.
type SeedConfig struct {
	// Profile is one of "none" (default), "todos", "full" or "custom".
	Profile seed.Profile `yaml:"profile" json:"profile"`

	// Todos / Events are only used by the "custom" profile.
	Todos  []seed.Item `yaml:"todos,omitempty" json:"todos,omitempty"`
	Events []seed.Item `yaml:"events,omitempty" json:"events,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone used to read --begin/--time values and to
	// display timestamps (e.g. "Europe/Berlin"). "Local" uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is "debug", "info" or "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// DefaultEventDuration is used when `events add` gets no --end.
	DefaultEventDuration time.Duration `yaml:"default_event_duration" json:"default_event_duration"`

	// TimeLayout is the Go layout for timestamps in tables.
	TimeLayout string `yaml:"time_layout" json:"time_layout"`

	Seed SeedConfig `yaml:"seed" json:"seed"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:             defaultTimezone,
		LogLevel:             defaultLogLevel,
		DefaultEventDuration: defaultEventDuration,
		TimeLayout:           defaultTimeLayout,
		Seed: SeedConfig{
			Profile: seed.ProfileNone,
		},
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.DefaultEventDuration <= 0 {
		c.DefaultEventDuration = defaultEventDuration
	}
	if c.TimeLayout == "" {
		c.TimeLayout = defaultTimeLayout
	}
	if c.Seed.Profile == "" {
		c.Seed.Profile = seed.ProfileNone
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SeedPolicy builds the seeding policy selected by Seed.Profile.
func (c *Config) SeedPolicy() (seed.Policy, error) {
	p, err := seed.ForProfile(c.Seed.Profile, c.Seed.Todos, c.Seed.Events)
	if err != nil {
		return seed.Policy{}, fmt.Errorf("config: %w", err)
	}
	return p, nil
}

// Validate reports settings that Normalize cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := appLog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	if p, err := c.SeedPolicy(); err != nil {
		errs = append(errs, err)
	} else if err := p.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	return errors.Join(errs...)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If path is empty, the defaults are returned and nothing is written.
//   - If the file does not exist, a default config is written with 0600
//     perms (parent directory created) and returned.
//   - Otherwise the YAML is unmarshalled, normalized and validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			appLog.Info("wrote default config", "path", path)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
//   - Ensures parent directory exists (0700).
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
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

	tmp, err := os.CreateTemp(dir, ".lifeman-config-*.tmp")
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
