// Package config holds the daemon settings and the on-disk layout of the
// data directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	configFile = "config.toml"
	dbFile     = "clipsy.db"
	imagesDir  = "images"

	// envDataDir overrides the default data directory location.
	envDataDir = "CLIPSY_DATA_DIR"
)

// Config carries all tunables. The data directory itself never comes
// from the config file; it is resolved from the environment or a flag
// before the file can be found.
type Config struct {
	DataDir string `toml:"-"`

	MaxEntries      int  `toml:"max_entries"`
	MaxEntryAgeDays int  `toml:"max_entry_age_days"`
	PollIntervalMS  int  `toml:"poll_interval_ms"`
	PreviewLength   int  `toml:"preview_length"`
	ListLimit       int  `toml:"list_limit"`
	MaxTextSize     int  `toml:"max_text_size_bytes"`
	MaxImageSize    int  `toml:"max_image_size_bytes"`
	ThumbnailSize   int  `toml:"thumbnail_size_px"`
	RedactSensitive bool `toml:"redact_sensitive"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),

		MaxEntries:      500,
		MaxEntryAgeDays: 30,
		PollIntervalMS:  500,
		PreviewLength:   60,
		ListLimit:       10,
		MaxTextSize:     1_000_000,
		MaxImageSize:    10_000_000,
		ThumbnailSize:   32,
		RedactSensitive: true,

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// DefaultDataDir resolves the data directory: the environment override
// when set, otherwise ~/.local/share/clipsy.
func DefaultDataDir() string {
	if dir := os.Getenv(envDataDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "clipsy-data"
	}
	return filepath.Join(home, ".local", "share", "clipsy")
}

// Load reads the config file under dir, falling back to defaults when it
// does not exist. An empty dir selects the default data directory.
func Load(dir string) (*Config, error) {
	config := Default()
	if dir != "" {
		config.DataDir = dir
	}

	data, err := os.ReadFile(config.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.validate()

	return config, nil
}

// Save writes the config file into the data directory.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.ConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// EnsureDirs creates the data and image directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.ImagesPath()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) ConfigPath() string {
	return filepath.Join(c.DataDir, configFile)
}

func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, dbFile)
}

func (c *Config) ImagesPath() string {
	return filepath.Join(c.DataDir, imagesDir)
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func (c *Config) MaxEntryAge() time.Duration {
	return time.Duration(c.MaxEntryAgeDays) * 24 * time.Hour
}

func (c *Config) validate() {
	if c.MaxEntries <= 0 {
		c.MaxEntries = 500
	}
	if c.MaxEntryAgeDays <= 0 {
		c.MaxEntryAgeDays = 30
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = 500
	}
	if c.PreviewLength < 10 {
		c.PreviewLength = 60
	}
	if c.ListLimit <= 0 {
		c.ListLimit = 10
	}
	if c.MaxTextSize <= 0 {
		c.MaxTextSize = 1_000_000
	}
	if c.MaxImageSize <= 0 {
		c.MaxImageSize = 10_000_000
	}
	if c.ThumbnailSize <= 0 {
		c.ThumbnailSize = 32
	}
}
