package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Remote drivers
const (
	DriverHTTP     = "http"
	DriverPostgres = "postgres"
)

// Remote holds settings for the optional cloud mirror
type Remote struct {
	Driver       string        `yaml:"driver"`        // http (trinote-server) or postgres (direct)
	URL          string        `yaml:"url"`           // Base URL of trinote-server
	APIKey       string        `yaml:"api_key"`       // Static bearer key, if the server requires one
	DatabaseURL  string        `yaml:"database_url"`  // DSN for the postgres driver
	Passphrase   string        `yaml:"passphrase"`    // Seals remote documents when set
	PushDebounce time.Duration `yaml:"push_debounce"` // Quiet period before a push
	PullInterval time.Duration `yaml:"pull_interval"` // 0 disables periodic pulls
	Timeout      time.Duration `yaml:"timeout"`       // Per-request timeout
}

// Enabled reports whether a remote endpoint is configured
func (r Remote) Enabled() bool {
	switch r.Driver {
	case DriverPostgres:
		return r.DatabaseURL != ""
	default:
		return r.URL != ""
	}
}

// Config holds user preferences
type Config struct {
	DataDir       string        `yaml:"data_dir"`       // Directory holding the local store
	ConfirmDelete bool          `yaml:"confirm_delete"` // Require confirmation for delete
	HideDone      bool          `yaml:"hide_done"`      // Hide completed tasks by default
	SeedExamples  bool          `yaml:"seed_examples"`  // Create example tasks on first run
	HistoryLimit  int           `yaml:"history_limit"`  // Snapshots kept for recovery
	TombstoneTTL  time.Duration `yaml:"tombstone_ttl"`  // 0 keeps tombstones forever
	ShareBaseURL  string        `yaml:"share_base_url"` // Prefix for shareable links

	// Logging configuration
	LogLevel   string `yaml:"log_level"`   // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file"`    // Path to log file
	LogConsole bool   `yaml:"log_console"` // Enable console logging

	Remote Remote `yaml:"remote"`

	// Values as read from the file and as overlaid by the environment
	overlay *envOverlay
}

type envOverlay struct {
	file, applied Config
}

// Dir returns the trinote home directory (~/.trinote or $TRINOTE_HOME)
func Dir() (string, error) {
	if dir := os.Getenv("TRINOTE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".trinote"), nil
}

// Path returns the config file location
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir, _ := Dir()
	logPath := ""
	if dir != "" {
		logPath = filepath.Join(dir, "logs", "trinote.log")
	}

	return &Config{
		DataDir:       dir,
		ConfirmDelete: true,
		HideDone:      false,
		SeedExamples:  true,
		HistoryLimit:  50,
		TombstoneTTL:  30 * 24 * time.Hour,
		ShareBaseURL:  "trinote://board",
		LogLevel:      "INFO",
		LogFile:       logPath,
		LogConsole:    false,
		Remote: Remote{
			Driver:       DriverHTTP,
			PushDebounce: 500 * time.Millisecond,
			Timeout:      30 * time.Second,
		},
	}
}

// applyEnv overlays environment variables on top of file settings
func (c *Config) applyEnv() {
	c.LogLevel = getEnv("TRINOTE_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("TRINOTE_LOG_FILE", c.LogFile)
	if v := os.Getenv("TRINOTE_LOG_CONSOLE"); v != "" {
		c.LogConsole = v == "true"
	}
	c.Remote.URL = getEnv("TRINOTE_REMOTE_URL", c.Remote.URL)
	c.Remote.APIKey = getEnv("TRINOTE_REMOTE_KEY", c.Remote.APIKey)
	c.Remote.Passphrase = getEnv("TRINOTE_PASSPHRASE", c.Remote.Passphrase)
	if dsn := os.Getenv("TRINOTE_DATABASE_URL"); dsn != "" {
		c.Remote.DatabaseURL = dsn
		if c.Remote.URL == "" {
			c.Remote.Driver = DriverPostgres
		}
	}
}

// normalize repairs values that would break callers
func (c *Config) normalize() {
	c.Remote.Driver = strings.ToLower(strings.TrimSpace(c.Remote.Driver))
	if c.Remote.Driver == "" {
		c.Remote.Driver = DriverHTTP
	}
	c.Remote.URL = strings.TrimRight(c.Remote.URL, "/")
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 50
	}
	if c.Remote.PushDebounce <= 0 {
		c.Remote.PushDebounce = 500 * time.Millisecond
	}
	if c.Remote.Timeout <= 0 {
		c.Remote.Timeout = 30 * time.Second
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Load loads config from the default location
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads config from path, falling back to defaults if it does not exist
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	file := *cfg
	cfg.applyEnv()
	cfg.normalize()
	cfg.overlay = &envOverlay{file: file, applied: *cfg}
	return cfg, nil
}

// Save saves config to the default location
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes config to path. The file may hold an API key or passphrase,
// so it is only readable by the owner.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c.withoutEnv())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// withoutEnv returns a copy in which settings still holding their
// environment value are reset to what the file had. Secrets passed through
// the environment never end up on disk.
func (c *Config) withoutEnv() *Config {
	out := *c
	out.overlay = nil
	o := c.overlay
	if o == nil {
		return &out
	}

	keep := func(cur *string, file, applied string) {
		if *cur == applied {
			*cur = file
		}
	}
	keep(&out.LogLevel, o.file.LogLevel, o.applied.LogLevel)
	keep(&out.LogFile, o.file.LogFile, o.applied.LogFile)
	if out.LogConsole == o.applied.LogConsole {
		out.LogConsole = o.file.LogConsole
	}
	keep(&out.Remote.Driver, o.file.Remote.Driver, o.applied.Remote.Driver)
	keep(&out.Remote.URL, o.file.Remote.URL, o.applied.Remote.URL)
	keep(&out.Remote.APIKey, o.file.Remote.APIKey, o.applied.Remote.APIKey)
	keep(&out.Remote.Passphrase, o.file.Remote.Passphrase, o.applied.Remote.Passphrase)
	keep(&out.Remote.DatabaseURL, o.file.Remote.DatabaseURL, o.applied.Remote.DatabaseURL)
	return &out
}
