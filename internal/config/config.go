// internal/config/config.go
//
// This package handles the hint configuration directory. The directory
// (os.UserConfigDir()/hint unless overridden) holds config.yaml and the
// debug logbook.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hintapp/hint/internal/hn"
)

const (
	// ConfigFileName is the yaml file read from the config directory.
	ConfigFileName = "config.yaml"
	// LogFileName is the debug logbook written next to the config file.
	LogFileName = "hint.log"

	// EnvDir overrides where the config directory lives.
	EnvDir = "HINT_CONFIG_DIR"
)

const (
	// DefaultLimit bounds how many stories one run materializes.
	DefaultLimit = 11
	// DefaultFetchInterval spaces consecutive item fetches.
	DefaultFetchInterval = 250 * time.Millisecond
	// DefaultRequestTimeout bounds a single API request.
	DefaultRequestTimeout = 10 * time.Second
	// DefaultMaxAttempts is how often one story is fetched before the
	// updater gives up.
	DefaultMaxAttempts = 5
)

const defaultConfigYAML = `# hint configuration
# Remove a key to fall back to its default.

# Hacker News API root.
base_url: https://hacker-news.firebaseio.com/v0

# Ranked feed to read: top, new, ask, show or job.
feed: top

# How many stories to materialize per run.
limit: 11

# Pause between consecutive item fetches.
fetch_interval: 250ms

# Timeout for a single API request.
request_timeout: 10s

# Fetch attempts per story before the updater gives up.
max_attempts: 5
`

// Config holds the runtime configuration for hint.
type Config struct {
	// Dir is the directory holding config.yaml and the logbook.
	Dir string

	BaseURL        string
	Feed           hn.Feed
	Limit          int
	FetchInterval  time.Duration
	RequestTimeout time.Duration
	MaxAttempts    int
}

// fileConfig models config.yaml. Durations travel as strings so users
// can write "250ms" or "2s"; pointers distinguish absent from zero.
type fileConfig struct {
	BaseURL        string `yaml:"base_url"`
	Feed           string `yaml:"feed"`
	Limit          *int   `yaml:"limit"`
	FetchInterval  string `yaml:"fetch_interval"`
	RequestTimeout string `yaml:"request_timeout"`
	MaxAttempts    *int   `yaml:"max_attempts"`
}

// ResolveDir picks the config directory: an explicit flag value wins,
// then HINT_CONFIG_DIR, then os.UserConfigDir()/hint.
func ResolveDir(flagValue string) (string, error) {
	if dir := strings.TrimSpace(flagValue); dir != "" {
		return filepath.Clean(dir), nil
	}
	if dir := strings.TrimSpace(os.Getenv(EnvDir)); dir != "" {
		return filepath.Clean(dir), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config dir: %w", err)
	}
	return filepath.Join(base, "hint"), nil
}

// InitDir creates the config directory and writes a commented default
// config.yaml on first run. This is called before the TUI starts.
func InitDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: ensure config dir: %w", err)
	}
	return ensureConfigFile(filepath.Join(dir, ConfigFileName))
}

// New loads the configuration for dir, layering config.yaml and HINT_*
// environment overrides on top of the defaults.
func New(dir string) (*Config, error) {
	cfg := &Config{
		Dir:            dir,
		BaseURL:        hn.DefaultBaseURL,
		Feed:           hn.FeedTop,
		Limit:          DefaultLimit,
		FetchInterval:  DefaultFetchInterval,
		RequestTimeout: DefaultRequestTimeout,
		MaxAttempts:    DefaultMaxAttempts,
	}
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location of config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFileName)
}

// LogPath returns the on-disk location of the debug logbook.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, LogFileName)
}

// Validate normalizes and checks the assembled configuration. Callers
// that mutate a loaded Config (flag overrides) should validate again.
func (c *Config) Validate() error {
	c.normalize()
	if err := c.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) loadFile() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed fileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if v := strings.TrimSpace(parsed.BaseURL); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(parsed.Feed); v != "" {
		c.Feed = hn.Feed(v)
	}
	if parsed.Limit != nil {
		c.Limit = *parsed.Limit
	}
	if parsed.MaxAttempts != nil {
		c.MaxAttempts = *parsed.MaxAttempts
	}
	if v := strings.TrimSpace(parsed.FetchInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: parse %s: fetch_interval: %w", path, err)
		}
		c.FetchInterval = d
	}
	if v := strings.TrimSpace(parsed.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: parse %s: request_timeout: %w", path, err)
		}
		c.RequestTimeout = d
	}
	return nil
}

// applyEnvOverrides layers HINT_* variables over the loaded values.
// Malformed values are ignored rather than fatal.
func (c *Config) applyEnvOverrides() {
	if c == nil {
		return
	}
	if v := strings.TrimSpace(os.Getenv("HINT_BASE_URL")); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("HINT_FEED")); v != "" {
		if feed, err := hn.ParseFeed(v); err == nil {
			c.Feed = feed
		}
	}
	if v := strings.TrimSpace(os.Getenv("HINT_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Limit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("HINT_FETCH_INTERVAL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.FetchInterval = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("HINT_REQUEST_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.RequestTimeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("HINT_MAX_ATTEMPTS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			c.MaxAttempts = n
		}
	}
}

func (c *Config) normalize() {
	if c == nil {
		return
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = hn.DefaultBaseURL
	}
	c.Feed = hn.Feed(strings.ToLower(strings.TrimSpace(string(c.Feed))))
	if c.Feed == "" {
		c.Feed = hn.FeedTop
	}
}

func (c *Config) validate() error {
	if _, err := hn.ParseFeed(string(c.Feed)); err != nil {
		return err
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must be >= 0")
	}
	if c.FetchInterval <= 0 {
		return fmt.Errorf("fetch_interval must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1")
	}
	return nil
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
