package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/useraccounts/internal/logging"
)

var (
	ErrInvalidBaseURL = errors.New("invalid server url")
	ErrInvalidConfig  = errors.New("invalid config")
)

// Config holds runtime settings for the client.
//
// RateLimit is in requests per second; zero disables client-side limiting.
type Config struct {
	ServerURL      string
	StoragePath    string
	RequestTimeout time.Duration
	AuthScheme     string
	RegisterPath   string
	RateLimit      float64
	RateBurst      int
	LogLevel       string
	LogFormat      string
	WatchStorage   bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.StoragePath = defaultStoragePath()
	c.RequestTimeout = 10 * time.Second
	c.AuthScheme = "Bearer"
	c.RegisterPath = "/users"
	c.RateLimit = 0
	c.RateBurst = 1
	c.LogLevel = "info"
	c.LogFormat = logging.FormatText
	c.WatchStorage = true
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "useraccounts.db"
	}
	return filepath.Join(dir, "useraccounts", "cache.db")
}

// LoadConfig builds a Config from defaults, then the JSON file, environment
// and command-line flags found in args (without the program name). Later
// sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.ServerURL)
	}
	if strings.TrimSpace(c.StoragePath) == "" {
		return fmt.Errorf("%w: empty storage path", ErrInvalidConfig)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%w: negative request timeout", ErrInvalidConfig)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: negative rate limit", ErrInvalidConfig)
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("%w: rate burst must be at least 1", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.RegisterPath, "/") {
		return fmt.Errorf("%w: register path must start with /", ErrInvalidConfig)
	}
	formats := []string{"", logging.FormatText, logging.FormatJSON, logging.FormatConsole}
	if !slices.Contains(formats, strings.ToLower(c.LogFormat)) {
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
