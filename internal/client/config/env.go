package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

type envConfig struct {
	ServerURL      string        `env:"UA_SERVER_URL"`
	StoragePath    string        `env:"UA_STORAGE_PATH"`
	RequestTimeout time.Duration `env:"UA_REQUEST_TIMEOUT"`
	AuthScheme     string        `env:"UA_AUTH_SCHEME"`
	RegisterPath   string        `env:"UA_REGISTER_PATH"`
	RateLimit      float64       `env:"UA_RATE_LIMIT"`
	RateBurst      int           `env:"UA_RATE_BURST"`
	LogLevel       string        `env:"UA_LOG_LEVEL"`
	LogFormat      string        `env:"UA_LOG_FORMAT"`
	WatchStorage   bool          `env:"UA_WATCH_STORAGE"`
}

// parseEnv overlays cfg with UA_* variables. envdecode leaves a field alone
// when its variable is unset, so the DTO starts from the current values.
func parseEnv(cfg *Config) error {
	ec := envConfig{
		ServerURL:      cfg.ServerURL,
		StoragePath:    cfg.StoragePath,
		RequestTimeout: cfg.RequestTimeout,
		AuthScheme:     cfg.AuthScheme,
		RegisterPath:   cfg.RegisterPath,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		LogLevel:       cfg.LogLevel,
		LogFormat:      cfg.LogFormat,
		WatchStorage:   cfg.WatchStorage,
	}
	if err := envdecode.Decode(&ec); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("read environment: %w", err)
	}

	cfg.ServerURL = ec.ServerURL
	cfg.StoragePath = ec.StoragePath
	cfg.RequestTimeout = ec.RequestTimeout
	cfg.AuthScheme = ec.AuthScheme
	cfg.RegisterPath = ec.RegisterPath
	cfg.RateLimit = ec.RateLimit
	cfg.RateBurst = ec.RateBurst
	cfg.LogLevel = ec.LogLevel
	cfg.LogFormat = ec.LogFormat
	cfg.WatchStorage = ec.WatchStorage
	return nil
}
