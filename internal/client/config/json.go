package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/useraccounts/internal/flagx"
	"github.com/dmitrijs2005/useraccounts/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero values, so a file only overrides
// what it mentions.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	StoragePath    *string         `json:"storage_path"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	AuthScheme     *string         `json:"auth_scheme"`
	RegisterPath   *string         `json:"register_path"`
	RateLimit      *float64        `json:"rate_limit"`
	RateBurst      *int            `json:"rate_burst"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
	WatchStorage   *bool           `json:"watch_storage"`
}

// parseJson overlays cfg with the file named by -c or -config. Without
// either flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setIf(&cfg.ServerURL, jc.ServerURL)
	setIf(&cfg.StoragePath, jc.StoragePath)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	setIf(&cfg.AuthScheme, jc.AuthScheme)
	setIf(&cfg.RegisterPath, jc.RegisterPath)
	setIf(&cfg.RateLimit, jc.RateLimit)
	setIf(&cfg.RateBurst, jc.RateBurst)
	setIf(&cfg.LogLevel, jc.LogLevel)
	setIf(&cfg.LogFormat, jc.LogFormat)
	setIf(&cfg.WatchStorage, jc.WatchStorage)
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
