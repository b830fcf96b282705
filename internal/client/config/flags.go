package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/useraccounts/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Only the flags handled here are parsed, so flags owned by other layers
// (such as -c) do not cause errors.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the account service")
	fs.StringVar(&cfg.StoragePath, "s", cfg.StoragePath, "path of the local cache database")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(flagx.FilterArgs(args, "a", "s", "t", "l"))
}
