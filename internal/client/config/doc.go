// Package config loads runtime configuration for the user-account client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed with UA_.
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-a string     base URL of the account service
//	-s string     path of the local cache database
//	-t duration   per-request timeout (e.g. 5s)
//	-l string     log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations may be strings like "5s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:8080",
//	  "storage_path": "/home/me/.config/useraccounts/cache.db",
//	  "request_timeout": "10s",
//	  "auth_scheme": "Bearer",
//	  "register_path": "/users",
//	  "rate_limit": 5,
//	  "rate_burst": 10,
//	  "log_level": "info",
//	  "log_format": "text",
//	  "watch_storage": true
//	}
//
// # Environment
//
//	UA_SERVER_URL, UA_STORAGE_PATH, UA_REQUEST_TIMEOUT, UA_AUTH_SCHEME,
//	UA_REGISTER_PATH, UA_RATE_LIMIT, UA_RATE_BURST, UA_LOG_LEVEL,
//	UA_LOG_FORMAT, UA_WATCH_STORAGE
package config
