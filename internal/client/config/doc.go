// Package config loads runtime configuration for the cake library terminal
// client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c/-config or the
//     CONFIG environment variable.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string    base URL of the API, including the /api prefix
//	-s string    path of the local session database (":memory:" for none)
//	-i duration  how often the session database is polled for changes
//	-t duration  per-request timeout
//	-l string    log level
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "2s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:4000/api",
//	  "storage_path": "cakelibrary.db",
//	  "sync_interval": "2s",
//	  "request_timeout": "10s",
//	  "log_level": "warn"
//	}
package config
