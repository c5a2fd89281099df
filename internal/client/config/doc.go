// Package config loads runtime configuration for the vault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c / -config or the
//     GOPHVAULT_CONFIG environment variable.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   path of the SQLite vault file
//	-k string   path of the key file
//	-t int      command timeout (seconds)
//	-l string   log level: debug, info, warn, error
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds. Keys that are absent keep their earlier value:
//
//	{
//	  "database_dsn": "/home/alice/.config/gophvault/vault.db",
//	  "key_file": "/home/alice/.config/gophvault/vault.key",
//	  "command_timeout": "30s",
//	  "write_timeout": "10s",
//	  "log_level": "info",
//	  "login_burst": 5,
//	  "login_interval": "30s"
//	}
package config
