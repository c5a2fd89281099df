package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the vault CLI.
//
// Fields:
//   - DatabaseDSN: path of the SQLite vault file.
//   - KeyFile: path of the hex secret the encryption key is derived from.
//   - CommandTimeout: upper bound for one REPL command.
//   - WriteTimeout: upper bound for a store write detached from its command.
//   - LogLevel: debug, info, warn or error.
//   - LoginBurst / LoginInterval: failed-login budget per username and its
//     refill rate. A zero burst disables throttling.
type Config struct {
	DatabaseDSN    string
	KeyFile        string
	CommandTimeout time.Duration
	WriteTimeout   time.Duration
	LogLevel       string
	LoginBurst     int
	LoginInterval  time.Duration
}

// DataDir is where the vault and key file live unless configured otherwise.
func DataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gophvault")
	}
	return ".gophvault"
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	dir := DataDir()
	c.DatabaseDSN = filepath.Join(dir, "vault.db")
	c.KeyFile = filepath.Join(dir, "vault.key")
	c.CommandTimeout = 30 * time.Second
	c.WriteTimeout = 10 * time.Second
	c.LogLevel = "warn"
	c.LoginBurst = 5
	c.LoginInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
