package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/flagx"
	"github.com/dmitrijs2005/gophvault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell "absent" apart from "zero".
type JsonConfig struct {
	DatabaseDSN    string          `json:"database_dsn"`
	KeyFile        string          `json:"key_file"`
	CommandTimeout *timex.Duration `json:"command_timeout"`
	WriteTimeout   *timex.Duration `json:"write_timeout"`
	LogLevel       string          `json:"log_level"`
	LoginBurst     *int            `json:"login_burst"`
	LoginInterval  *timex.Duration `json:"login_interval"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The path comes from -c / -config or $GOPHVAULT_CONFIG. With no path the
// function returns without changes. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.KeyFile != "" {
		cfg.KeyFile = jc.KeyFile
	}
	if jc.CommandTimeout != nil {
		cfg.CommandTimeout = time.Duration(jc.CommandTimeout.Duration)
	}
	if jc.WriteTimeout != nil {
		cfg.WriteTimeout = time.Duration(jc.WriteTimeout.Duration)
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LoginBurst != nil {
		cfg.LoginBurst = *jc.LoginBurst
	}
	if jc.LoginInterval != nil {
		cfg.LoginInterval = time.Duration(jc.LoginInterval.Duration)
	}
}
