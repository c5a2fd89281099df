package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		initial     *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd", "-d", "/tmp/v.db", "-k", "/tmp/v.key", "-t", "10", "-l", "debug"},
			expected: &Config{DatabaseDSN: "/tmp/v.db", KeyFile: "/tmp/v.key", CommandTimeout: 10 * time.Second, LogLevel: "debug"}},
		{name: "config flag is ignored", args: []string{"cmd", "-c", "x.json", "-t", "5"},
			expected: &Config{CommandTimeout: 5 * time.Second}},
		{name: "timeout kept when -t absent", args: []string{"cmd", "-l", "info"}, initial: &Config{CommandTimeout: 500 * time.Millisecond},
			expected: &Config{CommandTimeout: 500 * time.Millisecond, LogLevel: "info"}},
		{name: "-t overrides earlier value", args: []string{"cmd", "-t", "2"}, initial: &Config{CommandTimeout: 1500 * time.Millisecond},
			expected: &Config{CommandTimeout: 2 * time.Second}},
		{name: "incorrect timeout", args: []string{"cmd", "-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}
			if tt.initial != nil {
				*config = *tt.initial
			}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

func TestLoadConfig_SubSecondJSONTimeout(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	p := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"command_timeout":"500ms"}`), 0o600))

	os.Args = []string{"vault", "-c", p}
	cfg := LoadConfig()
	assert.Equal(t, 500*time.Millisecond, cfg.CommandTimeout)

	os.Args = []string{"vault", "-c", p, "-t", "3"}
	cfg = LoadConfig()
	assert.Equal(t, 3*time.Second, cfg.CommandTimeout)
}
