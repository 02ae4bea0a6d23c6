package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "lexical", cfg.Analysis.InterfaceOrder)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultDuckBatchSize, cfg.Store.BatchSize)
	assert.Equal(t, 30, cfg.Server.ReadTimeoutSeconds)
	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netdelta.yaml")
	content := `
input: logs/netstats.log
parser:
  date_layouts: ["02/01/2006 15:04"]
  strict_order: true
analysis:
  interface_order: first_seen
store:
  backend: duckdb
  temp_directory: tmp
output:
  format: csv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "logs/netstats.log"), cfg.Input)
	assert.Equal(t, filepath.Join(dir, "tmp"), cfg.Store.TempDirectory)
	assert.Equal(t, []string{"02/01/2006 15:04"}, cfg.Parser.DateLayouts)
	assert.True(t, cfg.Parser.StrictOrder)
	assert.Equal(t, "first_seen", cfg.Analysis.InterfaceOrder)
	assert.Equal(t, "duckdb", cfg.Store.Backend)
	assert.Equal(t, "csv", cfg.Output.Format)
	// Unset fields still get defaults.
	assert.Equal(t, DefaultDuckMemory, cfg.Store.DuckDBMemoryLimit)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("NETDELTA_LOG_LEVEL", "debug")
	t.Setenv("NETDELTA_STORE", "duckdb")
	t.Setenv("NETDELTA_LISTEN", "127.0.0.1:9000")
	t.Setenv("NETDELTA_TEMP_DIR", "/var/tmp/netdelta")

	path := filepath.Join(t.TempDir(), "netdelta.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: memory\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "duckdb", cfg.Store.Backend)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Listen)
	assert.Equal(t, "/var/tmp/netdelta", cfg.Store.TempDirectory)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input = "/data/netstats.log"
	cfg.Analysis.InterfaceOrder = "first_seen"

	path := filepath.Join(t.TempDir(), "nested", "netdelta.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"backend", func(c *Config) { c.Store.Backend = "sqlite" }},
		{"order", func(c *Config) { c.Analysis.InterfaceOrder = "random" }},
		{"format", func(c *Config) { c.Output.Format = "xml" }},
		{"progress", func(c *Config) { c.Parser.ProgressEvery = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}

	cfg := DefaultConfig()
	cfg.Output.Format = "JSON"
	assert.NoError(t, Validate(cfg))
}
