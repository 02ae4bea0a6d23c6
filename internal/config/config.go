// Package config provides YAML-based configuration for netdelta.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFormat        = "table"
	DefaultBackend       = "memory"
	DefaultInterfaceOrd  = "lexical"
	DefaultLogLevel      = "info"
	DefaultDuckBatchSize = 50000
	DefaultDuckMemory    = "1GB"
	DefaultDuckThreads   = 4
)

// Config is the root configuration document.
type Config struct {
	Input    string         `yaml:"input,omitempty"`
	Parser   ParserConfig   `yaml:"parser"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Store    StoreConfig    `yaml:"store"`
	Output   OutputConfig   `yaml:"output"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// ParserConfig tunes record parsing.
type ParserConfig struct {
	// DateLayouts are Go time layouts tried before the built-in ones.
	DateLayouts   []string `yaml:"date_layouts,omitempty"`
	StrictOrder   bool     `yaml:"strict_order"`
	ProgressEvery int      `yaml:"progress_every"`
}

// AnalysisConfig tunes the delta tables.
type AnalysisConfig struct {
	InterfaceOrder string `yaml:"interface_order"`
}

// StoreConfig selects the sample store backend.
type StoreConfig struct {
	Backend           string `yaml:"backend"`
	TempDirectory     string `yaml:"temp_directory,omitempty"`
	DuckDBMemoryLimit string `yaml:"duckdb_memory_limit"`
	DuckDBThreads     int    `yaml:"duckdb_threads"`
	BatchSize         int    `yaml:"batch_size"`
}

// OutputConfig controls the report writer.
type OutputConfig struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path,omitempty"`
}

// ServerConfig enables the read-only HTTP view when Listen is set.
type ServerConfig struct {
	Listen              string `yaml:"listen,omitempty"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

// LogConfig sets the logger level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in default values when empty.
func ApplyDefaults(cfg *Config) {
	if cfg.Analysis.InterfaceOrder == "" {
		cfg.Analysis.InterfaceOrder = DefaultInterfaceOrd
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultBackend
	}
	if cfg.Store.DuckDBMemoryLimit == "" {
		cfg.Store.DuckDBMemoryLimit = DefaultDuckMemory
	}
	if cfg.Store.DuckDBThreads == 0 {
		cfg.Store.DuckDBThreads = DefaultDuckThreads
	}
	if cfg.Store.BatchSize == 0 {
		cfg.Store.BatchSize = DefaultDuckBatchSize
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultFormat
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 30
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

// LoadConfig reads a YAML config file, applies environment overrides and
// defaults, and resolves relative paths against the file's directory.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvironmentOverrides()
	ApplyDefaults(cfg)
	cfg.resolvePaths(filepath.Dir(configPath))

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnvironmentOverrides lets NETDELTA_* variables override file values.
func (c *Config) ApplyEnvironmentOverrides() {
	if v := os.Getenv("NETDELTA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("NETDELTA_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("NETDELTA_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("NETDELTA_TEMP_DIR"); v != "" {
		c.Store.TempDirectory = v
	}
}

func (c *Config) resolvePaths(configDir string) {
	if c.Input != "" && !filepath.IsAbs(c.Input) {
		c.Input = filepath.Join(configDir, c.Input)
	}
	if c.Output.Path != "" && !filepath.IsAbs(c.Output.Path) {
		c.Output.Path = filepath.Join(configDir, c.Output.Path)
	}
	if c.Store.TempDirectory != "" && !filepath.IsAbs(c.Store.TempDirectory) {
		c.Store.TempDirectory = filepath.Join(configDir, c.Store.TempDirectory)
	}
}

// Validate performs minimal validation of enumerated fields.
func Validate(cfg *Config) error {
	switch cfg.Store.Backend {
	case "memory", "duckdb":
	default:
		return fmt.Errorf("store.backend must be memory or duckdb, got %q", cfg.Store.Backend)
	}
	switch cfg.Analysis.InterfaceOrder {
	case "lexical", "first_seen":
	default:
		return fmt.Errorf("analysis.interface_order must be lexical or first_seen, got %q", cfg.Analysis.InterfaceOrder)
	}
	switch strings.ToLower(cfg.Output.Format) {
	case "table", "json", "csv", "msgpack":
	default:
		return fmt.Errorf("output.format must be table, json, csv or msgpack, got %q", cfg.Output.Format)
	}
	if cfg.Parser.ProgressEvery < 0 {
		return fmt.Errorf("parser.progress_every must not be negative")
	}
	return nil
}
