// Package config provides configuration management for cachekv.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the cachekv configuration.
type Config struct {
	// Storage
	StoreFile   string `toml:"store_file"`
	ResultsFile string `toml:"results_file"`
	Backend     string `toml:"backend"` // "file" or "bolt"
	BoltFile    string `toml:"bolt_file"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	Delay     DelayConfig     `toml:"delay"`
	Benchmark BenchmarkConfig `toml:"benchmark"`
}

// DelayConfig bounds the simulated cold-read delay, in milliseconds.
type DelayConfig struct {
	MinMS int `toml:"min_ms"`
	MaxMS int `toml:"max_ms"`
}

// Min returns the lower delay bound as a duration.
func (d DelayConfig) Min() time.Duration { return time.Duration(d.MinMS) * time.Millisecond }

// Max returns the upper delay bound as a duration.
func (d DelayConfig) Max() time.Duration { return time.Duration(d.MaxMS) * time.Millisecond }

// BenchmarkConfig holds default parameters for benchmark runs.
type BenchmarkConfig struct {
	Requests    int    `toml:"requests"`
	Size        int    `toml:"size"`
	Ratio       string `toml:"ratio"`
	CachedRatio string `toml:"cached_ratio"`
	Storage     string `toml:"storage"`
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		StoreFile:   "kv_store.json",
		ResultsFile: "benchmark_results.json",
		Backend:     "file",
		BoltFile:    "kv_store.db",
		LogLevel:    "info",
		LogFormat:   "text",
		Delay: DelayConfig{
			MinMS: 500,
			MaxMS: 2000,
		},
		Benchmark: BenchmarkConfig{
			Requests:    1000,
			Size:        3,
			Ratio:       "1:1",
			CachedRatio: "1:1",
			Storage:     "redis",
		},
	}
}

// Load reads a TOML config file on top of the defaults.
// A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the engines cannot work with.
func (c *Config) Validate() error {
	switch c.Backend {
	case "file", "bolt":
	default:
		return fmt.Errorf("config: unknown backend %q (want file or bolt)", c.Backend)
	}
	if c.Delay.MinMS < 0 || c.Delay.MaxMS < c.Delay.MinMS {
		return fmt.Errorf("config: invalid delay bounds [%d, %d] ms", c.Delay.MinMS, c.Delay.MaxMS)
	}
	return nil
}
