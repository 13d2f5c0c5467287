// Package config loads memory bank settings from defaults, an optional YAML
// file and MEMORYBANK_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultRoot is used when neither the file nor MEMORYBANK_ROOT sets one
	DefaultRoot = "memory-bank"

	envPrefix         = "MEMORYBANK_"
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Config holds the complete memory bank configuration.
type Config struct {
	Root    string        `koanf:"root"`
	Cache   CacheConfig   `koanf:"cache"`
	Reader  ReaderConfig  `koanf:"reader"`
	History HistoryConfig `koanf:"history"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// CacheConfig sizes the content cache.
type CacheConfig struct {
	MaxSize       int           `koanf:"max_size"`
	MaxAge        time.Duration `koanf:"max_age"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// ReaderConfig tunes the adaptive reader.
type ReaderConfig struct {
	StreamThreshold int64         `koanf:"stream_threshold"`
	ChunkSize       int           `koanf:"chunk_size"`
	PauseEvery      int           `koanf:"pause_every"`
	Timeout         time.Duration `koanf:"timeout"`
}

// HistoryConfig controls the sqlite revision log. An empty Path derives
// the database location from the root.
type HistoryConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Path      string `koanf:"path"`
	Retention int    `koanf:"retention"`
}

// LogConfig selects the log level and encoder.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Root: DefaultRoot,
		Cache: CacheConfig{
			MaxSize:       100,
			MaxAge:        5 * time.Minute,
			SweepInterval: time.Minute,
		},
		Reader: ReaderConfig{
			StreamThreshold: 1 << 20,
			ChunkSize:       64 << 10,
			PauseEvery:      10,
			Timeout:         30 * time.Second,
		},
		History: HistoryConfig{
			Enabled:   true,
			Retention: 200,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks that every size and duration is usable.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Root) == "" {
		errs = append(errs, errors.New("root is required"))
	}
	if c.Cache.MaxSize <= 0 {
		errs = append(errs, fmt.Errorf("cache.max_size must be positive, got %d", c.Cache.MaxSize))
	}
	if c.Cache.MaxAge <= 0 {
		errs = append(errs, fmt.Errorf("cache.max_age must be positive, got %s", c.Cache.MaxAge))
	}
	if c.Cache.SweepInterval < 0 {
		errs = append(errs, fmt.Errorf("cache.sweep_interval must not be negative, got %s", c.Cache.SweepInterval))
	}
	if c.Reader.StreamThreshold <= 0 {
		errs = append(errs, fmt.Errorf("reader.stream_threshold must be positive, got %d", c.Reader.StreamThreshold))
	}
	if c.Reader.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("reader.chunk_size must be positive, got %d", c.Reader.ChunkSize))
	}
	if c.Reader.PauseEvery <= 0 {
		errs = append(errs, fmt.Errorf("reader.pause_every must be positive, got %d", c.Reader.PauseEvery))
	}
	if c.Reader.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("reader.timeout must be positive, got %s", c.Reader.Timeout))
	}
	if c.History.Retention <= 0 {
		errs = append(errs, fmt.Errorf("history.retention must be positive, got %d", c.History.Retention))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
