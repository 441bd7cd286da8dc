// Package config loads reelmatch settings from defaults, an optional YAML
// file and REELMATCH_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"
)

// DefaultDatasetURL is the public movie metadata CSV.
const DefaultDatasetURL = "https://drive.google.com/uc?export=download&id=1cCkwiVv4mgfl20ntgY3n4yApcWqqZQe6"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Recommend RecommendConfig `koanf:"recommend"`
	Store     StoreConfig     `koanf:"store"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	// RateLimit is requests per minute per client IP on recommendation routes; 0 disables it.
	RateLimit int `koanf:"rate_limit"`
}

type DatasetConfig struct {
	URL        string        `koanf:"url"`
	Path       string        `koanf:"path"` // local CSV, takes precedence over URL
	Timeout    time.Duration `koanf:"timeout"`
	MaxRetries int           `koanf:"max_retries"`
	MaxBytes   int64         `koanf:"max_bytes"`
}

type RecommendConfig struct {
	Limit       int     `koanf:"limit"`
	Cutoff      float64 `koanf:"cutoff"`
	ExcludeSelf bool    `koanf:"exclude_self"`
	CacheSize   int     `koanf:"cache_size"`
}

type StoreConfig struct {
	// DSN selects the backend: "" (SQLite at data/reelmatch.db), "memory",
	// postgres:// URLs, or any other value as a SQLite path.
	DSN       string `koanf:"dsn"`
	Snapshots bool   `koanf:"snapshots"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Dataset: DatasetConfig{
			URL:        DefaultDatasetURL,
			Timeout:    60 * time.Second,
			MaxRetries: 3,
			MaxBytes:   64 << 20,
		},
		Recommend: RecommendConfig{
			Limit:     30,
			Cutoff:    0.6,
			CacheSize: 1024,
		},
		Store: StoreConfig{
			Snapshots: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must be >= 0, got %d", c.Server.RateLimit))
	}
	if c.Dataset.URL == "" && c.Dataset.Path == "" {
		errs = append(errs, errors.New("dataset.url or dataset.path is required"))
	}
	if c.Dataset.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("dataset.max_retries must be >= 0, got %d", c.Dataset.MaxRetries))
	}
	if c.Recommend.Limit <= 0 {
		errs = append(errs, fmt.Errorf("recommend.limit must be > 0, got %d", c.Recommend.Limit))
	}
	if c.Recommend.Cutoff < 0 || c.Recommend.Cutoff > 1 {
		errs = append(errs, fmt.Errorf("recommend.cutoff must be within [0, 1], got %g", c.Recommend.Cutoff))
	}
	if c.Recommend.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("recommend.cache_size must be >= 0, got %d", c.Recommend.CacheSize))
	}
	return errors.Join(errs...)
}
