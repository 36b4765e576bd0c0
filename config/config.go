// Package config loads the YAML configuration for the search pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the search pipeline configuration.
type Config struct {
	Search  SearchConfig  `yaml:"search"`
	Optics  OpticsConfig  `yaml:"optics"`
	Bangs   BangsConfig   `yaml:"bangs"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// SearchConfig holds query admission and fan-out settings.
type SearchConfig struct {
	DefaultK        int     `yaml:"default_k"`
	MaxK            int     `yaml:"max_k"`
	ShardTimeoutMS  int     `yaml:"shard_timeout_ms"`
	OverFetchFactor int     `yaml:"overfetch_factor"`
	RateQPS         float64 `yaml:"rate_qps"`   // 0 = unlimited
	RateBurst       int     `yaml:"rate_burst"` // defaults to ceil of rate_qps
	Workers         int     `yaml:"workers"`    // 0 = one per shard
}

// OpticsConfig holds ranking-DSL compilation settings.
type OpticsConfig struct {
	CacheSize int    `yaml:"cache_size"`
	Prefix    string `yaml:"prefix"`
}

// BangsConfig holds shortcut-table settings.
type BangsConfig struct {
	Blob string `yaml:"blob"`
}

// StorageConfig holds blob store settings.
type StorageConfig struct {
	Kind string `yaml:"kind"` // memory, local, minio (default: memory)

	// Local storage settings.
	Dir string `yaml:"dir"`

	// MinIO / S3-compatible settings.
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	KeyPrefix string `yaml:"key_prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: info)
	Format string `yaml:"format"` // text, json (default: text)
}

// Load reads configuration from a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Search.DefaultK <= 0 {
		c.Search.DefaultK = 20
	}
	if c.Search.MaxK <= 0 {
		c.Search.MaxK = 100
	}
	if c.Search.ShardTimeoutMS <= 0 {
		c.Search.ShardTimeoutMS = 500
	}
	if c.Search.OverFetchFactor <= 0 {
		c.Search.OverFetchFactor = 2
	}
	if c.Search.RateBurst <= 0 && c.Search.RateQPS > 0 {
		c.Search.RateBurst = int(c.Search.RateQPS) + 1
	}
	if c.Optics.CacheSize <= 0 {
		c.Optics.CacheSize = 128
	}
	if c.Optics.Prefix == "" {
		c.Optics.Prefix = "optics"
	}
	if c.Bangs.Blob == "" {
		c.Bangs.Blob = "bangs/bangs.json.zst"
	}
	if c.Storage.Kind == "" {
		c.Storage.Kind = "memory"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Search.DefaultK > c.Search.MaxK {
		return fmt.Errorf("search.default_k %d exceeds search.max_k %d", c.Search.DefaultK, c.Search.MaxK)
	}
	switch c.Storage.Kind {
	case "memory":
	case "local":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for local storage")
		}
	case "minio":
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("storage.endpoint is required for minio storage")
		}
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for minio storage")
		}
	default:
		return fmt.Errorf("storage.kind must be \"memory\", \"local\" or \"minio\", got %q", c.Storage.Kind)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
