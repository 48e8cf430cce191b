// Package config loads who-read-whom configuration from an optional YAML file
// with environment variable overrides. A .env file in the working directory is
// honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAPIBaseURL is where the backend listens unless configured otherwise.
const DefaultAPIBaseURL = "http://localhost:8080/api/v1"

// Config holds all who-read-whom configuration.
type Config struct {
	// API configures the backend REST endpoint.
	API APIConfig `yaml:"api"`

	// Import configures CSV bulk import behavior.
	Import ImportConfig `yaml:"import"`

	// Logging configures categorized file logging.
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the backend REST endpoint.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`

	// FetchLimit is how many rows admin views request per load. The API is
	// not paginated for the admin views; display pagination is client-side.
	FetchLimit int `yaml:"fetch_limit"`

	// SearchLimit caps search candidate lists.
	SearchLimit int `yaml:"search_limit"`
}

// ImportConfig configures CSV bulk import behavior.
type ImportConfig struct {
	// Workers bounds how many create requests run concurrently.
	Workers int `yaml:"workers"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Dir   string `yaml:"dir"`   // empty disables file logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     DefaultAPIBaseURL,
			Timeout:     30 * time.Second,
			FetchLimit:  1000,
			SearchLimit: 20,
		},
		Import: ImportConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration in precedence order: defaults, then the YAML file
// at path (skipped when path is empty or missing), then environment
// variables. A .env file is loaded first so it can feed the env overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("WRW_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("WRW_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.API.Timeout = d
		}
	}
	if v := os.Getenv("WRW_IMPORT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Import.Workers = n
		}
	}
	if v := os.Getenv("WRW_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("WRW_LOG_DIR"); v != "" {
		c.Logging.Dir = v
	}
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Import.Workers <= 0 {
		return fmt.Errorf("import.workers must be positive")
	}
	return nil
}
