// Package config loads application configuration from defaults, an optional
// YAML file, and ATTEND_-prefixed environment variables, in ascending
// precedence. The Bunny access key is operator-supplied via the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces every environment override, e.g.
// ATTEND_BUNNY_ACCESS_KEY.
const envPrefix = "ATTEND"

// Config is the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Bunny   BunnyConfig   `yaml:"bunny" envconfig:"BUNNY"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Query   QueryConfig   `yaml:"query" envconfig:"QUERY"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"required,min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"required"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"required"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"required"`
	RateLimit       RateLimit     `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimit configures the request rate limiter on the query API.
type RateLimit struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"min=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"min=0"`
}

// BunnyConfig locates the storage zone holding the attendance exports. A
// missing access key is not a load error; it surfaces as a fetch-level
// failure when ingestion first talks to the store.
type BunnyConfig struct {
	StorageZone       string        `yaml:"storage_zone" envconfig:"STORAGE_ZONE"`
	FolderPath        string        `yaml:"folder_path" envconfig:"FOLDER_PATH"`
	AccessKey         string        `yaml:"-" envconfig:"ACCESS_KEY"`
	StorageEndpoint   string        `yaml:"storage_endpoint" envconfig:"STORAGE_ENDPOINT"`
	PullZoneURL       string        `yaml:"pull_zone_url" envconfig:"PULL_ZONE_URL"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" validate:"min=0"`
	Timeout           time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// QueryConfig tunes the fuzzy name matching contract.
type QueryConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" envconfig:"SIMILARITY_THRESHOLD" validate:"gt=0,lte=1"`
	MaxMatches          int     `yaml:"max_matches" envconfig:"MAX_MATCHES" validate:"min=1"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimit{
				Enabled: true,
				RPS:     50,
				Burst:   25,
			},
		},
		Bunny: BunnyConfig{
			StorageZone:       "zoom-attendee-reports",
			FolderPath:        "attendee_reports",
			RequestsPerSecond: 4,
			Timeout:           30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Query: QueryConfig{
			SimilarityThreshold: 0.5,
			MaxMatches:          5,
		},
	}
}

// Load builds the configuration: defaults, then the first config file found
// (config.yaml or configs/config.yaml), then environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	if path := findConfigFile(); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func findConfigFile() string {
	for _, location := range []string{"config.yaml", "configs/config.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}
