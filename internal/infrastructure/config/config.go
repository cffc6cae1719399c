package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Remote    RemoteConfig
	Polling   PollingConfig
	Views     ViewsConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// RemoteConfig holds annotation API client configuration.
type RemoteConfig struct {
	BaseURL      string        `envconfig:"REMOTE_URL" default:"http://localhost:8080"`
	Token        string        `envconfig:"REMOTE_TOKEN" default:""`
	Timeout      time.Duration `envconfig:"REMOTE_TIMEOUT" default:"30s"`
	RetryMax     int           `envconfig:"REMOTE_RETRY_MAX" default:"3"`
	RetryWaitMin time.Duration `envconfig:"REMOTE_RETRY_WAIT_MIN" default:"1s"`
	RetryWaitMax time.Duration `envconfig:"REMOTE_RETRY_WAIT_MAX" default:"15s"`
	// RequestsPerSecond caps outbound call rate; zero means unlimited.
	RequestsPerSecond float64 `envconfig:"REMOTE_RPS" default:"0"`
}

// PollingConfig holds the project metadata refresh settings.
type PollingConfig struct {
	Interval time.Duration `envconfig:"POLL_INTERVAL" default:"10s"`
	Enabled  bool          `envconfig:"POLL_ENABLED" default:"true"`
}

// ViewsConfig holds view preset seeding configuration.
type ViewsConfig struct {
	PresetsDir string `envconfig:"VIEW_PRESETS_DIR" default:"./presets"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds inbound rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Remote: RemoteConfig{
			BaseURL:      "http://localhost:8080",
			Timeout:      30 * time.Second,
			RetryMax:     3,
			RetryWaitMin: 1 * time.Second,
			RetryWaitMax: 15 * time.Second,
		},
		Polling: PollingConfig{
			Interval: 10 * time.Second,
			Enabled:  true,
		},
		Views: ViewsConfig{
			PresetsDir: "./presets",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
