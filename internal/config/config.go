package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/palemoky/contentiq/internal/database"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Store     StoreConfig     `mapstructure:"store"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// AnalysisConfig holds the estimator lifecycle settings
type AnalysisConfig struct {
	Delay           time.Duration `mapstructure:"delay"`            // simulated work before a bundle is shown
	TTL             time.Duration `mapstructure:"ttl"`              // how long finished analyses are kept
	JanitorInterval time.Duration `mapstructure:"janitor_interval"` // how often expired analyses are purged
	CacheSize       int           `mapstructure:"cache_size"`
}

// StoreConfig holds the transient analysis store configuration
type StoreConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("analysis.delay", 2*time.Second)
	v.SetDefault("analysis.ttl", 30*time.Minute)
	v.SetDefault("analysis.janitor_interval", time.Minute)
	v.SetDefault("analysis.cache_size", 1024)
	v.SetDefault("store.dsn", database.DefaultDSN)
	v.SetDefault("store.max_open_conns", 1)
	v.SetDefault("store.max_idle_conns", 1)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 5.0)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("rate_limit.idle_timeout", 10*time.Minute)
}

func bindEnvVars(v *viper.Viper) {
	// Server
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("server.port", p)
		}
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		v.Set("server.mode", mode)
	}

	// Analysis
	if delay := os.Getenv("ANALYSIS_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			v.Set("analysis.delay", d)
		}
	}

	// Store
	if dsn := os.Getenv("STORE_DSN"); dsn != "" {
		v.Set("store.dsn", dsn)
	}

	// Rate Limit
	if enabled := os.Getenv("RATE_LIMIT_ENABLED"); enabled != "" {
		v.Set("rate_limit.enabled", enabled == "true")
	}
	if rps := os.Getenv("RATE_LIMIT_RPS"); rps != "" {
		if r, err := strconv.ParseFloat(rps, 64); err == nil {
			v.Set("rate_limit.requests_per_second", r)
		}
	}
	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if b, err := strconv.Atoi(burst); err == nil {
			v.Set("rate_limit.burst", b)
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Server.Mode != "debug" && c.Server.Mode != "release" && c.Server.Mode != "test" {
		return fmt.Errorf("invalid server mode: %s (must be 'debug', 'release', or 'test')", c.Server.Mode)
	}

	if c.Analysis.Delay < 0 {
		return fmt.Errorf("analysis delay cannot be negative")
	}

	if c.Analysis.TTL <= 0 {
		return fmt.Errorf("analysis ttl must be positive")
	}

	if c.Analysis.JanitorInterval <= 0 {
		return fmt.Errorf("analysis janitor_interval must be positive")
	}

	if c.Store.DSN == "" {
		return fmt.Errorf("store dsn cannot be empty")
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit requests_per_second must be positive")
	}

	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if c.RateLimit.IdleTimeout <= 0 {
		return fmt.Errorf("rate limit idle_timeout must be positive")
	}

	return nil
}
