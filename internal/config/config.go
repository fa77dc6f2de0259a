package config

import (
	"fmt"
	"os"
	"time"

	"github.com/guimove/trainfit/internal/optimizer"
)

// Config is the top-level configuration for trainfit.
type Config struct {
	Env       string          `mapstructure:"env" yaml:"env"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Optimizer OptimizerConfig `mapstructure:"optimizer" yaml:"optimizer"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
}

type ServerConfig struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	RateLimit         float64       `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst         int           `mapstructure:"rate_burst" yaml:"rate_burst"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver" yaml:"driver"` // memory, postgres, sqlite
	DSN     string `mapstructure:"dsn" yaml:"dsn"`
	Migrate bool   `mapstructure:"migrate" yaml:"migrate"`
}

type RedisConfig struct {
	URL     string `mapstructure:"url" yaml:"url"` // empty = in-process broker
	Channel string `mapstructure:"channel" yaml:"channel"`
}

type OptimizerConfig struct {
	Resolution    float64 `mapstructure:"resolution" yaml:"resolution"`
	MaxQuantity   int     `mapstructure:"max_quantity" yaml:"max_quantity"`
	MaxTableCells int     `mapstructure:"max_table_cells" yaml:"max_table_cells"`
	MaxProbes     int     `mapstructure:"max_probes" yaml:"max_probes"`
	EnforceVolume bool    `mapstructure:"enforce_volume" yaml:"enforce_volume"`
}

type CacheConfig struct {
	Size int           `mapstructure:"size" yaml:"size"`
	Dir  string        `mapstructure:"dir" yaml:"dir"`
	TTL  time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // json, console
}

type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	opts := optimizer.DefaultOptions()
	return Config{
		Env: detectEnv(),
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RateLimit:         50,
			RateBurst:         100,
		},
		Database: DatabaseConfig{
			Driver:  "memory",
			Migrate: true,
		},
		Redis: RedisConfig{
			Channel: "trainfit.events",
		},
		Optimizer: OptimizerConfig{
			Resolution:    opts.Resolution,
			MaxQuantity:   opts.MaxQuantity,
			MaxTableCells: opts.MaxTableCells,
			MaxProbes:     opts.MaxProbes,
			EnforceVolume: opts.EnforceVolume,
		},
		Cache: CacheConfig{
			Size: 128,
			TTL:  time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Output: OutputConfig{
			Format: "table",
		},
	}
}

// Validate checks the config for consistency.
func (c *Config) Validate() error {
	validDrivers := map[string]bool{"memory": true, "postgres": true, "sqlite": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database driver must be memory, postgres, or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.Driver != "memory" && c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required for driver %q", c.Database.Driver)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be non-negative, got %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		return fmt.Errorf("rate_burst must be positive when rate limiting, got %d", c.Server.RateBurst)
	}
	if err := c.Optimizer.Options().Validate(); err != nil {
		return fmt.Errorf("optimizer: %w", err)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache size must be non-negative, got %d", c.Cache.Size)
	}
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("log level must be trace, debug, info, warn, or error, got %q", c.Log.Level)
	}
	validLogFormats := map[string]bool{"json": true, "console": true}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("log format must be json or console, got %q", c.Log.Format)
	}
	validFormats := map[string]bool{"table": true, "json": true, "markdown": true}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("output format must be table, json, or markdown, got %q", c.Output.Format)
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	return nil
}

// Options converts the optimizer section to optimizer options.
func (o OptimizerConfig) Options() optimizer.Options {
	return optimizer.Options{
		Resolution:    o.Resolution,
		MaxQuantity:   o.MaxQuantity,
		MaxTableCells: o.MaxTableCells,
		MaxProbes:     o.MaxProbes,
		EnforceVolume: o.EnforceVolume,
	}
}

// detectEnv reads the deployment environment name.
func detectEnv() string {
	if e := os.Getenv("TRAINFIT_ENV"); e != "" {
		return e
	}
	return "development"
}
