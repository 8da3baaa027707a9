package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Suite   SuiteConfig   `mapstructure:"suite"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// SuiteConfig holds suite orchestration knobs.
type SuiteConfig struct {
	Workers           int `mapstructure:"workers"`
	MaxDocuments      int `mapstructure:"max_documents"`
	DefaultTimeoutSec int `mapstructure:"default_timeout_sec"`
}

// SandboxConfig holds sandbox resource limits.
type SandboxConfig struct {
	OutputLimitBytes int    `mapstructure:"output_limit_bytes"`
	TempRoot         string `mapstructure:"temp_root"`
}

// StoreConfig holds storage locations.
type StoreConfig struct {
	// DocsRoot is the directory holding repository document trees.
	DocsRoot string `mapstructure:"docs_root"`

	// HistoryPath is the SQLite run-history database file.
	HistoryPath string `mapstructure:"history_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// New loads and validates the application configuration.
func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.transport", "stdio")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("suite.workers", 4)
	viper.SetDefault("suite.max_documents", 50)
	viper.SetDefault("suite.default_timeout_sec", 10)
	viper.SetDefault("sandbox.output_limit_bytes", 64*1024)
	viper.SetDefault("sandbox.temp_root", "")
	viper.SetDefault("store.docs_root", "./docs")
	viper.SetDefault("store.history_path", "./doctest-history.db")
	viper.SetDefault("logging.mode", "production")
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid.
func (c *Config) validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	if c.Suite.Workers <= 0 {
		return fmt.Errorf("suite.workers must be positive, got: %d", c.Suite.Workers)
	}

	if c.Suite.MaxDocuments <= 0 {
		return fmt.Errorf("suite.max_documents must be positive, got: %d", c.Suite.MaxDocuments)
	}

	if c.Suite.DefaultTimeoutSec <= 0 {
		return fmt.Errorf("suite.default_timeout_sec must be positive, got: %d", c.Suite.DefaultTimeoutSec)
	}

	if c.Sandbox.OutputLimitBytes <= 0 {
		return fmt.Errorf("sandbox.output_limit_bytes must be positive, got: %d", c.Sandbox.OutputLimitBytes)
	}

	if c.Store.DocsRoot == "" {
		return fmt.Errorf("store.docs_root must not be empty")
	}

	if c.Store.HistoryPath == "" {
		return fmt.Errorf("store.history_path must not be empty")
	}

	return nil
}

// DefaultTimeout returns the per-example timeout as a duration.
func (c *Config) DefaultTimeout() time.Duration {
	return time.Duration(c.Suite.DefaultTimeoutSec) * time.Second
}
