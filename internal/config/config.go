// Package config provides configuration loading and validation for the gateway.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the gateway configuration. It can be loaded from a JSON,
// TOML or YAML file; missing values are filled from Defaults.
type Config struct {
	StoreDir        string   `json:"store_dir,omitempty" toml:"store_dir" yaml:"store_dir" validate:"required"`
	Host            string   `json:"host,omitempty" toml:"host" yaml:"host" validate:"omitempty,hostname_rfc1123|ip"`
	Port            int      `json:"port,omitempty" toml:"port" yaml:"port" validate:"min=1,max=65535"`
	LogLevel        string   `json:"log_level,omitempty" toml:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat       string   `json:"log_format,omitempty" toml:"log_format" yaml:"log_format" validate:"omitempty,oneof=json console"`
	CORSAllowOrigin string   `json:"cors_allow_origin,omitempty" toml:"cors_allow_origin" yaml:"cors_allow_origin"`
	ReadTimeout     Duration `json:"read_timeout,omitempty" toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    Duration `json:"write_timeout,omitempty" toml:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     Duration `json:"idle_timeout,omitempty" toml:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout Duration `json:"shutdown_timeout,omitempty" toml:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Defaults returns the configuration used when nothing else is specified.
func Defaults() Config {
	return Config{
		StoreDir:        "services",
		Host:            "0.0.0.0",
		Port:            5432,
		LogLevel:        "info",
		LogFormat:       "json",
		CORSAllowOrigin: "*",
		ReadTimeout:     Duration{10 * time.Second},
		WriteTimeout:    Duration{60 * time.Second},
		IdleTimeout:     Duration{60 * time.Second},
		ShutdownTimeout: Duration{30 * time.Second},
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig loads configuration from a file. The format is chosen by the
// file extension: .json, .toml, .yaml or .yml.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables when they are set.
func (c *Config) ApplyEnv() {
	c.StoreDir = GetEnvString("SERVICES_DIR", c.StoreDir)
	c.Host = GetEnvString("HOST", c.Host)
	c.Port = GetEnvInt("PORT", c.Port)
	c.LogLevel = GetEnvString("LOG_LEVEL", c.LogLevel)
	c.LogFormat = GetEnvString("LOG_FORMAT", c.LogFormat)
	c.CORSAllowOrigin = GetEnvString("CORS_ALLOW_ORIGIN", c.CORSAllowOrigin)
}

// Validate checks that the configuration has valid values and that the
// store directory exists.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %s", describeValidation(err))
	}

	for name, d := range map[string]Duration{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"idle_timeout":     c.IdleTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if d.Duration < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", name)
		}
	}

	info, err := os.Stat(c.StoreDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("config error: store directory not found: %s", c.StoreDir)
	}
	if err != nil {
		return fmt.Errorf("config error: store directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("config error: store path is not a directory: %s", c.StoreDir)
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.StoreDir == "" {
		result.StoreDir = defaults.StoreDir
	}
	if result.Host == "" {
		result.Host = defaults.Host
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.CORSAllowOrigin == "" {
		result.CORSAllowOrigin = defaults.CORSAllowOrigin
	}
	if result.ReadTimeout.Duration == 0 {
		result.ReadTimeout = defaults.ReadTimeout
	}
	if result.WriteTimeout.Duration == 0 {
		result.WriteTimeout = defaults.WriteTimeout
	}
	if result.IdleTimeout.Duration == 0 {
		result.IdleTimeout = defaults.IdleTimeout
	}
	if result.ShutdownTimeout.Duration == 0 {
		result.ShutdownTimeout = defaults.ShutdownTimeout
	}

	return result
}

// describeValidation returns the first validator failure as "field - tag".
func describeValidation(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return fmt.Sprintf("'%s' failed '%s'", fe.Field(), fe.Tag())
	}
	return err.Error()
}
