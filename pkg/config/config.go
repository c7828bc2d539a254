// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package config loads the service configuration from YAML, environment
// variables and defaults, in that priority order.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix scopes the environment variables, e.g. PROMPTSMITH_SERVER_ADDR.
const EnvPrefix = "PROMPTSMITH"

// Config holds all configuration for the promptsmith server.
// Priority: config file > env vars > defaults.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Validator ValidatorConfig `mapstructure:"validator"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds the HTTP surface configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// Mode routes requests: "legacy" by complexity, "nlac" always the
	// unified strategy.
	Mode string `mapstructure:"mode"`
}

// LLMConfig holds the provider configuration.
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	// APIKey comes from env or config; ANTHROPIC_API_KEY also works.
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`

	// Circuit breaker thresholds.
	BreakerFailures    int `mapstructure:"breaker_failures"`
	BreakerOpenSeconds int `mapstructure:"breaker_open_seconds"`
}

// RetrievalConfig holds the few-shot example retrieval configuration.
type RetrievalConfig struct {
	// CatalogPath points at the curated example catalog (JSON or YAML).
	CatalogPath string `mapstructure:"catalog_path"`
}

// ValidatorConfig holds the prompt validation configuration.
type ValidatorConfig struct {
	// CalibrationPath points at the calibrated threshold file. Empty or
	// unreadable files fall back to the built-in default.
	CalibrationPath string `mapstructure:"calibration_path"`
}

// DatabaseConfig holds the metrics store configuration.
type DatabaseConfig struct {
	// Path is the sqlite database file. Empty disables persistence.
	Path string `mapstructure:"path"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	// Format is "json" or "console".
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file (optional), the
// PROMPTSMITH_* environment and the defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Mode != "legacy" && c.Server.Mode != "nlac" {
		return fmt.Errorf("server.mode must be legacy or nlac, got %q", c.Server.Mode)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.BreakerFailures <= 0 {
		return fmt.Errorf("llm.breaker_failures must be positive, got %d", c.LLM.BreakerFailures)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.mode", "legacy")

	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.temperature", 1.0)
	v.SetDefault("llm.breaker_failures", 5)
	v.SetDefault("llm.breaker_open_seconds", 30)

	v.SetDefault("retrieval.catalog_path", "")
	v.SetDefault("validator.calibration_path", "")
	v.SetDefault("database.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
