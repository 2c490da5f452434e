// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "2m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for Credlens.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Scoring configures the connection to the scoring service.
	Scoring ScoringConfig `yaml:"scoring"`

	// Cache configures the local artifact cache.
	Cache CacheConfig `yaml:"cache"`

	// Dashboard configures the interactive dashboard's display defaults.
	Dashboard DashboardConfig `yaml:"dashboard"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Scoring   *ScoringConfig   `yaml:"scoring,omitempty"`
	Cache     *CacheConfig     `yaml:"cache,omitempty"`
	Dashboard *DashboardConfig `yaml:"dashboard,omitempty"`
}

// ScoringConfig configures the scoring service connection.
type ScoringConfig struct {
	// BaseURL is the root URL of the scoring service. Required.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds every call except bivariate analysis.
	// Default: 30s
	Timeout Duration `yaml:"timeout"`

	// BivariateTimeout bounds bivariate analysis calls, the service's
	// heaviest computation.
	// Default: 60s
	BivariateTimeout Duration `yaml:"bivariate_timeout"`
}

// CacheConfig configures the local artifact cache.
type CacheConfig struct {
	// Dir is the scratch directory where fetched artifacts are stored.
	// Default: ${HOME}/.cache/credlens/artifacts
	Dir string `yaml:"dir"`
}

// DashboardConfig configures display defaults and parameter bounds.
type DashboardConfig struct {
	// GlobalFeatures is the initial feature count for the global
	// impact chart. Default: 20
	GlobalFeatures int `yaml:"global_features"`

	// LocalFeatures is the initial feature count for the per-client
	// impact chart. Default: 16
	LocalFeatures int `yaml:"local_features"`

	// MinFeatures and MaxFeatures bound the feature-count controls.
	// Defaults: 5 and 30
	MinFeatures int `yaml:"min_features"`
	MaxFeatures int `yaml:"max_features"`

	// DeclineThreshold is the score at and above which an application
	// is shown as declined. Default: 0.5
	DeclineThreshold float64 `yaml:"decline_threshold"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Environment: Development,
		Scoring: ScoringConfig{
			BaseURL:          "http://127.0.0.1:8500",
			Timeout:          Duration(30 * time.Second),
			BivariateTimeout: Duration(60 * time.Second),
		},
		Cache: CacheConfig{
			Dir: filepath.Join(homeDir, ".cache", "credlens", "artifacts"),
		},
		Dashboard: DashboardConfig{
			GlobalFeatures:   20,
			LocalFeatures:    16,
			MinFeatures:      5,
			MaxFeatures:      30,
			DeclineThreshold: 0.5,
		},
	}
}

// Load loads configuration from the CREDLENS_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or defaults - if CREDLENS_CONFIG is not set, this
// fails. This ensures deterministic, auditable configuration with no hidden
// overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("CREDLENS_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("CREDLENS_CONFIG environment variable not set; " +
			"set it to the path of your credlens.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables do not
// override config values - this ensures deterministic, auditable configuration.
// The only expansion performed is ${HOME} and similar path variables for
// portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Apply environment-specific overrides (development/staging/production sections in the file).
	cfg.applyEnvironmentOverrides()

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Scoring != nil {
		if overrides.Scoring.BaseURL != "" {
			c.Scoring.BaseURL = overrides.Scoring.BaseURL
		}
		if overrides.Scoring.Timeout != 0 {
			c.Scoring.Timeout = overrides.Scoring.Timeout
		}
		if overrides.Scoring.BivariateTimeout != 0 {
			c.Scoring.BivariateTimeout = overrides.Scoring.BivariateTimeout
		}
	}

	if overrides.Cache != nil {
		if overrides.Cache.Dir != "" {
			c.Cache.Dir = overrides.Cache.Dir
		}
	}

	if overrides.Dashboard != nil {
		if overrides.Dashboard.GlobalFeatures != 0 {
			c.Dashboard.GlobalFeatures = overrides.Dashboard.GlobalFeatures
		}
		if overrides.Dashboard.LocalFeatures != 0 {
			c.Dashboard.LocalFeatures = overrides.Dashboard.LocalFeatures
		}
		if overrides.Dashboard.MinFeatures != 0 {
			c.Dashboard.MinFeatures = overrides.Dashboard.MinFeatures
		}
		if overrides.Dashboard.MaxFeatures != 0 {
			c.Dashboard.MaxFeatures = overrides.Dashboard.MaxFeatures
		}
		if overrides.Dashboard.DeclineThreshold != 0 {
			c.Dashboard.DeclineThreshold = overrides.Dashboard.DeclineThreshold
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Cache.Dir = expandVars(c.Cache.Dir, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Scoring.BaseURL == "" {
		errs = append(errs, fmt.Errorf("scoring.base_url is required"))
	}
	if c.Scoring.Timeout < 0 {
		errs = append(errs, fmt.Errorf("scoring.timeout must not be negative"))
	}
	if c.Scoring.BivariateTimeout < 0 {
		errs = append(errs, fmt.Errorf("scoring.bivariate_timeout must not be negative"))
	}

	if c.Cache.Dir == "" {
		errs = append(errs, fmt.Errorf("cache.dir is required"))
	}

	d := c.Dashboard
	if d.MinFeatures <= 0 || d.MaxFeatures < d.MinFeatures {
		errs = append(errs, fmt.Errorf("dashboard feature bounds %d-%d are invalid", d.MinFeatures, d.MaxFeatures))
	} else {
		if d.GlobalFeatures < d.MinFeatures || d.GlobalFeatures > d.MaxFeatures {
			errs = append(errs, fmt.Errorf("dashboard.global_features %d is outside %d-%d", d.GlobalFeatures, d.MinFeatures, d.MaxFeatures))
		}
		if d.LocalFeatures < d.MinFeatures || d.LocalFeatures > d.MaxFeatures {
			errs = append(errs, fmt.Errorf("dashboard.local_features %d is outside %d-%d", d.LocalFeatures, d.MinFeatures, d.MaxFeatures))
		}
	}
	if d.DeclineThreshold <= 0 || d.DeclineThreshold >= 1 {
		errs = append(errs, fmt.Errorf("dashboard.decline_threshold %v must be inside (0,1)", d.DeclineThreshold))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the cache directory if it doesn't exist.
func (c *Config) EnsurePaths() error {
	if c.Cache.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.Cache.Dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", c.Cache.Dir, err)
	}
	return nil
}
