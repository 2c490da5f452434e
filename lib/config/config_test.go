// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}

	if cfg.Scoring.Timeout.Std() != 30*time.Second {
		t.Errorf("expected timeout=30s, got %s", cfg.Scoring.Timeout.Std())
	}

	if cfg.Scoring.BivariateTimeout.Std() != 60*time.Second {
		t.Errorf("expected bivariate_timeout=60s, got %s", cfg.Scoring.BivariateTimeout.Std())
	}

	if cfg.Dashboard.GlobalFeatures != 20 || cfg.Dashboard.LocalFeatures != 16 {
		t.Errorf("expected feature defaults 20/16, got %d/%d",
			cfg.Dashboard.GlobalFeatures, cfg.Dashboard.LocalFeatures)
	}

	if cfg.Dashboard.DeclineThreshold != 0.5 {
		t.Errorf("expected decline_threshold=0.5, got %v", cfg.Dashboard.DeclineThreshold)
	}
}

func TestLoad_RequiresCredlensConfig(t *testing.T) {
	// Save and restore CREDLENS_CONFIG.
	origConfig := os.Getenv("CREDLENS_CONFIG")
	defer os.Setenv("CREDLENS_CONFIG", origConfig)

	// Unset CREDLENS_CONFIG - Load() should fail.
	os.Unsetenv("CREDLENS_CONFIG")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when CREDLENS_CONFIG not set, got nil")
	}

	expectedMsg := "CREDLENS_CONFIG environment variable not set"
	if err.Error()[:len(expectedMsg)] != expectedMsg {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoad_WithCredlensConfig(t *testing.T) {
	// Save and restore CREDLENS_CONFIG.
	origConfig := os.Getenv("CREDLENS_CONFIG")
	defer os.Setenv("CREDLENS_CONFIG", origConfig)

	// Create temp config file.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "credlens.yaml")

	configContent := `
environment: staging
scoring:
  base_url: http://scoring.test:8500
cache:
  dir: /test/cache
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	// Set CREDLENS_CONFIG and load.
	os.Setenv("CREDLENS_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}

	if cfg.Scoring.BaseURL != "http://scoring.test:8500" {
		t.Errorf("expected base_url=http://scoring.test:8500, got %s", cfg.Scoring.BaseURL)
	}

	if cfg.Cache.Dir != "/test/cache" {
		t.Errorf("expected dir=/test/cache, got %s", cfg.Cache.Dir)
	}
}

func TestLoadFile(t *testing.T) {
	// Create temp config file.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "credlens.yaml")

	configContent := `
environment: staging

scoring:
  base_url: http://scoring.test:8500
  timeout: 10s
  bivariate_timeout: 45s

cache:
  dir: /custom/cache

dashboard:
  global_features: 25
  decline_threshold: 0.4
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}

	if cfg.Scoring.Timeout.Std() != 10*time.Second {
		t.Errorf("expected timeout=10s, got %s", cfg.Scoring.Timeout.Std())
	}

	if cfg.Scoring.BivariateTimeout.Std() != 45*time.Second {
		t.Errorf("expected bivariate_timeout=45s, got %s", cfg.Scoring.BivariateTimeout.Std())
	}

	if cfg.Cache.Dir != "/custom/cache" {
		t.Errorf("expected dir=/custom/cache, got %s", cfg.Cache.Dir)
	}

	if cfg.Dashboard.GlobalFeatures != 25 {
		t.Errorf("expected global_features=25, got %d", cfg.Dashboard.GlobalFeatures)
	}

	// Unset fields keep their defaults.
	if cfg.Dashboard.LocalFeatures != 16 {
		t.Errorf("expected local_features=16 default, got %d", cfg.Dashboard.LocalFeatures)
	}

	if cfg.Dashboard.DeclineThreshold != 0.4 {
		t.Errorf("expected decline_threshold=0.4, got %v", cfg.Dashboard.DeclineThreshold)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "credlens.yaml")

	configContent := `
environment: production

scoring:
  base_url: http://localhost:8500

cache:
  dir: /default/cache

production:
  scoring:
    base_url: https://scoring.internal
    timeout: 15s
  cache:
    dir: /var/cache/credlens
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	// Production overrides should be applied.
	if cfg.Scoring.BaseURL != "https://scoring.internal" {
		t.Errorf("expected base_url=https://scoring.internal, got %s", cfg.Scoring.BaseURL)
	}

	if cfg.Scoring.Timeout.Std() != 15*time.Second {
		t.Errorf("expected timeout=15s from production override, got %s", cfg.Scoring.Timeout.Std())
	}

	if cfg.Cache.Dir != "/var/cache/credlens" {
		t.Errorf("expected dir=/var/cache/credlens, got %s", cfg.Cache.Dir)
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	// Verify that environment variables do NOT override config file values.
	// The config file is the single source of truth for deterministic configuration.

	// Save and restore env vars.
	origURL := os.Getenv("CREDLENS_SCORING_URL")
	origEnv := os.Getenv("CREDLENS_ENVIRONMENT")
	defer func() {
		os.Setenv("CREDLENS_SCORING_URL", origURL)
		os.Setenv("CREDLENS_ENVIRONMENT", origEnv)
	}()

	// Set env vars that should be ignored.
	os.Setenv("CREDLENS_SCORING_URL", "http://env-host:9999")
	os.Setenv("CREDLENS_ENVIRONMENT", "staging")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "credlens.yaml")

	configContent := `
environment: development
scoring:
  base_url: http://file-host:8500
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	// File values should be used, NOT env vars.
	if cfg.Environment != Development {
		t.Errorf("expected environment=development from file, got %s (env vars should not override)", cfg.Environment)
	}

	if cfg.Scoring.BaseURL != "http://file-host:8500" {
		t.Errorf("expected base_url=http://file-host:8500 from file, got %s (env vars should not override)", cfg.Scoring.BaseURL)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/credlens",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/credlens",
		},
		{
			input:    "${MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid environment",
			modify: func(c *Config) {
				c.Environment = "invalid"
			},
			wantErr: true,
		},
		{
			name: "empty base url",
			modify: func(c *Config) {
				c.Scoring.BaseURL = ""
			},
			wantErr: true,
		},
		{
			name: "empty cache dir",
			modify: func(c *Config) {
				c.Cache.Dir = ""
			},
			wantErr: true,
		},
		{
			name: "inverted feature bounds",
			modify: func(c *Config) {
				c.Dashboard.MinFeatures = 30
				c.Dashboard.MaxFeatures = 5
			},
			wantErr: true,
		},
		{
			name: "default outside bounds",
			modify: func(c *Config) {
				c.Dashboard.GlobalFeatures = 50
			},
			wantErr: true,
		},
		{
			name: "threshold outside (0,1)",
			modify: func(c *Config) {
				c.Dashboard.DeclineThreshold = 1.5
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsurePaths(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.Cache.Dir = filepath.Join(tmpDir, "credlens", "artifacts")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths failed: %v", err)
	}

	info, err := os.Stat(cfg.Cache.Dir)
	if err != nil {
		t.Fatalf("cache dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("path %s is not a directory", cfg.Cache.Dir)
	}
}
