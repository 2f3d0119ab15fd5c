package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFileYAML is the canonical config filename.
	DefaultConfigFileYAML = ".queryspectre.yaml"
	// DefaultConfigFileYML is a compatible alternate config filename.
	DefaultConfigFileYML = ".queryspectre.yml"
)

// FileConfig represents values loaded from a .queryspectre.yaml file.
type FileConfig struct {
	Timeout       string `yaml:"timeout"`
	PageSize      *int   `yaml:"page_size"`
	RateLimit     *int   `yaml:"rate_limit"`
	MaxRetries    *int   `yaml:"max_retries"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
	ClickHouseURL string `yaml:"clickhouse_url"`
}

// ClickHouseEndpoint returns the first configured ClickHouse endpoint.
func (fc *FileConfig) ClickHouseEndpoint() string {
	if fc == nil {
		return ""
	}
	if dsn := strings.TrimSpace(fc.ClickHouseDSN); dsn != "" {
		return dsn
	}
	return strings.TrimSpace(fc.ClickHouseURL)
}

// Normalize trims string fields.
func (fc *FileConfig) Normalize() {
	if fc == nil {
		return
	}
	fc.Timeout = strings.TrimSpace(fc.Timeout)
	fc.ClickHouseDSN = strings.TrimSpace(fc.ClickHouseDSN)
	fc.ClickHouseURL = strings.TrimSpace(fc.ClickHouseURL)
}

// Apply copies file values into cfg. Fields listed in explicit were set on
// the command line and are left untouched.
func (fc *FileConfig) Apply(cfg *Config, explicit map[string]bool) error {
	if fc == nil || cfg == nil {
		return nil
	}

	if fc.Timeout != "" && !explicit["timeout"] {
		d, err := ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in config file: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if fc.PageSize != nil && !explicit["page-size"] {
		cfg.PageSize = *fc.PageSize
	}
	if fc.RateLimit != nil && !explicit["rate-limit"] {
		cfg.RateLimit = *fc.RateLimit
	}
	if fc.MaxRetries != nil && !explicit["max-retries"] {
		cfg.MaxRetries = *fc.MaxRetries
	}
	if endpoint := fc.ClickHouseEndpoint(); endpoint != "" && !explicit["clickhouse-dsn"] {
		cfg.ClickHouseDSN = endpoint
	}

	return nil
}

// AutoLoadFile discovers and loads the first available config file.
func AutoLoadFile() (*FileConfig, string, error) {
	candidates := []string{
		DefaultConfigFileYAML,
		DefaultConfigFileYML,
	}

	if homeDir, err := os.UserHomeDir(); err == nil && strings.TrimSpace(homeDir) != "" {
		candidates = append(candidates,
			filepath.Join(homeDir, DefaultConfigFileYAML),
			filepath.Join(homeDir, DefaultConfigFileYML),
		)
	}

	return LoadFirstExistingFile(candidates)
}

// LoadFirstExistingFile loads the first config file that exists in paths.
func LoadFirstExistingFile(paths []string) (*FileConfig, string, error) {
	for _, path := range paths {
		candidate := strings.TrimSpace(path)
		if candidate == "" {
			continue
		}

		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("failed to access config file %q: %w", candidate, err)
		}
		if info.IsDir() {
			return nil, "", fmt.Errorf("config path %q is a directory, expected a file", candidate)
		}

		cfg, err := LoadFile(candidate)
		if err != nil {
			return nil, "", err
		}
		return cfg, candidate, nil
	}

	return nil, "", nil
}

// LoadFile loads config values from a specific YAML file path.
func LoadFile(path string) (*FileConfig, error) {
	filename := strings.TrimSpace(path)
	if filename == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", filename, err)
	}

	cfg := &FileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", filename, err)
	}

	cfg.Normalize()
	return cfg, nil
}
