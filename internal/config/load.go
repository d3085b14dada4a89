package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no explicit
// config path is given.
const DefaultFileName = "nsforge.yaml"

// LoadFile reads, defaults, and validates the configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document, applies defaults, and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to a YAML file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// applyEnvOverrides lets deployment environments inject credentials without
// writing them into the config file.
//
// Environment variables:
//   - NSFORGE_WORKFLOW_TOKEN: bearer token for the workflow engine
//   - NSFORGE_DIRECTORY_TOKEN: bearer token for the identity directory
//   - NSFORGE_S3_ACCESS_KEY / NSFORGE_S3_SECRET_KEY: S3 store credentials
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NSFORGE_WORKFLOW_TOKEN"); v != "" {
		c.WorkflowEngine.Token = v
	}
	if v := os.Getenv("NSFORGE_DIRECTORY_TOKEN"); v != "" {
		c.Directory.Token = v
	}
	if v := os.Getenv("NSFORGE_S3_ACCESS_KEY"); v != "" {
		c.Store.S3.AccessKey = v
	}
	if v := os.Getenv("NSFORGE_S3_SECRET_KEY"); v != "" {
		c.Store.S3.SecretKey = v
	}
}
