// Package config defines the nsforge configuration file format, its
// defaults, and validation.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nsforge/nsforge/pkg/nsapi"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the standard library duration value.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// BreakerSettings tunes the circuit breaker guarding one dependency.
type BreakerSettings struct {
	FailureThreshold int      `yaml:"failureThreshold"`
	ResetTimeout     Duration `yaml:"resetTimeout"`
	CallTimeout      Duration `yaml:"callTimeout"`
}

// EndpointConfig describes an outbound HTTP dependency.
type EndpointConfig struct {
	URL     string          `yaml:"url"`
	Token   string          `yaml:"token"`
	Breaker BreakerSettings `yaml:"breaker"`
}

// S3Config configures the S3-compatible request archive.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
}

// StoreConfig selects and configures the request record store.
type StoreConfig struct {
	// Backend is "memory" (default) or "s3".
	Backend string   `yaml:"backend"`
	S3      S3Config `yaml:"s3"`
}

// ProvisioningConfig holds the request-validation policy knobs.
type ProvisioningConfig struct {
	// TeamQuotaCeiling caps the number of active (pending, provisioning,
	// or completed) namespaces a single team may hold.
	TeamQuotaCeiling int `yaml:"teamQuotaCeiling"`

	// AllowedFeatures is the allow-list for the request features set.
	AllowedFeatures []string `yaml:"allowedFeatures"`

	// PollInterval is the delay between workflow status polls.
	PollInterval Duration `yaml:"pollInterval"`

	// WaitTimeout bounds how long a single monitoring pass waits for a
	// workflow to reach a terminal phase before checking in again.
	WaitTimeout Duration `yaml:"waitTimeout"`
}

// Config is the root nsforge.yaml document.
type Config struct {
	Listen         string             `yaml:"listen"`
	WorkflowEngine EndpointConfig     `yaml:"workflowEngine"`
	Directory      EndpointConfig     `yaml:"directory"`
	Store          StoreConfig        `yaml:"store"`
	Provisioning   ProvisioningConfig `yaml:"provisioning"`

	// Tiers overrides entries of the built-in resource tier table.
	Tiers map[string]TierResources `yaml:"tiers"`
}

// ApplyDefaults fills unset fields with production defaults. The workflow
// breaker runs with a higher call timeout than the directory breaker because
// workflow operations are inherently slower.
func (c *Config) ApplyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.WorkflowEngine.Breaker.FailureThreshold == 0 {
		c.WorkflowEngine.Breaker.FailureThreshold = 3
	}
	if c.WorkflowEngine.Breaker.ResetTimeout == 0 {
		c.WorkflowEngine.Breaker.ResetTimeout = Duration(60 * time.Second)
	}
	if c.WorkflowEngine.Breaker.CallTimeout == 0 {
		c.WorkflowEngine.Breaker.CallTimeout = Duration(30 * time.Second)
	}
	if c.Directory.Breaker.FailureThreshold == 0 {
		c.Directory.Breaker.FailureThreshold = 5
	}
	if c.Directory.Breaker.ResetTimeout == 0 {
		c.Directory.Breaker.ResetTimeout = Duration(30 * time.Second)
	}
	if c.Directory.Breaker.CallTimeout == 0 {
		c.Directory.Breaker.CallTimeout = Duration(5 * time.Second)
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
	if c.Provisioning.TeamQuotaCeiling == 0 {
		c.Provisioning.TeamQuotaCeiling = 10
	}
	if c.Provisioning.AllowedFeatures == nil {
		c.Provisioning.AllowedFeatures = []string{"monitoring", "logging", "service-mesh", "secrets-sync"}
	}
	if c.Provisioning.PollInterval == 0 {
		c.Provisioning.PollInterval = Duration(5 * time.Second)
	}
	if c.Provisioning.WaitTimeout == 0 {
		c.Provisioning.WaitTimeout = Duration(15 * time.Minute)
	}
}

// Validate checks the configuration for errors that would otherwise only
// surface at request time.
func (c *Config) Validate() error {
	if c.WorkflowEngine.URL == "" {
		return fmt.Errorf("workflowEngine.url is required")
	}
	switch c.Store.Backend {
	case "memory":
	case "s3":
		if c.Store.S3.Bucket == "" {
			return fmt.Errorf("store.s3.bucket is required for the s3 backend")
		}
		if c.Store.S3.Endpoint == "" {
			return fmt.Errorf("store.s3.endpoint is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q (expected memory or s3)", c.Store.Backend)
	}
	if c.Provisioning.TeamQuotaCeiling < 0 {
		return fmt.Errorf("provisioning.teamQuotaCeiling must not be negative")
	}
	for name := range c.Tiers {
		if _, ok := defaultTiers[nsapi.ResourceTier(name)]; !ok {
			return fmt.Errorf("tiers: unknown tier %q (expected micro, small, medium, or large)", name)
		}
	}
	return nil
}
