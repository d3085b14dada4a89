package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
)

// WizardResult holds the user's choices from the init wizard.
type WizardResult struct {
	Listen            string
	WorkflowEngineURL string
	DirectoryURL      string
	StoreBackend      string
	S3Endpoint        string
	S3Bucket          string
	S3Region          string
	TeamQuotaCeiling  int
}

// RunWizard runs the interactive configuration wizard.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		Listen:           ":8080",
		StoreBackend:     "memory",
		S3Region:         "us-east-1",
		TeamQuotaCeiling: 10,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Workflow engine URL").
				Description("Base URL of the workflow engine that executes provisioning DAGs").
				Placeholder("https://workflows.internal.example.com").
				Value(&result.WorkflowEngineURL).
				Validate(validateURL),

			huh.NewInput().
				Title("Directory URL (optional)").
				Description("Identity directory for principal validation. Leave empty to skip.").
				Placeholder("https://directory.internal.example.com").
				Value(&result.DirectoryURL).
				Validate(validateOptionalURL),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Description("Address the orchestrator API binds to").
				Value(&result.Listen),

			huh.NewSelect[int]().
				Title("Team quota ceiling").
				Description("Maximum active namespaces per team").
				Options(
					huh.NewOption("5 namespaces", 5),
					huh.NewOption("10 namespaces", 10),
					huh.NewOption("25 namespaces", 25),
					huh.NewOption("50 namespaces", 50),
				).
				Value(&result.TeamQuotaCeiling),
		),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Request store").
				Description("memory: single instance, lost on restart | s3: durable object store").
				Options(
					huh.NewOption("In-memory", "memory"),
					huh.NewOption("S3-compatible bucket", "s3"),
				).
				Value(&result.StoreBackend),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("S3 endpoint").
				Placeholder("https://s3.internal.example.com").
				Value(&result.S3Endpoint).
				Validate(validateURL),

			huh.NewInput().
				Title("S3 bucket").
				Placeholder("nsforge-requests").
				Value(&result.S3Bucket).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("bucket name is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("S3 region").
				Value(&result.S3Region),
		).WithHideFunc(func() bool { return result.StoreBackend != "s3" }),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}
	return result, nil
}

// ToConfig converts the wizard result to a Config with defaults applied.
func (r *WizardResult) ToConfig() *Config {
	cfg := &Config{
		Listen: r.Listen,
		WorkflowEngine: EndpointConfig{
			URL: r.WorkflowEngineURL,
		},
		Directory: EndpointConfig{
			URL: r.DirectoryURL,
		},
		Store: StoreConfig{
			Backend: r.StoreBackend,
		},
		Provisioning: ProvisioningConfig{
			TeamQuotaCeiling: r.TeamQuotaCeiling,
		},
	}
	if r.StoreBackend == "s3" {
		cfg.Store.S3 = S3Config{
			Endpoint: r.S3Endpoint,
			Bucket:   r.S3Bucket,
			Region:   r.S3Region,
		}
	}
	cfg.ApplyDefaults()
	return cfg
}

func validateURL(s string) error {
	if s == "" {
		return fmt.Errorf("URL is required")
	}
	return validateOptionalURL(s)
}

func validateOptionalURL(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || !strings.HasPrefix(u.Scheme, "http") {
		return fmt.Errorf("expected an http(s) URL")
	}
	return nil
}
