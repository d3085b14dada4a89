package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/nsforge/nsforge/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	runWizard   = config.RunWizard
	writeConfig = config.Save
)

// Init runs the configuration wizard and writes the result to a file.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return err
	}

	cfg := result.ToConfig()
	if err := writeConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

func printWelcome() {
	fmt.Println()
	fmt.Println("nsforge - self-service namespace provisioning")
	fmt.Println("=============================================")
	fmt.Println()
	fmt.Println("This wizard creates an orchestrator configuration with sensible defaults.")
	fmt.Println()
}

func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Summary")
	fmt.Println("-------")
	fmt.Printf("  Listen:          %s\n", cfg.Listen)
	fmt.Printf("  Workflow engine: %s\n", cfg.WorkflowEngine.URL)
	if cfg.Directory.URL != "" {
		fmt.Printf("  Directory:       %s\n", cfg.Directory.URL)
	}
	fmt.Printf("  Store:           %s\n", cfg.Store.Backend)
	fmt.Printf("  Team quota:      %d namespaces\n", cfg.Provisioning.TeamQuotaCeiling)
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Set the workflow engine token:")
	fmt.Println("     export NSFORGE_WORKFLOW_TOKEN=<your-token>")
	fmt.Println()
	fmt.Printf("  2. Review %s if needed\n", outputPath)
	fmt.Println()
	fmt.Println("  3. Start the orchestrator:")
	fmt.Println("     nsforge serve")
	fmt.Println()
}
