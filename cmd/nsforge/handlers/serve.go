package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/nsforge/nsforge/internal/breaker"
	"github.com/nsforge/nsforge/internal/config"
	"github.com/nsforge/nsforge/internal/platform/directory"
	"github.com/nsforge/nsforge/internal/platform/workflow"
	"github.com/nsforge/nsforge/internal/provisioning"
	"github.com/nsforge/nsforge/internal/server"
	"github.com/nsforge/nsforge/internal/store"
)

// Factory function variables for serve - can be replaced in tests.
var (
	loadConfig = config.LoadFile
	newStore   = buildStore
)

// Serve runs the orchestrator until interrupted.
func Serve(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log, flush, err := newLogger()
	if err != nil {
		return err
	}
	defer flush()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	breakers := breaker.NewRegistry(log, reg)

	engine := workflow.NewClient(
		cfg.WorkflowEngine.URL,
		cfg.WorkflowEngine.Token,
		breakers.GetOrCreate(breakerConfig("workflow-engine", cfg.WorkflowEngine.Breaker)),
		log,
	)

	var dir provisioning.PrincipalValidator
	if cfg.Directory.URL != "" {
		dir = directory.NewClient(
			cfg.Directory.URL,
			cfg.Directory.Token,
			breakers.GetOrCreate(breakerConfig("directory", cfg.Directory.Breaker)),
			log,
		)
	} else {
		log.Info("no directory configured, principal validation disabled")
	}

	st, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	svc := provisioning.NewService(cfg, st, engine, dir, log, reg)
	defer svc.Close()

	log.Info("starting nsforge orchestrator",
		"listen", cfg.Listen,
		"workflowEngine", cfg.WorkflowEngine.URL,
		"store", cfg.Store.Backend,
	)
	return server.New(svc, breakers, reg, log).Run(ctx, cfg.Listen)
}

func breakerConfig(name string, settings config.BreakerSettings) breaker.Config {
	return breaker.Config{
		Name:             name,
		FailureThreshold: settings.FailureThreshold,
		ResetTimeout:     settings.ResetTimeout.Std(),
		CallTimeout:      settings.CallTimeout.Std(),
	}
}

func buildStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "s3":
		return store.NewS3(ctx, cfg.Store.S3)
	default:
		return store.NewMemory(), nil
	}
}

func newLogger() (logr.Logger, func(), error) {
	zcfg := zap.NewProductionConfig()
	if os.Getenv("NSFORGE_DEBUG") == "true" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zl, err := zcfg.Build()
	if err != nil {
		return logr.Logger{}, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}
