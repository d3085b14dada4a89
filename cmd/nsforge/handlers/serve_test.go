package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsforge/nsforge/internal/config"
	"github.com/nsforge/nsforge/internal/store"
)

func TestBuildStoreDefaultsToMemory(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	st, err := buildStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &store.Memory{}, st)
}

func TestBreakerConfigConversion(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	bc := breakerConfig("workflow-engine", cfg.WorkflowEngine.Breaker)
	assert.Equal(t, "workflow-engine", bc.Name)
	assert.Equal(t, cfg.WorkflowEngine.Breaker.FailureThreshold, bc.FailureThreshold)
	assert.Equal(t, cfg.WorkflowEngine.Breaker.ResetTimeout.Std(), bc.ResetTimeout)
	assert.Equal(t, cfg.WorkflowEngine.Breaker.CallTimeout.Std(), bc.CallTimeout)
}

func TestServeStopsWhenContextCancelled(t *testing.T) {
	origLoad := loadConfig
	t.Cleanup(func() { loadConfig = origLoad })

	loadConfig = func(string) (*config.Config, error) {
		cfg := &config.Config{
			Listen: "127.0.0.1:0",
			WorkflowEngine: config.EndpointConfig{
				URL: "http://localhost:2746",
			},
		}
		cfg.ApplyDefaults()
		return cfg, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Serve(ctx, "nsforge.yaml")
	require.NoError(t, err)
}
