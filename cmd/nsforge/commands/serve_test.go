package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsforge/nsforge/internal/config"
)

func TestServe(t *testing.T) {
	cmd := Serve()

	require.NotNil(t, cmd)
	assert.Equal(t, "serve", cmd.Use)
	assert.Equal(t, "Run the provisioning orchestrator", cmd.Short)
	assert.NotNil(t, cmd.RunE)
}

func TestServe_ConfigFlag(t *testing.T) {
	cmd := Serve()

	flag := cmd.Flags().Lookup("config")
	require.NotNil(t, flag, "config flag should exist")
	assert.Equal(t, "c", flag.Shorthand)
	assert.Equal(t, config.DefaultFileName, flag.DefValue)
}
