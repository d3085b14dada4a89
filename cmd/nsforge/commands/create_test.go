package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	cmd := Create()

	require.NotNil(t, cmd)
	assert.Equal(t, "create NAME", cmd.Use)
	assert.Equal(t, "Request a new namespace", cmd.Short)
	assert.NotNil(t, cmd.RunE)
}

func TestCreate_Flags(t *testing.T) {
	cmd := Create()

	team := cmd.Flags().Lookup("team")
	require.NotNil(t, team, "team flag should exist")
	_, required := team.Annotations["cobra_annotation_bash_completion_one_required_flag"]
	assert.True(t, required, "team flag should be required")

	env := cmd.Flags().Lookup("env")
	require.NotNil(t, env)
	assert.Equal(t, "development", env.DefValue)

	tier := cmd.Flags().Lookup("tier")
	require.NotNil(t, tier)
	assert.Equal(t, "small", tier.DefValue)

	network := cmd.Flags().Lookup("network")
	require.NotNil(t, network)
	assert.Equal(t, "isolated", network.DefValue)

	watch := cmd.Flags().Lookup("watch")
	require.NotNil(t, watch)
	assert.Equal(t, "w", watch.Shorthand)

	server := cmd.Flags().Lookup("server")
	require.NotNil(t, server)
	assert.Equal(t, "s", server.Shorthand)
}

func TestCreate_RequiresName(t *testing.T) {
	cmd := Create()
	err := cmd.Args(cmd, []string{})
	assert.Error(t, err)

	err = cmd.Args(cmd, []string{"payments-dev"})
	assert.NoError(t, err)
}
