package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRegistersSubcommands(t *testing.T) {
	root := Root()
	require.NotNil(t, root)
	assert.Equal(t, "nsforge", root.Use)

	want := []string{"init", "serve", "create", "status", "list", "cancel", "watch", "doctor", "version", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "subcommand %s should be registered", name)
	}
}
