package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/idp-hook-bridge/internal/models"
)

func TestCommandsRegistered(t *testing.T) {
	expected := map[string]bool{
		"duo-admin-api": false,
		"okta-hook":     false,
		"sweep-events":  false,
		"seed":          false,
	}
	for _, c := range rootCmd.Commands() {
		name := strings.Fields(c.Use)[0]
		if _, ok := expected[name]; ok {
			expected[name] = true
		}
	}
	for name, found := range expected {
		assert.True(t, found, "expected command %q to be registered", name)
	}
}

func TestRequiredFlags(t *testing.T) {
	for _, tc := range []struct {
		cmdName string
		flags   []string
	}{
		{"duo-admin-api", []string{"name"}},
		{"okta-hook", []string{"name", "endpoint"}},
	} {
		c, _, err := rootCmd.Find([]string{tc.cmdName})
		require.NoError(t, err)
		for _, f := range tc.flags {
			flag := c.Flags().Lookup(f)
			require.NotNil(t, flag, "%s --%s", tc.cmdName, f)
			assert.Equal(t, []string{"true"}, flag.Annotations["cobra_annotation_bash_completion_one_required_flag"])
		}
	}
}

func TestSeedDryRun(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"seed", "--source", "okta", "--count", "3", "--types", "user.lifecycle.suspend", "--dry-run", "--seed", "7"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	var payload models.OktaHookPayload
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	require.Len(t, payload.Data.Events, 3)
	assert.Equal(t, "user.lifecycle.suspend", payload.Data.Events[0].EventType)
}

func TestSweepRequiresPostgres(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"sweep-events"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}
