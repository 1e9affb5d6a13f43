package cliconfig_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/splitarg/cmd/splitarg/internal/cliconfig"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	c := cliconfig.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)

	c.RegisterFlags(flags)

	require.NoError(t, flags.Parse(nil))
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
}

func TestRegisterFlagsParsesOverrides(t *testing.T) {
	t.Parallel()

	c := cliconfig.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)

	c.RegisterFlags(flags)

	require.NoError(t, flags.Parse([]string{"--log-level=debug", "--log-format=json"}))
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "json", c.LogFormat)
}

func TestRegisterCompletions(t *testing.T) {
	t.Parallel()

	c := cliconfig.NewConfig()
	cmd := &cobra.Command{Use: "test"}

	c.RegisterFlags(cmd.Flags())
	require.NoError(t, c.RegisterCompletions(cmd))

	fn, ok := cmd.GetFlagCompletionFunc(c.Flags.LogLevel)
	require.True(t, ok)

	values, directive := fn(cmd, nil, "")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	assert.Contains(t, values, "debug")
}
