package helptext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/splitarg/helptext"
	"go.jacobcolvin.com/splitarg/internal/stringtest"
	"go.jacobcolvin.com/splitarg/schema"
)

func mustOption(t *testing.T, kind schema.Kind, names ...string) schema.Option {
	t.Helper()

	o, err := schema.Of(kind, names...)
	require.NoError(t, err)

	return o
}

func TestRenderTwoColumnLayout(t *testing.T) {
	t.Parallel()

	verbose, err := mustOption(t, schema.KindFlag, "-v", "--verbose").WithHelp("enable verbose output")
	require.NoError(t, err)

	env, err := mustOption(t, schema.KindSingle, "--env").WithHelp("target environment")
	require.NoError(t, err)

	s, err := schema.NewMap(verbose, env)
	require.NoError(t, err)

	got := helptext.Render(s)

	want := stringtest.JoinLF(
		"-v, --verbose  enable verbose output",
		"--env          target environment",
	)

	assert.Equal(t, want, got)
}

func TestRenderFallsBackToKindAnnotation(t *testing.T) {
	t.Parallel()

	s, err := schema.NewMap(mustOption(t, schema.KindFlag, "-f"))
	require.NoError(t, err)

	got := helptext.Render(s)

	assert.Equal(t, "-f  [flag]", got)
}

func TestRenderIndentsNestedBranchSchema(t *testing.T) {
	t.Parallel()

	subOpt, herr := mustOption(t, schema.KindFlag, "-f").WithHelp("force")
	require.NoError(t, herr)

	subSchema, err := schema.NewMap(subOpt)
	require.NoError(t, err)

	branch, err := mustOption(t, schema.KindBranch, "clean").WithNested(subSchema)
	require.NoError(t, err)

	branch, err = branch.WithHelp("clean the workspace")
	require.NoError(t, err)

	s, err := schema.NewMap(branch)
	require.NoError(t, err)

	got := helptext.Render(s)

	want := stringtest.JoinLF(
		"clean  clean the workspace",
		"  -f  force",
	)

	assert.Equal(t, want, got)
}

func TestRenderNilSchema(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", helptext.Render(nil))
}
