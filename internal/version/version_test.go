package version

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures Short, Full and UserAgent agree on the version.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.True(t, strings.HasPrefix(Full(), Name+" "))
	require.Equal(t, Name+"/"+Short(), UserAgent())
}

// TestAttachCobraVersionCommand prints the build through the subcommand and the flag.
func TestAttachCobraVersionCommand(t *testing.T) {
	t.Parallel()

	newRoot := func(args ...string) (*cobra.Command, *bytes.Buffer) {
		root := &cobra.Command{Use: Name, Run: func(*cobra.Command, []string) {}}
		AttachCobraVersionCommand(root)

		var out bytes.Buffer

		root.SetOut(&out)
		root.SetArgs(args)

		return root, &out
	}

	root, out := newRoot("version")
	require.NoError(t, root.Execute())
	require.Equal(t, Full()+"\nuser agent: "+UserAgent()+"\n", out.String())

	root, out = newRoot("--version")
	require.NoError(t, root.Execute())
	require.Equal(t, Full()+"\n", out.String())

	root, _ = newRoot("version", "extra")
	require.Error(t, root.Execute())
}
