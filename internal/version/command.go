package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand wires the `version` subcommand and the --version flag into root.
func AttachCobraVersionCommand(root *cobra.Command) {
	root.Version = Short()
	root.SetVersionTemplate(Full() + "\n")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the " + Name + " build and the User-Agent sent to the Screeps API.",
		Long: `Print the build injected through ldflags and the User-Agent header
attached to every code upload.

To upload a directory that is literally named "version", pass it as ./version.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()

			_, _ = fmt.Fprintln(out, Full())
			_, _ = fmt.Fprintln(out, "user agent:", UserAgent())
		},
	})
}
