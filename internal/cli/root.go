package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// NewRootCmd creates the top-level `depfetch` command. Running it with no
// arguments fetches every dependency in the registry.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "depfetch",
		Short: "depfetch — fetch and unpack third-party source dependencies",
		Long: `depfetch downloads the source archives needed to build the example
programs and the test suite, and unpacks each one into a predictable
directory (examples/deps/<name>, tests/deps/<name>). Dependencies that
are already unpacked are skipped, so re-running is cheap.

An optional depfetch.toml in the working directory overrides the
built-in dependency registry.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd)
		},
	}

	root.AddCommand(newCheckCmd())
	root.AddCommand(newCleanCmd())

	return root
}

// Execute runs the root command.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
