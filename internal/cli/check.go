package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tbearden/depfetch/internal/registry"
)

// newCheckCmd creates the `check` command.
// Usage: depfetch check
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report which dependencies are already unpacked",
		Long: `Checks each registry entry for its unpacked directory and reports
present/missing state. No network requests are made.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Load(registry.DefaultManifestFile)
			if err != nil {
				return err
			}
			return runCheckWith(reg, os.Stdout)
		},
	}
}

// runCheckWith is the testable core of the check command.
func runCheckWith(reg registry.Registry, out io.Writer) error {
	total, missing := 0, 0

	for _, group := range reg.Groups {
		for _, dep := range group.Deps {
			total++
			target := group.TargetDir(dep.Name)
			if info, err := os.Stat(target); err == nil && info.IsDir() {
				fmt.Fprintf(out, "✅ %s/%s → %s\n", group.Name, dep.Name, target)
			} else {
				fmt.Fprintf(out, "❌ %s/%s missing (%s)\n", group.Name, dep.Name, target)
				missing++
			}
		}
	}

	fmt.Fprintln(out)
	if missing > 0 {
		fmt.Fprintf(out, "⚠️  %d of %d dependencies missing — run `depfetch` to download them.\n", missing, total)
	} else {
		fmt.Fprintf(out, "✅ All %d dependencies are present.\n", total)
	}
	return nil
}
