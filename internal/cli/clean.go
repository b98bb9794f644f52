package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/tbearden/depfetch/internal/registry"
)

// newCleanCmd creates the `clean` command.
// Usage: depfetch clean
func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove unpacked dependencies and leftover archives",
		Long: `Removes every registry entry's unpacked directory, along with any
stray .zip left behind by an interrupted run. The next fetch starts
from scratch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Load(registry.DefaultManifestFile)
			if err != nil {
				return err
			}
			return runCleanWith(reg, os.Stdout)
		},
	}
}

// runCleanWith is the testable core of the clean command.
func runCleanWith(reg registry.Registry, out io.Writer) error {
	removed := 0

	for _, group := range reg.Groups {
		for _, dep := range group.Deps {
			target := group.TargetDir(dep.Name)
			if _, err := os.Stat(target); err == nil {
				if err := os.RemoveAll(target); err != nil {
					return fmt.Errorf("removing %s: %w", target, err)
				}
				fmt.Fprintf(out, "🗑️  Removed %s\n", target)
				removed++
			}

			archive := group.ArchivePath(dep.Name)
			if err := os.Remove(archive); err == nil {
				fmt.Fprintf(out, "🗑️  Removed stray archive %s\n", archive)
				removed++
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("removing %s: %w", archive, err)
			}
		}
	}

	if removed == 0 {
		fmt.Fprintln(out, "✅ Nothing to clean.")
	}
	return nil
}
