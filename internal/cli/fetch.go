package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tbearden/depfetch/internal/batch"
	"github.com/tbearden/depfetch/internal/fetcher"
	"github.com/tbearden/depfetch/internal/registry"
)

func runFetch(cmd *cobra.Command) error {
	reg, err := registry.Load(registry.DefaultManifestFile)
	if err != nil {
		return err
	}
	return runFetchWith(cmd.Context(), reg, fetcher.New(), os.Stdout, os.Stderr)
}

// runFetchWith is the testable core of the fetch run. Download failures are
// reported by the runner and do not fail the process; any other error does.
func runFetchWith(ctx context.Context, reg registry.Registry, source batch.Source, out, errOut io.Writer) error {
	runner := batch.New(source, out, errOut)
	results, err := runner.Run(ctx, reg)
	if err != nil {
		return err
	}

	if failed := batch.Failed(results); failed > 0 {
		fmt.Fprintf(out, "\n⚠️  %d of %d dependencies could not be downloaded.\n", failed, len(results))
	}
	return nil
}
