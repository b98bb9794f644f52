package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tbearden/depfetch/internal/fetcher"
	"github.com/tbearden/depfetch/internal/registry"
)

// Source fetches a single dependency into a destination root.
// Production code uses *fetcher.Fetcher; tests use a fake.
type Source interface {
	Fetch(ctx context.Context, name, url, root string) (fetcher.Outcome, error)
}

// Runner sequences fetch cycles across the registry's groups, strictly one
// entry at a time. Progress goes to out, download failures to errOut.
type Runner struct {
	source Source
	out    io.Writer
	errOut io.Writer
}

// New creates a Runner.
func New(source Source, out, errOut io.Writer) *Runner {
	return &Runner{source: source, out: out, errOut: errOut}
}

// Result holds the outcome of one registry entry.
type Result struct {
	Group   string
	Name    string
	URL     string
	Outcome fetcher.Outcome
	Err     error
}

// Run processes every group in registry order. Each group's destination root
// is created before its first entry runs.
//
// A *fetcher.NetworkError is reported to errOut and then handled per the
// group's policy: skip-and-continue moves to the group's next entry,
// abort-on-error drops the remainder of the group (later groups still run,
// since groups are independent). Any other error stops the whole run.
func (r *Runner) Run(ctx context.Context, reg registry.Registry) ([]Result, error) {
	var results []Result

	for _, group := range reg.Groups {
		if err := os.MkdirAll(group.Root, 0o755); err != nil {
			return results, fmt.Errorf("creating destination root %s: %w", group.Root, err)
		}

		for _, dep := range group.Deps {
			outcome, err := r.source.Fetch(ctx, dep.Name, dep.URL, group.Root)
			results = append(results, Result{
				Group:   group.Name,
				Name:    dep.Name,
				URL:     dep.URL,
				Outcome: outcome,
				Err:     err,
			})

			if err != nil {
				var netErr *fetcher.NetworkError
				if !errors.As(err, &netErr) {
					return results, fmt.Errorf("%s/%s: %w", group.Name, dep.Name, err)
				}

				fmt.Fprintf(r.errOut, "❌ Could not download %s.\n", netErr.URL)
				if group.EffectivePolicy() == registry.AbortOnError {
					break
				}
				continue
			}

			switch outcome {
			case fetcher.OutcomeAlreadyPresent:
				fmt.Fprintf(r.out, "✅ %s is already present, skipping.\n", dep.Name)
			case fetcher.OutcomeEmptyArchive:
				// Degenerate archive: completed without content, nothing to report.
			default:
				fmt.Fprintf(r.out, "✅ Finished downloading %s.\n", dep.Name)
			}
		}
	}

	return results, nil
}

// Failed counts the results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
