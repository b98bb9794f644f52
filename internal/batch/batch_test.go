package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tbearden/depfetch/internal/fetcher"
	"github.com/tbearden/depfetch/internal/registry"
)

// --- helpers ---

// fakeSource records fetch calls and answers from canned outcomes/errors.
type fakeSource struct {
	calls    []string
	errs     map[string]error
	outcomes map[string]fetcher.Outcome
}

func (f *fakeSource) Fetch(_ context.Context, name, _, _ string) (fetcher.Outcome, error) {
	f.calls = append(f.calls, name)
	if err, ok := f.errs[name]; ok {
		return fetcher.OutcomeFetched, err
	}
	return f.outcomes[name], nil
}

func deps(names ...string) []registry.Dependency {
	var out []registry.Dependency
	for _, n := range names {
		out = append(out, registry.Dependency{Name: n, URL: "https://example.com/" + n + ".zip"})
	}
	return out
}

func runOne(t *testing.T, src *fakeSource, policy registry.Policy, names ...string) ([]Result, string, string, error) {
	t.Helper()
	reg := registry.Registry{Groups: []registry.Group{{
		Name:   "g",
		Root:   filepath.Join(t.TempDir(), "deps"),
		Policy: policy,
		Deps:   deps(names...),
	}}}
	var out, errOut bytes.Buffer
	results, err := New(src, &out, &errOut).Run(context.Background(), reg)
	return results, out.String(), errOut.String(), err
}

// --- destination roots ---

func TestRun_CreatesDestinationRoots(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	reg := registry.Registry{Groups: []registry.Group{
		{Name: "a", Root: filepath.Join(base, "examples", "deps"), Deps: deps("one")},
		{Name: "b", Root: filepath.Join(base, "tests", "deps"), Deps: deps("two")},
	}}

	src := &fakeSource{}
	var out, errOut bytes.Buffer
	if _, err := New(src, &out, &errOut).Run(context.Background(), reg); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	for _, g := range reg.Groups {
		info, err := os.Stat(g.Root)
		if err != nil || !info.IsDir() {
			t.Errorf("root %s was not created", g.Root)
		}
	}
}

// --- policies ---

func TestRun_SkipAndContinue(t *testing.T) {
	t.Parallel()
	src := &fakeSource{errs: map[string]error{
		"b": &fetcher.NetworkError{URL: "https://example.com/b.zip", StatusCode: 404},
	}}

	results, _, errOut, err := runOne(t, src, registry.SkipAndContinue, "a", "b", "c")
	if err != nil {
		t.Fatalf("network failures must not fail the run: %s", err)
	}
	if want := []string{"a", "b", "c"}; !equal(src.calls, want) {
		t.Errorf("calls = %v, want %v", src.calls, want)
	}
	if !strings.Contains(errOut, "https://example.com/b.zip") {
		t.Errorf("error stream %q does not name the failed URL", errOut)
	}
	if len(results) != 3 || results[1].Err == nil || results[0].Err != nil || results[2].Err != nil {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestRun_AbortOnError(t *testing.T) {
	t.Parallel()
	src := &fakeSource{errs: map[string]error{
		"b": &fetcher.NetworkError{URL: "https://example.com/b.zip", StatusCode: 500},
	}}

	results, _, errOut, err := runOne(t, src, registry.AbortOnError, "a", "b", "c")
	if err != nil {
		t.Fatalf("network failures must not fail the run: %s", err)
	}
	if want := []string{"a", "b"}; !equal(src.calls, want) {
		t.Errorf("calls = %v, want %v (the group aborts after b)", src.calls, want)
	}
	if !strings.Contains(errOut, "https://example.com/b.zip") {
		t.Errorf("error stream %q does not name the failed URL", errOut)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestRun_AbortOnlyStopsItsOwnGroup(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	src := &fakeSource{errs: map[string]error{
		"one": &fetcher.NetworkError{URL: "https://example.com/one.zip", StatusCode: 404},
	}}
	reg := registry.Registry{Groups: []registry.Group{
		{Name: "first", Root: filepath.Join(base, "first"), Policy: registry.AbortOnError, Deps: deps("one", "two")},
		{Name: "second", Root: filepath.Join(base, "second"), Deps: deps("three")},
	}}

	var out, errOut bytes.Buffer
	if _, err := New(src, &out, &errOut).Run(context.Background(), reg); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if want := []string{"one", "three"}; !equal(src.calls, want) {
		t.Errorf("calls = %v, want %v (groups are independent)", src.calls, want)
	}
}

// --- fatal errors ---

func TestRun_FatalErrorStopsRun(t *testing.T) {
	t.Parallel()
	src := &fakeSource{errs: map[string]error{"b": errors.New("disk full")}}

	results, _, _, err := runOne(t, src, registry.SkipAndContinue, "a", "b", "c")
	if err == nil {
		t.Fatal("expected a fatal error")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error %q does not wrap the cause", err)
	}
	if want := []string{"a", "b"}; !equal(src.calls, want) {
		t.Errorf("calls = %v, want %v (c must not run)", src.calls, want)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

// --- output ---

func TestRun_Output(t *testing.T) {
	t.Parallel()
	src := &fakeSource{outcomes: map[string]fetcher.Outcome{
		"fresh":   fetcher.OutcomeFetched,
		"present": fetcher.OutcomeAlreadyPresent,
		"hollow":  fetcher.OutcomeEmptyArchive,
	}}

	_, out, errOut, err := runOne(t, src, registry.SkipAndContinue, "fresh", "present", "hollow")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !strings.Contains(out, "Finished downloading fresh") {
		t.Errorf("missing completion notice in %q", out)
	}
	if !strings.Contains(out, "present is already present") {
		t.Errorf("missing already-present notice in %q", out)
	}
	if strings.Contains(out, "hollow") {
		t.Errorf("empty archives should complete silently, got %q", out)
	}
	if errOut != "" {
		t.Errorf("unexpected error output %q", errOut)
	}
}

// --- Failed ---

func TestFailed(t *testing.T) {
	t.Parallel()
	results := []Result{
		{Name: "a"},
		{Name: "b", Err: &fetcher.NetworkError{URL: "u", StatusCode: 404}},
		{Name: "c"},
	}
	if got := Failed(results); got != 1 {
		t.Errorf("Failed = %d, want 1", got)
	}
	if got := Failed(nil); got != 0 {
		t.Errorf("Failed(nil) = %d, want 0", got)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
