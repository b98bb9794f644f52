package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultManifestFile is the optional on-disk registry override. When it is
// absent the built-in registry is used, so plain `depfetch` keeps working
// with zero configuration.
const DefaultManifestFile = "depfetch.toml"

// Policy decides what happens to the rest of a group after a download fails.
type Policy string

const (
	// SkipAndContinue reports the failure and moves on to the next entry.
	SkipAndContinue Policy = "skip-and-continue"
	// AbortOnError reports the failure and drops the remainder of the group.
	AbortOnError Policy = "abort-on-error"
)

// IsValid checks whether the policy is one of the known values.
func (p Policy) IsValid() bool {
	switch p {
	case SkipAndContinue, AbortOnError:
		return true
	}
	return false
}

// Dependency names a single source archive to fetch.
type Dependency struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// Group is an ordered list of dependencies bound to one destination root.
// Entries are independent of each other; order is declaration order.
type Group struct {
	Name   string       `toml:"name"`
	Root   string       `toml:"root"`
	Policy Policy       `toml:"policy"`
	Deps   []Dependency `toml:"dep"`
}

// Registry is the full set of dependency groups processed by one run.
// It is built once at startup and never mutated afterwards.
type Registry struct {
	Groups []Group `toml:"group"`
}

// Default returns the built-in registry: the archives needed to build the
// example viewers and the test suite.
func Default() Registry {
	return Registry{
		Groups: []Group{
			{
				Name:   "examples",
				Root:   filepath.Join("examples", "deps"),
				Policy: SkipAndContinue,
				Deps: []Dependency{
					{Name: "glfw", URL: "https://github.com/glfw/glfw/releases/download/3.3.8/glfw-3.3.8.zip"},
					{Name: "glm", URL: "https://github.com/g-truc/glm/releases/download/0.9.9.8/glm-0.9.9.8.zip"},
				},
			},
			{
				Name:   "tests",
				Root:   filepath.Join("tests", "deps"),
				Policy: AbortOnError,
				Deps: []Dependency{
					{Name: "catch2", URL: "https://github.com/catchorg/Catch2/archive/refs/tags/v3.4.0.zip"},
				},
			},
		},
	}
}

// Load reads a depfetch.toml registry from the given path.
// If the file does not exist it returns the built-in registry (no error).
func Load(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Registry{}, fmt.Errorf("reading registry manifest: %w", err)
	}

	var reg Registry
	if err := toml.Unmarshal(data, &reg); err != nil {
		return Registry{}, fmt.Errorf("parsing registry manifest: %w", err)
	}

	if err := reg.validate(); err != nil {
		return Registry{}, fmt.Errorf("invalid registry manifest %s: %w", path, err)
	}

	return reg, nil
}

// validate rejects manifests that would make a run ambiguous: unnamed
// groups, missing roots or URLs, unknown policies, duplicate names.
func (r Registry) validate() error {
	seenGroups := make(map[string]bool)
	for i, g := range r.Groups {
		if g.Name == "" {
			return fmt.Errorf("group %d has no name", i)
		}
		if seenGroups[g.Name] {
			return fmt.Errorf("duplicate group %q", g.Name)
		}
		seenGroups[g.Name] = true

		if g.Root == "" {
			return fmt.Errorf("group %q has no root directory", g.Name)
		}
		if g.Policy != "" && !g.Policy.IsValid() {
			return fmt.Errorf("group %q has unknown policy %q", g.Name, g.Policy)
		}

		seenDeps := make(map[string]bool)
		for _, d := range g.Deps {
			if d.Name == "" {
				return fmt.Errorf("group %q contains a dependency with no name", g.Name)
			}
			if seenDeps[d.Name] {
				return fmt.Errorf("group %q declares %q twice", g.Name, d.Name)
			}
			seenDeps[d.Name] = true
			if d.URL == "" {
				return fmt.Errorf("dependency %q in group %q has no url", d.Name, g.Name)
			}
		}
	}
	return nil
}

// EffectivePolicy returns the group's policy, defaulting to SkipAndContinue
// when the manifest left it unset.
func (g Group) EffectivePolicy() Policy {
	if g.Policy == "" {
		return SkipAndContinue
	}
	return g.Policy
}

// TargetDir returns the directory a dependency unpacks into.
func (g Group) TargetDir(name string) string {
	return filepath.Join(g.Root, name)
}

// ArchivePath returns the temporary archive path used while fetching.
func (g Group) ArchivePath(name string) string {
	return filepath.Join(g.Root, name+".zip")
}
