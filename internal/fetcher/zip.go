package fetcher

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extract unpacks archivePath under root and normalizes the result to
// targetDir when the archive wraps its payload in a version-qualified
// folder (e.g. glfw-3.3.8/ for a dependency named glfw).
func extract(archivePath, root, name, targetDir string) (Outcome, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return OutcomeFetched, fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer zr.Close()

	if len(zr.File) == 0 {
		return OutcomeEmptyArchive, nil
	}

	for _, entry := range zr.File {
		if err := writeEntry(entry, root); err != nil {
			return OutcomeFetched, err
		}
	}

	first := leadingComponent(zr.File[0].Name)
	if wrapsDependencyDir(first, name) {
		produced := filepath.Join(root, first)
		if produced != targetDir {
			if err := os.Rename(produced, targetDir); err != nil {
				return OutcomeFetched, fmt.Errorf("renaming %s to %s: %w", produced, targetDir, err)
			}
		}
	}

	return OutcomeFetched, nil
}

// wrapsDependencyDir reports whether an archive's leading path component is
// a wrapper folder for the named dependency. The check is a case-insensitive
// substring match, kept for compatibility with the release archives this
// tool has always consumed. Replacing it with structural single-common-root
// detection only requires changing this predicate.
func wrapsDependencyDir(component, name string) bool {
	return strings.Contains(strings.ToLower(component), strings.ToLower(name))
}

// leadingComponent returns the first path element of a ZIP entry name.
// ZIP entries always use forward slashes.
func leadingComponent(entryName string) string {
	if i := strings.IndexByte(entryName, '/'); i >= 0 {
		return entryName[:i]
	}
	return entryName
}

// writeEntry materializes one archive entry under root, rejecting entries
// that would escape it.
func writeEntry(entry *zip.File, root string) error {
	dest, err := securePath(root, entry.Name)
	if err != nil {
		return err
	}

	if entry.FileInfo().IsDir() {
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dest, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(dest), err)
	}

	in, err := entry.Open()
	if err != nil {
		return fmt.Errorf("reading archive entry %s: %w", entry.Name, err)
	}
	defer in.Close()

	mode := entry.Mode().Perm() | 0o600
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("extracting %s: %w", entry.Name, err)
	}
	return out.Close()
}

// securePath joins an archive entry name onto root and verifies the result
// stays inside root (zip-slip guard).
func securePath(root, entryName string) (string, error) {
	dest := filepath.Join(root, filepath.FromSlash(entryName))
	cleanRoot := filepath.Clean(root)
	if dest != cleanRoot && !strings.HasPrefix(dest, cleanRoot+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes %s", entryName, root)
	}
	return dest, nil
}
