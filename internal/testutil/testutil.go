// Package testutil provides small helpers shared by tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempDirectory returns a temporary directory that is removed when the
// test completes.
func TempDirectory(t *testing.T) string {
	t.Helper()

	return t.TempDir()
}

// MustWriteFile writes data to the given path, creating parent
// directories as needed.
func MustWriteFile(t *testing.T, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// MustMkdirAll creates a directory hierarchy.
func MustMkdirAll(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
}

// MustSymlink creates a symbolic link at path pointing at target.
func MustSymlink(t *testing.T, target, path string) {
	t.Helper()

	if err := os.Symlink(target, path); err != nil {
		t.Fatal(err)
	}
}
