package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// LoadFixture loads a fixture file from the testdata directory.
// The path is relative to the testdata directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	fullPath := filepath.Join("testdata", path)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", path, err)
	}

	return data
}

// TempFile creates a temporary file with the given content and mode.
// Returns the file path. File is automatically cleaned up when the test ends.
func TempFile(t *testing.T, name string, content []byte, perm os.FileMode) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, perm); err != nil {
		t.Fatalf("failed to create temp file %s: %v", name, err)
	}

	return path
}

// CopyFixture copies a fixture file to a temporary location.
// Returns the path to the copy.
func CopyFixture(t *testing.T, fixturePath string) string {
	t.Helper()

	data := LoadFixture(t, fixturePath)
	return TempFile(t, filepath.Base(fixturePath), data, 0o600)
}
