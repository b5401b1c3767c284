package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

// CreateFile writes content to path with mode 0644, creating parents.
// It fails the test if the file cannot be created.
func CreateFile(t *testing.T, fsys afero.Fs, path, content string) string {
	t.Helper()
	return CreateFileMode(t, fsys, path, content, 0644)
}

// CreateFileMode is CreateFile with an explicit mode
func CreateFileMode(t *testing.T, fsys afero.Fs, path, content string, perm os.FileMode) string {
	t.Helper()

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}
	if err := afero.WriteFile(fsys, path, []byte(content), perm); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
	return path
}

// CreateDir creates path and its parents
func CreateDir(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()

	if err := fsys.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path
func ReadFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}

// ListDir returns the sorted entry names of dir
func ListDir(t *testing.T, fsys afero.Fs, dir string) []string {
	t.Helper()

	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		t.Fatalf("Failed to read directory %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// AssertFileContent fails the test unless path holds expected
func AssertFileContent(t *testing.T, fsys afero.Fs, path, expected string) {
	t.Helper()

	if actual := ReadFile(t, fsys, path); actual != expected {
		t.Errorf("File %s content mismatch:\nexpected: %q\nactual:   %q", path, expected, actual)
	}
}

// AssertNoFile fails the test if path exists
func AssertNoFile(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()

	if _, err := fsys.Stat(path); err == nil {
		t.Errorf("Expected %s not to exist", path)
	} else if !os.IsNotExist(err) {
		t.Errorf("Failed to stat %s: %v", path, err)
	}
}
