// Package fsutil provides the small set of filesystem helpers used by the
// fetch engine: existence checks, partial-file naming and atomic commit.
package fsutil

import (
	"os"
	"path/filepath"
)

// EnsureDir creates a directory and all necessary parents with DirModeDefault.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirModeDefault)
}

// EnsureFileDir creates the parent directory of filePath if it doesn't exist.
func EnsureFileDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

// ResolveDir returns dir when it exists as a directory, otherwise fallback.
// The boolean is true when the fallback was chosen.
func ResolveDir(dir, fallback string) (string, bool) {
	if dir != "" && IsDir(dir) {
		return dir, false
	}
	if fallback == "" {
		if wd, err := os.Getwd(); err == nil {
			fallback = wd
		}
	}
	return fallback, true
}
