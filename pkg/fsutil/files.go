package fsutil

import (
	"fmt"
	"os"
)

// Exists reports whether something is present at path. Errors other than
// "not exist" are treated as present so callers never overwrite blindly.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

// PartialPath returns the sibling name a file is written to while in flight.
func PartialPath(finalPath string) string {
	return finalPath + PartialSuffix
}

// CreatePartial truncates or creates the in-flight sibling of finalPath.
func CreatePartial(finalPath string) (*os.File, error) {
	return os.OpenFile(PartialPath(finalPath), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FileModeDefault)
}

// Commit atomically renames the in-flight sibling of finalPath into place.
// Both names share a directory so a plain rename is sufficient.
func Commit(finalPath string) error {
	src := PartialPath(finalPath)
	if err := os.Rename(src, finalPath); err != nil {
		return fmt.Errorf("could not rename %s to %s: %w", src, finalPath, err)
	}
	return nil
}
