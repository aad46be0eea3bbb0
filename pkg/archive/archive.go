// Package archive reads members out of the compressed catalog bundles the
// vendor publishes, and can build such bundles for fixtures.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/glorpus-work/drmget/pkg/errors"
	"github.com/mholt/archives"
)

// Manager handles archive reading and creation operations.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// ReadMember returns the contents of member from the archive held in data.
// name is the archive's file name and is used to identify its format. When
// member is not found at the given path, the first entry with the same base
// name is used.
func (am *Manager) ReadMember(ctx context.Context, name string, data []byte, member string) ([]byte, error) {
	fsys, err := archives.FileSystem(ctx, name, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrArchiveMember, "failed to open archive %s: %v", name, err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	content, err := fs.ReadFile(fsys, member)
	if err == nil {
		return content, nil
	}

	found, ferr := am.findByBase(fsys, path.Base(member))
	if ferr != nil {
		return nil, errors.Wrapf(errors.ErrArchiveMember, "%s not found in %s: %v", member, name, err)
	}
	content, err = fs.ReadFile(fsys, found)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrArchiveMember, "failed to read %s from %s: %v", found, name, err)
	}
	return content, nil
}

func (am *Manager) findByBase(fsys fs.FS, base string) (string, error) {
	var found string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && path.Base(p) == base {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fs.ErrNotExist
	}
	return found, nil
}

// Create creates a tar.gz archive from the specified source directory.
func (am *Manager) Create(ctx context.Context, sourceDir, archivePath string) error {
	absolutePath, err := filepath.Abs(sourceDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for source directory: %w", err)
	}

	archiveFiles, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		absolutePath + string(os.PathSeparator): "",
	})
	if err != nil {
		return fmt.Errorf("failed to read files from disk: %w", err)
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", archivePath, err)
	}
	defer func() {
		_ = file.Sync()
		_ = file.Close()
	}()

	format := archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}

	if err := format.Archive(ctx, file, archiveFiles); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return nil
}
