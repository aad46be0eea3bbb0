package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	pkgerrors "github.com/glorpus-work/drmget/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildArchive packs files into a tar.gz and returns its bytes.
func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	tempDir := t.TempDir()

	sourceDir := filepath.Join(tempDir, "source")
	for p, content := range files {
		full := filepath.Join(sourceDir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	archivePath := filepath.Join(tempDir, "DRMVersion.tar.gz")
	require.NoError(t, NewManager().Create(context.Background(), sourceDir, archivePath))

	data, err := os.ReadFile(archivePath)
	require.NoError(t, err)
	return data
}

func TestManager_ReadMember(t *testing.T) {
	data := buildArchive(t, map[string]string{
		"DRMVersion.json":  `{"AppUpdateInfo": {"Version": "3.4.1"}}`,
		"nested/other.txt": "ignored",
	})

	tests := []struct {
		name    string
		member  string
		want    string
		wantErr bool
	}{
		{name: "top-level member", member: "DRMVersion.json", want: `{"AppUpdateInfo": {"Version": "3.4.1"}}`},
		{name: "nested member", member: "nested/other.txt", want: "ignored"},
		{name: "found by base name", member: "somewhere/other.txt", want: "ignored"},
		{name: "missing member", member: "absent.json", wantErr: true},
	}

	am := NewManager()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := am.ReadMember(context.Background(), "DRMVersion.tar.gz", data, tt.member)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, pkgerrors.ErrArchiveMember))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestManager_ReadMember_NotAnArchive(t *testing.T) {
	_, err := NewManager().ReadMember(context.Background(), "DRMVersion.tar.gz", []byte("<html>maintenance</html>"), "DRMVersion.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrArchiveMember))
}
