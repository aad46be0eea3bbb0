//go:build integration

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glorpus-work/drmget/pkg/archive"
	pkgerrors "github.com/glorpus-work/drmget/pkg/errors"
	"github.com/glorpus-work/drmget/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// publishCatalog packs catalogJSON into DRMVersion.tar.gz and serves it from
// the primary origin.
func publishCatalog(t *testing.T, m *testutil.MirrorPair, catalogJSON string) {
	t.Helper()
	src := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "DRMVersion.json"), []byte(catalogJSON), 0o644))

	out := filepath.Join(t.TempDir(), "DRMVersion.tar.gz")
	require.NoError(t, archive.NewManager().Create(context.Background(), src, out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	m.Primary.SetFile("/catalog/DRMVersion.tar.gz", data)
}

func installerCatalog(m *testutil.MirrorPair) string {
	return fmt.Sprintf(`{"AppUpdateInfo": {"Version": "3.4.1", "LinuxInstaller": "%s/drm/a.bin", "WindowsInstaller": "%s/drm/a.exe"}}`,
		m.Primary.URL, m.Primary.URL)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "drmget version")
}

func TestComponentsCommand(t *testing.T) {
	out, err := execute(t, "components")
	require.NoError(t, err)
	for _, tag := range []string{"drminstaller-linux", "drminstaller-windows", "plugins", "suu-linux", "suu-windows", "displayOnly"} {
		assert.Contains(t, out, tag)
	}
}

func TestShow_InstallerFromCatalog(t *testing.T) {
	m := testutil.NewMirrorPair(t)
	publishCatalog(t, m, installerCatalog(m))
	cfgPath := testutil.SetupTestConfig(t, m, "")

	out, err := execute(t, "--config", cfgPath, "show", "drminstaller-linux")
	require.NoError(t, err)
	assert.Equal(t, "⮩ DRM Installer\n    ⮩ Linux 64 bit = "+m.Primary.URL+"/drm/a.bin\n", out)
	assert.NotContains(t, m.Primary.Requests(), "GET /drm/a.bin", "show never downloads")
}

func TestFetch_FallsBackToMirror(t *testing.T) {
	m := testutil.NewMirrorPair(t)
	publishCatalog(t, m, installerCatalog(m))
	m.Secondary.SetFile("/drm/a.bin", []byte("linux installer"))
	cfgPath := testutil.SetupTestConfig(t, m, "")
	dir := t.TempDir()

	_, err := execute(t, "--config", cfgPath, "fetch", "--dir", dir, "drminstaller-linux")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "a.bin"))
	require.NoError(t, err)
	assert.Equal(t, "linux installer", string(data))
	assert.NoFileExists(t, filepath.Join(dir, "a.bin.downloading"))

	// A second run finds the file and requests nothing for it.
	before := len(m.Secondary.Requests())
	_, err = execute(t, "--config", cfgPath, "fetch", "--dir", dir, "drminstaller-linux")
	require.NoError(t, err)
	assert.Len(t, m.Secondary.Requests(), before)
}

func TestFetch_DisplayOnlyDownloadsNothing(t *testing.T) {
	m := testutil.NewMirrorPair(t)
	publishCatalog(t, m, installerCatalog(m))
	m.SetFile("/drm/a.bin", []byte("linux installer"))
	cfgPath := testutil.SetupTestConfig(t, m, "")
	dir := t.TempDir()

	out, err := execute(t, "--config", cfgPath, "fetch", "--dir", dir, "displayOnly", "drminstaller-linux")
	require.NoError(t, err)
	assert.Contains(t, out, "Linux 64 bit")
	assert.NoFileExists(t, filepath.Join(dir, "a.bin"))
}

func TestFetch_UnknownComponent(t *testing.T) {
	m := testutil.NewMirrorPair(t)
	cfgPath := testutil.SetupTestConfig(t, m, "")

	_, err := execute(t, "--config", cfgPath, "fetch", "firmware")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrUnknownComponent)
	assert.Empty(t, m.Primary.Requests(), "nothing is fetched for an invalid selection")
}

func TestFetch_InvalidProgressMode(t *testing.T) {
	m := testutil.NewMirrorPair(t)
	cfgPath := testutil.SetupTestConfig(t, m, "")

	_, err := execute(t, "--config", cfgPath, "fetch", "--progress", "dots")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid progress mode")
}

func TestShow_SUULinks(t *testing.T) {
	m := testutil.NewMirrorPair(t)
	pages := testutil.NewFileServer(t)
	pages.SetFile("/suu", []byte(`<table class="table table-striped table-bordered">
<thead><tr><th>Operating System</th><th>Download Link</th></tr></thead>
<tbody><tr><td>Linux 64 bit</td><td><a href="/os/linux">Download</a></td></tr></tbody>
</table>`))
	pages.SetFile("/os/linux", []byte(`<a href="`+m.Primary.URL+`/suu/SUU_LIN64.iso">ISO</a>`))
	cfgPath := testutil.SetupTestConfig(t, m, pages.URL+"/suu")

	out, err := execute(t, "--config", cfgPath, "show", "suu-linux")
	require.NoError(t, err)
	assert.Equal(t, "⮩ SUU\n    ⮩ Linux 64 bit = "+m.Primary.URL+"/suu/SUU_LIN64.iso\n", out)
	assert.Empty(t, m.Primary.Requests(), "the catalog is not needed for SUU links")
}

func TestConfigSetGet(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := execute(t, "--config", cfgPath, "config", "init")
	require.NoError(t, err)
	_, err = execute(t, "--config", cfgPath, "config", "init")
	assert.ErrorIs(t, err, pkgerrors.ErrConfigFileExists)

	_, err = execute(t, "--config", cfgPath, "config", "set", "grace_period", "3s")
	require.NoError(t, err)

	out, err := execute(t, "--config", cfgPath, "config", "get", "grace_period")
	require.NoError(t, err)
	assert.Equal(t, "3s", strings.TrimSpace(out))

	out, err = execute(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "catalog_url")
}
