package catalog

import (
	"bytes"
	"errors"
	"testing"

	"github.com/glorpus-work/drmget/internal/logger"
	pkgerrors "github.com/glorpus-work/drmget/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `{
  "AppUpdateInfo": {
    "Version": "3.4.1",
    "LinuxInstaller": "https://downloads.dell.com/drm/DRMInstaller_3.4.1.bin",
    "WindowsInstaller": "https://downloads.dell.com/drm/DRMInstaller_3.4.1.exe",
    "Mandatory": false
  },
  "RMPlugins": {
    "_baselocation": "downloads.dell.com",
    "Plugin": [
      {"Description": "Dell EMC Plugin A", "Version": "1.0", "FileLocation": "plugins\\a.zip"},
      {"Description": "Dell EMC Plugin B", "Version": "2.1", "FileLocation": "plugins\\b.zip", "SignFileLocation": null}
    ]
  }
}`

func TestParse_PreservesOrderAndKinds(t *testing.T) {
	n, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)

	root, ok := n.(*Mapping)
	require.True(t, ok)
	assert.Equal(t, []string{"AppUpdateInfo", "RMPlugins"}, root.Keys())

	info, ok := Lookup(n, "AppUpdateInfo")
	require.True(t, ok)
	assert.Equal(t, []string{"Version", "LinuxInstaller", "WindowsInstaller", "Mandatory"}, info.(*Mapping).Keys())

	mandatory, _ := Lookup(n, "AppUpdateInfo", "Mandatory")
	assert.Equal(t, Scalar{Value: "false", Kind: KindBool}, mandatory)

	plugins, ok := Lookup(n, "RMPlugins", "Plugin")
	require.True(t, ok)
	require.Len(t, plugins.(Sequence), 2)

	sign, ok := Lookup(plugins.(Sequence)[1], "SignFileLocation")
	assert.True(t, ok)
	assert.Nil(t, sign)

	loc, ok := LookupString(plugins.(Sequence)[0], "FileLocation")
	assert.True(t, ok)
	assert.Equal(t, `plugins\a.zip`, loc)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`{"broken": [`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrCatalogParse))

	n, err := Parse(append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"a": 1}`)...))
	require.NoError(t, err)
	v, ok := LookupString(n, "a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestFlatten_FlatInputIsUnchanged(t *testing.T) {
	in := map[string]string{
		"Linux 64 bit":   "http://host/a.bin",
		"Windows 64 bit": "http://host/b.exe",
	}

	got := Flatten(FromValue(in), nil)

	assert.Equal(t, in, got.Map())
}

func TestFlatten_NestedPaths(t *testing.T) {
	n := FromValue(map[string]interface{}{
		"DRM Installer": map[string]interface{}{
			"Linux 64 bit": "http://host/a.bin",
		},
		"Plugin": map[string]interface{}{
			"Plugin A": map[string]interface{}{
				"FileLocation":     "https://host/a.zip",
				"SignFileLocation": "https://host/a.zip.sign",
			},
		},
	})

	got := Flatten(n, nil)

	assert.Equal(t, []string{
		"DRM Installer.Linux 64 bit",
		"Plugin.Plugin A.FileLocation",
		"Plugin.Plugin A.SignFileLocation",
	}, got.Keys())
	v, _ := got.Get("Plugin.Plugin A.SignFileLocation")
	assert.Equal(t, "https://host/a.zip.sign", v)
}

func TestFlatten_ListSiblingsCollapse(t *testing.T) {
	n := FromValue(map[string]interface{}{
		"Plugin": []interface{}{
			map[string]interface{}{"FileLocation": "first"},
			map[string]interface{}{"FileLocation": "second"},
		},
	})

	got := Flatten(n, nil)

	require.Equal(t, 1, got.Len())
	v, ok := got.Get("Plugin.FileLocation")
	assert.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestFlatten_ScalarsAndNestedListsInSequence(t *testing.T) {
	n := FromValue(map[string]interface{}{
		"mirrors": []interface{}{"a", []interface{}{"b", "c"}},
	})

	got := Flatten(n, nil)

	assert.Equal(t, map[string]string{"mirrors": "c"}, got.Map())
}

func TestFlatten_MergesIntoSeed(t *testing.T) {
	seed := NewFlat()
	seed.Set("SUU.Linux 64 bit", "http://host/suu.iso")

	got := Flatten(FromValue(map[string]interface{}{
		"DRM Installer": map[string]interface{}{"Linux 64 bit": "http://host/a.bin"},
	}), seed)

	assert.Same(t, seed, got)
	assert.Equal(t, []string{"SUU.Linux 64 bit", "DRM Installer.Linux 64 bit"}, got.Keys())
}

func TestFlatten_EmptyNodesWarnAndSkip(t *testing.T) {
	var buf bytes.Buffer
	logger.SetTestOutput(&buf)
	defer logger.UnsetTestOutput()

	n, err := Parse([]byte(`{"a": null, "b": "", "c": "x", "d": {}}`))
	require.NoError(t, err)

	got := Flatten(n, nil)

	assert.Equal(t, map[string]string{"c": "x"}, got.Map())
	assert.Contains(t, buf.String(), "key=a")
	assert.Contains(t, buf.String(), "key=b")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestRender_Tree(t *testing.T) {
	n := FromValue(map[string]interface{}{
		"DRM Installer": map[string]interface{}{
			"Linux 64 bit": "http://host/a.bin",
		},
		"SUU": map[string]interface{}{
			"Windows 64 bit": "http://host/suu.iso",
		},
	})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, n, RenderOptions{}))

	expected := "⮩ DRM Installer\n" +
		"    ⮩ Linux 64 bit = http://host/a.bin\n" +
		"⮩ SUU\n" +
		"    ⮩ Windows 64 bit = http://host/suu.iso\n"
	assert.Equal(t, expected, buf.String())
}

func TestRender_SequenceElementsIndentWithoutHeader(t *testing.T) {
	n := FromValue(map[string]interface{}{
		"Plugin": []interface{}{
			map[string]interface{}{"Description": "A"},
		},
	})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, n, RenderOptions{Indent: 2}))

	assert.Equal(t, "  ⮩ Description = A\n", buf.String())
}

func TestRender_Color(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FromValue(map[string]string{"k": "v"}), RenderOptions{Color: true}))
	assert.Contains(t, buf.String(), "\x1b[")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestRender_WriteError(t *testing.T) {
	err := Render(failingWriter{}, FromValue(map[string]string{"k": "v"}), RenderOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed pipe")
}

func TestMapping_MergeAndChild(t *testing.T) {
	a := NewMapping()
	a.Child("SUU").Set("Linux 64 bit", String("l"))

	b := NewMapping()
	b.Child("SUU").Set("Windows 64 bit", String("w"))
	b.Child("DRM Installer").Set("Linux 64 bit", String("d"))

	a.Merge(b)

	assert.Equal(t, map[string]interface{}{
		"SUU":           map[string]interface{}{"Linux 64 bit": "l", "Windows 64 bit": "w"},
		"DRM Installer": map[string]interface{}{"Linux 64 bit": "d"},
	}, ToValue(a))
	assert.Equal(t, []string{"SUU", "DRM Installer"}, a.Keys())
}
