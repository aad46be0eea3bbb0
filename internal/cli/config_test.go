package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glorpus-work/drmget/internal/logger"
	pkgerrors "github.com/glorpus-work/drmget/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runConfigCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewConfigCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCmd_InitSetGet(t *testing.T) {
	var logs bytes.Buffer
	logger.SetTestOutput(&logs)
	defer logger.UnsetTestOutput()
	logger.InitLogger("warn", nil)

	cfgPath := filepath.Join(t.TempDir(), "drmget.yaml")
	withGlobals(t, cfgPath, "", "", false)

	_, err := runConfigCmd(t, "init")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "settings file written")

	_, err = runConfigCmd(t, "init")
	assert.ErrorIs(t, err, pkgerrors.ErrConfigFileExists)
	_, err = runConfigCmd(t, "init", "--force")
	require.NoError(t, err)

	_, err = runConfigCmd(t, "set", "mirrors.secondary", "https://mirror.example.org")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "setting saved")

	out, err := runConfigCmd(t, "get", "mirrors.secondary")
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.org", strings.TrimSpace(out))

	out, err = runConfigCmd(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "mirrors.secondary")

	out, err = runConfigCmd(t, "path")
	require.NoError(t, err)
	assert.Equal(t, cfgPath, strings.TrimSpace(out))
}

func TestConfigCmd_UnknownKey(t *testing.T) {
	withGlobals(t, filepath.Join(t.TempDir(), "drmget.yaml"), "", "", false)

	_, err := runConfigCmd(t, "get", "firmware_url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firmware_url")
}
