package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/drmget/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withGlobals(t *testing.T, cfgPath, proxy, proxyUser string, noColor bool) {
	t.Helper()
	ConfigPath, Proxy, ProxyUser, NoColor = &cfgPath, &proxy, &proxyUser, &noColor
	t.Cleanup(func() {
		ConfigPath, Proxy, ProxyUser, NoColor = nil, nil, nil, nil
	})
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("settings:\n  color_output: true\nproxy:\n  address: file-proxy:3128\n"), 0o600))
	withGlobals(t, cfgPath, "flag-proxy:8080", "alice", true)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Settings.ColorOutput)
	assert.Equal(t, "flag-proxy:8080", cfg.Proxy.Address)
	assert.Equal(t, "alice", cfg.Proxy.Username)
}

func TestNewFetcher_PromptsForProxyPassword(t *testing.T) {
	orig := passwordPrompt
	t.Cleanup(func() { passwordPrompt = orig })

	var prompted string
	passwordPrompt = func(prompt string) (string, error) {
		prompted = prompt
		return "s3cret", nil
	}

	cfg := config.DefaultConfig()
	cfg.Proxy = config.ProxyConfig{Address: "proxy:3128", Username: "alice"}
	f, err := newFetcher(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, f)
	assert.Contains(t, prompted, "alice")

	passwordPrompt = func(string) (string, error) { return "", errors.New("no tty") }
	_, err = newFetcher(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tty")
}

func TestNewFetcher_NoPromptWithoutUser(t *testing.T) {
	orig := passwordPrompt
	t.Cleanup(func() { passwordPrompt = orig })
	passwordPrompt = func(string) (string, error) {
		t.Fatal("password prompt should not run")
		return "", nil
	}

	cfg := config.DefaultConfig()
	cfg.Proxy = config.ProxyConfig{Address: "proxy:3128"}
	_, err := newFetcher(cfg, nil)
	require.NoError(t, err)
}
