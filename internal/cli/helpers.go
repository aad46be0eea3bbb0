package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/glorpus-work/drmget/internal/logger"
	"github.com/glorpus-work/drmget/pkg/config"
	"github.com/glorpus-work/drmget/pkg/download"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *int
	LogFile    *string
	NoColor    *bool
	Proxy      *string
	ProxyUser  *string
)

// passwordPrompt is swapped in tests.
var passwordPrompt = promptPassword

// loadConfig loads the configuration and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if NoColor != nil && *NoColor {
		cfg.Settings.ColorOutput = false
	}
	if Proxy != nil && *Proxy != "" {
		cfg.Proxy.Address = *Proxy
	}
	if ProxyUser != nil && *ProxyUser != "" {
		cfg.Proxy.Username = *ProxyUser
	}
	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

// setupLogging initialises the logger from the verbosity count, falling
// back to the configured level. The returned closer releases the log file.
func setupLogging(cfg *config.Config) (func(), error) {
	count := 0
	if Verbose != nil {
		count = *Verbose
	}
	level := logger.LevelFromVerbosity(count, cfg.Settings.LogLevel)

	var extra io.Writer
	closer := func() {}
	if LogFile != nil && *LogFile != "" {
		f, err := os.OpenFile(*LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		extra = f
		closer = func() { _ = f.Close() }
	}

	logger.InitLogger(level, extra)
	return closer, nil
}

// newFetcher builds the HTTP session and fetcher described by cfg,
// prompting for the proxy password when a proxy user is configured.
func newFetcher(cfg *config.Config, progress download.Progress) (*download.Fetcher, error) {
	password := ""
	if cfg.Proxy.NeedsPassword() {
		p, err := passwordPrompt(fmt.Sprintf("Password for proxy user %s: ", cfg.Proxy.Username))
		if err != nil {
			return nil, fmt.Errorf("failed to read proxy password: %w", err)
		}
		password = p
	}
	proxy, err := cfg.Proxy.URL(password)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy address: %w", err)
	}

	session := download.NewSession(download.SessionOptions{
		UserAgent:     cfg.Settings.UserAgent,
		StreamTimeout: cfg.Settings.StreamTimeout,
		ChunkSize:     cfg.Settings.ChunkSize,
		Proxy:         proxy,
	})
	return download.NewFetcher(session, download.Options{
		Mirrors: download.Mirrors{
			Primary:   cfg.Mirrors.Primary,
			Secondary: cfg.Mirrors.Secondary,
		},
		MaxAttempts: cfg.Settings.MaxAttempts,
		Progress:    progress,
		FallbackDir: cfg.Settings.FallbackDir,
	}), nil
}
