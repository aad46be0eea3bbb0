// Package config provides configuration management for drmget.
// It handles loading, validating and saving the YAML settings file that
// describes where catalogs are fetched from, which mirror hosts may be
// swapped for one another and how transfers behave. A missing file yields
// the defaults.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glorpus-work/drmget/pkg/errors"
	"github.com/glorpus-work/drmget/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings      `yaml:"settings"`
	Mirrors  MirrorsConfig `yaml:"mirrors"`
	Proxy    ProxyConfig   `yaml:"proxy,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	// Download settings
	DownloadDir string `yaml:"download_dir,omitempty"`
	FallbackDir string `yaml:"fallback_dir,omitempty"`

	// Transfer settings
	StreamTimeout time.Duration `yaml:"stream_timeout"`
	ChunkSize     int           `yaml:"chunk_size"`
	GracePeriod   time.Duration `yaml:"grace_period"`
	MaxAttempts   int           `yaml:"max_attempts"`
	UserAgent     string        `yaml:"user_agent,omitempty"`

	// Sources
	CatalogURL    string `yaml:"catalog_url"`
	CatalogMember string `yaml:"catalog_member"`
	SUUPageURL    string `yaml:"suu_page_url"`

	// Output settings
	LogLevel    string `yaml:"log_level"`
	ColorOutput bool   `yaml:"color_output"`
}

// MirrorsConfig names the two interchangeable hosts. A URL containing one
// of them can be retried against the other.
type MirrorsConfig struct {
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
}

// ProxyConfig holds the optional outbound proxy. The password is never
// stored; it is prompted for when a username is set.
type ProxyConfig struct {
	Address  string `yaml:"address,omitempty"`
	Username string `yaml:"username,omitempty"`
}

// Default configuration values.
const (
	DefaultStreamTimeout = 60 * time.Second
	DefaultChunkSize     = 8192
	DefaultGracePeriod   = 10 * time.Second
	DefaultMaxAttempts   = 2

	DefaultPrimaryMirror   = "https://downloads.dell.com"
	DefaultSecondaryMirror = "https://dl.dell.com"

	DefaultCatalogURL    = DefaultPrimaryMirror + "/catalog/DRMVersion.tar.gz"
	DefaultCatalogMember = "DRMVersion.json"
	DefaultSUUPageURL    = "https://www.dell.com/support/article/en-uk/sln285500/dell-emc-server-update-utility-suu-guide-and-download?lang=en"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			StreamTimeout: DefaultStreamTimeout,
			ChunkSize:     DefaultChunkSize,
			GracePeriod:   DefaultGracePeriod,
			MaxAttempts:   DefaultMaxAttempts,
			CatalogURL:    DefaultCatalogURL,
			CatalogMember: DefaultCatalogMember,
			SUUPageURL:    DefaultSUUPageURL,
			LogLevel:      "warn",
			ColorOutput:   true,
		},
		Mirrors: MirrorsConfig{
			Primary:   DefaultPrimaryMirror,
			Secondary: DefaultSecondaryMirror,
		},
	}
}

// LoadConfig loads configuration from a file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader. Keys absent
// from the document keep their default values.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return config, nil
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	// Atomically replace the config file
	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateSettings(c.Settings); err != nil {
		return err
	}
	return validateMirrors(c.Mirrors)
}

func validateSettings(s Settings) error {
	if s.StreamTimeout < 0 {
		return errors.Wrap(errors.ErrInvalidDuration, "stream_timeout")
	}
	if s.GracePeriod < 0 {
		return errors.Wrap(errors.ErrInvalidDuration, "grace_period")
	}
	if s.ChunkSize < 1 {
		return errors.ErrInvalidChunkSize
	}
	if s.MaxAttempts < 1 {
		return errors.ErrInvalidAttempts
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	return nil
}

func validateMirrors(m MirrorsConfig) error {
	if m.Primary == "" || m.Secondary == "" || m.Primary == m.Secondary {
		return errors.ErrInvalidMirrors
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "drmget", "config.yaml"), nil
}

// applyDefaults fills in values explicitly left empty in the file.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.StreamTimeout == 0 {
		c.Settings.StreamTimeout = defaults.Settings.StreamTimeout
	}
	if c.Settings.ChunkSize == 0 {
		c.Settings.ChunkSize = defaults.Settings.ChunkSize
	}
	if c.Settings.MaxAttempts == 0 {
		c.Settings.MaxAttempts = defaults.Settings.MaxAttempts
	}
	if c.Settings.CatalogURL == "" {
		c.Settings.CatalogURL = defaults.Settings.CatalogURL
	}
	if c.Settings.CatalogMember == "" {
		c.Settings.CatalogMember = defaults.Settings.CatalogMember
	}
	if c.Settings.SUUPageURL == "" {
		c.Settings.SUUPageURL = defaults.Settings.SUUPageURL
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Mirrors.Primary == "" {
		c.Mirrors.Primary = defaults.Mirrors.Primary
	}
	if c.Mirrors.Secondary == "" {
		c.Mirrors.Secondary = defaults.Mirrors.Secondary
	}
}
