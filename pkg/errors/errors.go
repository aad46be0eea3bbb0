// Package errors defines the sentinel errors shared across drmget and the
// small wrapping helpers used to add context while keeping errors.Is working.
package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config to YAML")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")
	ErrInvalidLogLevel   = fmt.Errorf("invalid log level")
	ErrInvalidDuration   = fmt.Errorf("duration cannot be negative")
	ErrInvalidChunkSize  = fmt.Errorf("chunk_size must be positive")
	ErrInvalidAttempts   = fmt.Errorf("max_attempts must be at least 1")
	ErrInvalidMirrors    = fmt.Errorf("mirror hosts must both be set and differ")

	// Transfer errors.
	ErrTransport          = fmt.Errorf("transport failure")
	ErrIncompleteTransfer = fmt.Errorf("incomplete transfer")
	ErrLengthMismatch     = fmt.Errorf("received more bytes than advertised")
	ErrNoStatusCode       = fmt.Errorf("download failed without a status code; the connection most likely stalled and died")
	ErrNoContentLength    = fmt.Errorf("content length is not set")
	ErrFetchFailed        = fmt.Errorf("all sources failed")
	ErrFilesystem         = fmt.Errorf("filesystem failure")
	ErrNoCandidates       = fmt.Errorf("no candidate URLs")
	ErrCancelled          = fmt.Errorf("cancelled by user")

	// Catalog and manifest errors.
	ErrUnknownComponent = fmt.Errorf("unknown component")
	ErrCatalogField     = fmt.Errorf("catalog field missing")
	ErrCatalogParse     = fmt.Errorf("failed to parse catalog")
	ErrEmptyNode        = fmt.Errorf("node has no value")
	ErrArchiveMember    = fmt.Errorf("archive member not found")
	ErrLinkTable        = fmt.Errorf("mirror link table not found")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrUnknownComponentWithTag reports the offending component tag.
func ErrUnknownComponentWithTag(tag string) error {
	return fmt.Errorf("%w: %q", ErrUnknownComponent, tag)
}

// ErrCatalogFieldWithPath reports which field path could not be resolved.
func ErrCatalogFieldWithPath(path string) error {
	return fmt.Errorf("%w: %s", ErrCatalogField, path)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: error, warn, info, debug", ErrInvalidLogLevel, level)
}

// ErrUnknownConfigKeyWithName reports the key that was not recognised.
func ErrUnknownConfigKeyWithName(key string) error {
	return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
}
