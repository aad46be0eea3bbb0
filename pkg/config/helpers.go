package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/glorpus-work/drmget/pkg/errors"
)

// Keys lists every key accepted by SetValue and GetValue, in display order.
var Keys = []string{
	"download_dir",
	"fallback_dir",
	"stream_timeout",
	"chunk_size",
	"grace_period",
	"max_attempts",
	"user_agent",
	"catalog_url",
	"catalog_member",
	"suu_page_url",
	"mirrors.primary",
	"mirrors.secondary",
	"proxy.address",
	"proxy.username",
	"log_level",
	"color_output",
}

// SetValue sets a configuration value by key. Durations use Go syntax
// ("60s", "1m30s").
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "download_dir":
		c.Settings.DownloadDir = value
	case "fallback_dir":
		c.Settings.FallbackDir = value
	case "stream_timeout":
		return setDuration(&c.Settings.StreamTimeout, key, value)
	case "chunk_size":
		return setInt(&c.Settings.ChunkSize, key, value)
	case "grace_period":
		return setDuration(&c.Settings.GracePeriod, key, value)
	case "max_attempts":
		return setInt(&c.Settings.MaxAttempts, key, value)
	case "user_agent":
		c.Settings.UserAgent = value
	case "catalog_url":
		c.Settings.CatalogURL = value
	case "catalog_member":
		c.Settings.CatalogMember = value
	case "suu_page_url":
		c.Settings.SUUPageURL = value
	case "mirrors.primary":
		c.Mirrors.Primary = value
	case "mirrors.secondary":
		c.Mirrors.Secondary = value
	case "proxy.address":
		c.Proxy.Address = value
	case "proxy.username":
		c.Proxy.Username = value
	case "log_level":
		c.Settings.LogLevel = value
	case "color_output":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		c.Settings.ColorOutput = boolVal
	default:
		return errors.ErrUnknownConfigKeyWithName(key)
	}
	return nil
}

// GetValue returns the value stored under key as a string.
func (c *Config) GetValue(key string) (string, error) {
	switch key {
	case "download_dir":
		return c.Settings.DownloadDir, nil
	case "fallback_dir":
		return c.Settings.FallbackDir, nil
	case "stream_timeout":
		return c.Settings.StreamTimeout.String(), nil
	case "chunk_size":
		return strconv.Itoa(c.Settings.ChunkSize), nil
	case "grace_period":
		return c.Settings.GracePeriod.String(), nil
	case "max_attempts":
		return strconv.Itoa(c.Settings.MaxAttempts), nil
	case "user_agent":
		return c.Settings.UserAgent, nil
	case "catalog_url":
		return c.Settings.CatalogURL, nil
	case "catalog_member":
		return c.Settings.CatalogMember, nil
	case "suu_page_url":
		return c.Settings.SUUPageURL, nil
	case "mirrors.primary":
		return c.Mirrors.Primary, nil
	case "mirrors.secondary":
		return c.Mirrors.Secondary, nil
	case "proxy.address":
		return c.Proxy.Address, nil
	case "proxy.username":
		return c.Proxy.Username, nil
	case "log_level":
		return c.Settings.LogLevel, nil
	case "color_output":
		return strconv.FormatBool(c.Settings.ColorOutput), nil
	default:
		return "", errors.ErrUnknownConfigKeyWithName(key)
	}
}

// ToMap returns every key with its current value.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string, len(Keys))
	for _, k := range Keys {
		v, _ := c.GetValue(k)
		result[k] = v
	}
	return result
}

func setDuration(dst *time.Duration, key, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration for %s: %s", key, value)
	}
	if d < 0 {
		return errors.Wrap(errors.ErrInvalidDuration, key)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	*dst = n
	return nil
}
