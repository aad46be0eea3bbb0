package config

import (
	"net/url"
	"strings"
)

// Enabled reports whether an explicit proxy is configured.
func (p ProxyConfig) Enabled() bool {
	return strings.TrimSpace(p.Address) != ""
}

// NeedsPassword reports whether a password must be obtained before the
// proxy can be used.
func (p ProxyConfig) NeedsPassword() bool {
	return p.Enabled() && p.Username != ""
}

// URL returns the proxy as a URL carrying basic credentials when a
// username is set. Bare host:port addresses are given an http scheme.
func (p ProxyConfig) URL(password string) (*url.URL, error) {
	if !p.Enabled() {
		return nil, nil
	}
	addr := strings.TrimSpace(p.Address)
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, password)
	}
	return u, nil
}
