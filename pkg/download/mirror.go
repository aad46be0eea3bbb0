package download

import (
	"net/url"
	"strings"
)

// Mirrors is a pair of interchangeable origins, for example
// "https://downloads.dell.com" and "https://dl.dell.com". A bare host name
// is read as https.
type Mirrors struct {
	Primary   string
	Secondary string
}

// Swap rewrites rawURL to point at the other mirror. It reports false when
// the URL's host is neither mirror.
func (m Mirrors) Swap(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL, false
	}
	primary, secondary := origin(m.Primary), origin(m.Secondary)
	if primary == nil || secondary == nil {
		return rawURL, false
	}

	var to *url.URL
	switch {
	case strings.EqualFold(u.Host, primary.Host):
		to = secondary
	case strings.EqualFold(u.Host, secondary.Host):
		to = primary
	default:
		return rawURL, false
	}
	swapped := *u
	swapped.Scheme = to.Scheme
	swapped.Host = to.Host
	return swapped.String(), true
}

// Candidates returns the ordered URLs to try for a resource. A single
// mirrored URL gains its swapped twin; anything else is returned as is.
func (m Mirrors) Candidates(urls []string) []string {
	out := make([]string, 0, len(urls)+1)
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	if len(out) == 1 {
		if alt, ok := m.Swap(out[0]); ok {
			out = append(out, alt)
		}
	}
	return out
}

func origin(s string) *url.URL {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return nil
	}
	return u
}
