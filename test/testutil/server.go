// Package testutil holds HTTP fixtures shared by package tests.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
)

// FileServer is an in-memory HTTP origin that records every request.
type FileServer struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	heads    map[string]int64
	status   int
	requests []string
}

// NewFileServer starts a FileServer that is closed when the test ends.
func NewFileServer(t *testing.T) *FileServer {
	t.Helper()
	fs := &FileServer{
		files: make(map[string][]byte),
		heads: make(map[string]int64),
	}
	fs.Server = httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(fs.Close)
	return fs
}

// SetFile serves data at path.
func (fs *FileServer) SetFile(path string, data []byte) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = data
}

// SetHeadLength makes HEAD requests for path advertise n bytes regardless
// of the stored body.
func (fs *FileServer) SetHeadLength(path string, n int64) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.heads[path] = n
}

// Fail answers every request with status. Zero restores normal service.
func (fs *FileServer) Fail(status int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.status = status
}

// Requests returns the "METHOD /path" lines received so far.
func (fs *FileServer) Requests() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]string, len(fs.requests))
	copy(out, fs.requests)
	return out
}

func (fs *FileServer) serve(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	fs.requests = append(fs.requests, r.Method+" "+r.URL.Path)
	status := fs.status
	data, ok := fs.files[r.URL.Path]
	headLen, hasHead := fs.heads[r.URL.Path]
	fs.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	length := int64(len(data))
	if r.Method == http.MethodHead && hasHead {
		length = headLen
	}
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}

// MirrorPair is two origins standing in for a primary host and its mirror.
type MirrorPair struct {
	Primary   *FileServer
	Secondary *FileServer
}

// NewMirrorPair starts both origins.
func NewMirrorPair(t *testing.T) *MirrorPair {
	t.Helper()
	return &MirrorPair{Primary: NewFileServer(t), Secondary: NewFileServer(t)}
}

// SetFile serves data at path on both origins.
func (m *MirrorPair) SetFile(path string, data []byte) {
	m.Primary.SetFile(path, data)
	m.Secondary.SetFile(path, data)
}

// SetupTestConfig writes a config file pointing the mirrors, catalog and
// SUU page at the pair and returns its path.
func SetupTestConfig(t *testing.T, m *MirrorPair, suuPageURL string) string {
	t.Helper()

	configStr := fmt.Sprintf(`settings:
  grace_period: 0s
  stream_timeout: 5s
  catalog_url: %s/catalog/DRMVersion.tar.gz
  suu_page_url: %s
  color_output: false
mirrors:
  primary: %s
  secondary: %s
`, m.Primary.URL, suuPageURL, m.Primary.URL, m.Secondary.URL)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configStr), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}
