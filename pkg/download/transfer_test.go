package download

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	pkgerrors "github.com/glorpus-work/drmget/pkg/errors"
	"github.com/glorpus-work/drmget/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dripServer answers HEAD with size and streams a GET body one byte per
// interval. After stallAfter bytes it stops writing until the client goes
// away; stallAfter < 0 never stalls.
func dripServer(t *testing.T, size int, interval time.Duration, stallAfter int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(size))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		flusher := w.(http.Flusher)
		for i := 0; i < size; i++ {
			if i == stallAfter {
				select {
				case <-r.Context().Done():
				case <-time.After(5 * time.Second):
				}
				return
			}
			_, _ = w.Write([]byte{byte('a' + i)})
			flusher.Flush()
			time.Sleep(interval)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTimeoutFetcher(timeout time.Duration) *Fetcher {
	session := NewSession(SessionOptions{StreamTimeout: timeout, ChunkSize: 4})
	return NewFetcher(session, Options{MaxAttempts: 2})
}

func TestFetch_SteadyTransferOutlivesStreamTimeout(t *testing.T) {
	server := dripServer(t, 10, 100*time.Millisecond, -1)

	dest := filepath.Join(t.TempDir(), "slow.iso")
	res, err := newTimeoutFetcher(300*time.Millisecond).Fetch(context.Background(), Target{
		URLs: []string{server.URL + "/slow.iso"},
		Dest: dest,
	})
	require.NoError(t, err, "a transfer that keeps making progress must not be cut off")
	assert.Equal(t, 1, res.Attempts)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "abcdefghij", string(content))
}

func TestFetch_SteadyTransferInMemory(t *testing.T) {
	server := dripServer(t, 8, 100*time.Millisecond, -1)

	res, err := newTimeoutFetcher(300 * time.Millisecond).Fetch(context.Background(), Target{
		URLs: []string{server.URL + "/page"},
	})
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", string(res.Data))
}

func TestFetch_StalledTransferFails(t *testing.T) {
	server := dripServer(t, 10, 10*time.Millisecond, 3)

	dest := filepath.Join(t.TempDir(), "stall.iso")
	start := time.Now()
	_, err := newTimeoutFetcher(200*time.Millisecond).Fetch(context.Background(), Target{
		URLs: []string{server.URL + "/stall.iso"},
		Dest: dest,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrFetchFailed))
	assert.True(t, errors.Is(err, pkgerrors.ErrIncompleteTransfer))
	assert.Less(t, time.Since(start), 4*time.Second, "the idle timer aborts the stall")

	assert.NoFileExists(t, dest)
}

func TestFetch_ConnectionRefusedFallsBackToMirror(t *testing.T) {
	mirror := testutil.NewFileServer(t)
	mirror.SetFile("/drm/a.bin", []byte("payload"))

	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	fetcher := NewFetcher(NewSession(SessionOptions{StreamTimeout: 5 * time.Second}), Options{
		Mirrors:     Mirrors{Primary: downURL, Secondary: mirror.URL},
		MaxAttempts: 2,
	})

	dest := filepath.Join(t.TempDir(), "a.bin")
	res, err := fetcher.Fetch(context.Background(), Target{
		URLs: []string{downURL + "/drm/a.bin"},
		Dest: dest,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, mirror.URL+"/drm/a.bin", res.URL)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
}

func TestFetch_ConnectionDroppedMidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "10")
			w.WriteHeader(http.StatusOK)
			return
		}
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		_, _ = conn.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\n0123"))
		_ = conn.Close()
	}))
	t.Cleanup(server.Close)

	dest := filepath.Join(t.TempDir(), "a.bin")
	_, err := newTimeoutFetcher(5*time.Second).Fetch(context.Background(), Target{
		URLs: []string{server.URL + "/a.bin"},
		Dest: dest,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrFetchFailed))
	assert.True(t, errors.Is(err, pkgerrors.ErrIncompleteTransfer))

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 2, fe.Attempts)
	assert.NoFileExists(t, dest)
	assert.FileExists(t, dest+".downloading")
}
