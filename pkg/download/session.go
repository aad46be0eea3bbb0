package download

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/glorpus-work/drmget/internal/logger"
	pkgerrors "github.com/glorpus-work/drmget/pkg/errors"
	"golang.org/x/net/http/httpproxy"
)

const (
	defaultUserAgent     = "drmget/1.0"
	defaultChunkSize     = 8192
	defaultStreamTimeout = 60 * time.Second
)

// SessionOptions configures a Session.
type SessionOptions struct {
	UserAgent     string
	StreamTimeout time.Duration // longest silence tolerated while connecting, awaiting headers or reading the body
	ChunkSize     int           // bytes written per disk write
	Proxy         *url.URL      // explicit proxy; nil means use the environment
}

// Session is the shared HTTP configuration used for every request of a
// run. It is built once and never mutated.
type Session struct {
	client        *http.Client
	userAgent     string
	streamTimeout time.Duration
	chunkSize     int
}

// NewSession creates a Session. Zero option values fall back to defaults.
func NewSession(opts SessionOptions) *Session {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.StreamTimeout <= 0 {
		opts.StreamTimeout = defaultStreamTimeout
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = ProxyFunc(opts.Proxy)
	transport.DialContext = (&net.Dialer{
		Timeout:   opts.StreamTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = opts.StreamTimeout
	transport.ResponseHeaderTimeout = opts.StreamTimeout

	return &Session{
		client:        &http.Client{Transport: transport},
		userAgent:     opts.UserAgent,
		streamTimeout: opts.StreamTimeout,
		chunkSize:     opts.ChunkSize,
	}
}

// ProxyFunc returns the proxy selector for a transport. An explicit proxy
// wins; otherwise HTTP_PROXY, HTTPS_PROXY and NO_PROXY are honoured.
func ProxyFunc(proxy *url.URL) func(*http.Request) (*url.URL, error) {
	if proxy != nil {
		logger.Debug("using configured proxy", logger.Fields{"proxy": proxy.Redacted()})
		return http.ProxyURL(proxy)
	}

	conf := httpproxy.FromEnvironment()
	if len(conf.HTTPProxy) > 0 || len(conf.HTTPSProxy) > 0 {
		logger.Debug("proxy info from environment", logger.Fields{
			"http_proxy":  conf.HTTPProxy,
			"https_proxy": conf.HTTPSProxy,
			"no_proxy":    conf.NoProxy,
		})
	}
	fn := conf.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return fn(req.URL)
	}
}

// ChunkSize returns the configured write size.
func (s *Session) ChunkSize() int { return s.chunkSize }

func (s *Session) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, http.NoBody)
	if err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrTransport, "failed to create request for %s: %v", rawURL, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	return req, nil
}

// do sends req and rejects any status outside 2xx.
func (s *Session) do(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrTransport, "%s %s: %v", req.Method, req.URL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, pkgerrors.Wrapf(pkgerrors.ErrTransport, "unexpected status code: %d", resp.StatusCode)
	}
	return resp, nil
}

// Head sends a HEAD request for rawURL and returns the advertised content length.
func (s *Session) Head(ctx context.Context, rawURL string) (int64, error) {
	req, err := s.newRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		return 0, err
	}
	resp, err := s.do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	if resp.ContentLength < 0 {
		return 0, pkgerrors.Wrapf(pkgerrors.ErrTransport, "%s: %v", rawURL, pkgerrors.ErrNoContentLength)
	}
	return resp.ContentLength, nil
}

// Get starts a streaming GET. Connecting and waiting for headers are
// bounded by the transport; once the body is flowing the request is only
// aborted when no data arrives for the stream timeout, so a slow but steady
// transfer is never cut off. The returned cancel func must be called once
// the body has been consumed.
func (s *Session) Get(ctx context.Context, rawURL string) (*http.Response, context.CancelFunc, error) {
	ctx, cancel := context.WithCancel(ctx)
	req, err := s.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	resp.Body = newIdleBody(resp.Body, s.streamTimeout, cancel)
	return resp, cancel, nil
}

// idleBody cancels the request when Read has not returned data for timeout.
type idleBody struct {
	io.ReadCloser
	timeout time.Duration
	timer   *time.Timer
}

func newIdleBody(rc io.ReadCloser, timeout time.Duration, cancel context.CancelFunc) *idleBody {
	return &idleBody{
		ReadCloser: rc,
		timeout:    timeout,
		timer: time.AfterFunc(timeout, func() {
			logger.Debug("stream idle, aborting", logger.Fields{"timeout": timeout.String()})
			cancel()
		}),
	}
}

func (b *idleBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 {
		b.timer.Reset(b.timeout)
	}
	return n, err
}

func (b *idleBody) Close() error {
	b.timer.Stop()
	return b.ReadCloser.Close()
}
