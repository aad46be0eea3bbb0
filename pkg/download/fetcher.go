package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/glorpus-work/drmget/internal/logger"
	pkgerrors "github.com/glorpus-work/drmget/pkg/errors"
	"github.com/glorpus-work/drmget/pkg/fsutil"
)

// DefaultMaxAttempts is the per-resource attempt budget.
const DefaultMaxAttempts = 2

// Target is one resource to retrieve. An empty Dest fetches into memory.
type Target struct {
	URLs []string
	Dest string
}

// Result describes a successful fetch. In-memory fetches carry Data; disk
// fetches carry Path and Size.
type Result struct {
	Data     []byte
	Path     string
	Size     int64
	URL      string
	Attempts int
	Skipped  bool
}

// FetchError is returned when every candidate URL failed. It matches both
// errors.ErrFetchFailed and the last underlying error.
type FetchError struct {
	Attempts int
	Last     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%v after %d attempt(s): %v", pkgerrors.ErrFetchFailed, e.Attempts, e.Last)
}

func (e *FetchError) Unwrap() []error {
	return []error{pkgerrors.ErrFetchFailed, e.Last}
}

// Options configures a Fetcher.
type Options struct {
	Mirrors     Mirrors
	MaxAttempts int
	Progress    Progress
	FallbackDir string // used by FetchAll when the destination is missing
}

// Fetcher retrieves resources with mirror failover and length
// verification.
type Fetcher struct {
	session     *Session
	mirrors     Mirrors
	maxAttempts int
	progress    Progress
	fallbackDir string
}

// NewFetcher creates a Fetcher on top of session.
func NewFetcher(session *Session, opts Options) *Fetcher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Progress == nil {
		opts.Progress = NopProgress{}
	}
	return &Fetcher{
		session:     session,
		mirrors:     opts.Mirrors,
		maxAttempts: opts.MaxAttempts,
		progress:    opts.Progress,
		fallbackDir: opts.FallbackDir,
	}
}

// Fetch retrieves t. A disk target whose destination already exists is
// skipped without any network traffic. Transport failures and incomplete
// transfers move on to the next candidate until the attempt budget is
// spent; local filesystem failures are returned immediately.
func (f *Fetcher) Fetch(ctx context.Context, t Target) (*Result, error) {
	if t.Dest != "" && fsutil.Exists(t.Dest) {
		var size int64
		if st, err := os.Stat(t.Dest); err == nil {
			size = st.Size()
		}
		logger.Notice("file already exists, skipping", logger.Fields{"path": t.Dest})
		return &Result{Path: t.Dest, Size: size, Skipped: true}, nil
	}

	candidates := f.mirrors.Candidates(t.URLs)
	if len(candidates) == 0 {
		return nil, pkgerrors.ErrNoCandidates
	}

	var last error
	attempts := 0
	for attempts < f.maxAttempts {
		u := candidates[attempts%len(candidates)]
		attempts++
		if attempts > 1 {
			logger.Info("retrying with alternate source", logger.Fields{"url": u, "attempt": attempts})
		}

		res, err := f.fetchOnce(ctx, u, t.Dest)
		if err == nil {
			res.URL = u
			res.Attempts = attempts
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCancelled, ctx.Err().Error())
		}
		if errors.Is(err, pkgerrors.ErrFilesystem) {
			return nil, err
		}
		logger.Warn("fetch attempt failed", logger.Fields{"url": u, "attempt": attempts, "error": err.Error()})
		last = err
	}

	if last == nil {
		last = pkgerrors.ErrNoStatusCode
	}
	return nil, &FetchError{Attempts: attempts, Last: last}
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL, dest string) (*Result, error) {
	if dest == "" {
		return f.fetchMemory(ctx, rawURL)
	}
	return f.fetchDisk(ctx, rawURL, dest)
}

func (f *Fetcher) fetchMemory(ctx context.Context, rawURL string) (*Result, error) {
	resp, cancel, err := f.session.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrIncompleteTransfer, "%s: received %d bytes: %v", rawURL, len(data), err)
	}
	if resp.ContentLength >= 0 && int64(len(data)) != resp.ContentLength {
		return nil, lengthError(rawURL, int64(len(data)), resp.ContentLength)
	}
	return &Result{Data: data, Size: int64(len(data))}, nil
}

func (f *Fetcher) fetchDisk(ctx context.Context, rawURL, dest string) (*Result, error) {
	expected, err := f.session.Head(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	resp, cancel, err := f.session.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer func() { _ = resp.Body.Close() }()

	name := filepath.Base(dest)
	f.progress.Start(name, expected)
	received, err := f.stream(resp.Body, dest, name, expected)
	if err == nil && received != expected {
		err = lengthError(rawURL, received, expected)
	}
	if err != nil {
		f.progress.Done(name, err)
		return nil, err
	}

	if err := fsutil.Commit(dest); err != nil {
		f.progress.Done(name, err)
		return nil, pkgerrors.Wrap(pkgerrors.ErrFilesystem, err.Error())
	}
	f.progress.Done(name, nil)
	return &Result{Path: dest, Size: received}, nil
}

// stream copies body into the partial file for dest in fixed-size chunks.
// A read error ends the copy; the caller compares the byte count.
func (f *Fetcher) stream(body io.Reader, dest, name string, expected int64) (int64, error) {
	if err := fsutil.EnsureFileDir(dest); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.ErrFilesystem, err.Error())
	}
	out, err := fsutil.CreatePartial(dest)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.ErrFilesystem, err.Error())
	}

	buf := make([]byte, f.session.ChunkSize())
	var received int64
	var readErr error
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				_ = out.Close()
				return received, pkgerrors.Wrap(pkgerrors.ErrFilesystem, werr.Error())
			}
			received += int64(n)
			f.progress.Advance(name, received, expected)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			readErr = rerr
			break
		}
	}

	if err := out.Close(); err != nil {
		return received, pkgerrors.Wrap(pkgerrors.ErrFilesystem, err.Error())
	}
	if readErr != nil && received >= expected {
		return received, pkgerrors.Wrap(pkgerrors.ErrTransport, readErr.Error())
	}
	if readErr != nil {
		logger.Debug("stream ended early", logger.Fields{"file": name, "error": readErr.Error()})
	}
	return received, nil
}

func lengthError(rawURL string, received, expected int64) error {
	if received < expected {
		return pkgerrors.Wrapf(pkgerrors.ErrIncompleteTransfer, "%s: received %d of %d bytes", rawURL, received, expected)
	}
	return pkgerrors.Wrapf(pkgerrors.ErrLengthMismatch, "%s: received %d bytes, expected %d", rawURL, received, expected)
}
