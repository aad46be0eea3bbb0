package download

import (
	"context"
	"errors"
	"net/url"
	"path"
	"path/filepath"

	"github.com/glorpus-work/drmget/internal/logger"
	"github.com/glorpus-work/drmget/pkg/catalog"
	pkgerrors "github.com/glorpus-work/drmget/pkg/errors"
	"github.com/glorpus-work/drmget/pkg/fsutil"
)

// Entry is the outcome of one worklist item.
type Entry struct {
	Key    string
	URL    string
	Result *Result
	Err    error
}

// Report summarises a FetchAll run.
type Report struct {
	Dir       string
	FellBack  bool
	Cancelled bool
	Entries   []Entry
}

// Counts returns how many entries were downloaded, skipped and failed.
func (r Report) Counts() (downloaded, skipped, failed int) {
	for _, e := range r.Entries {
		switch {
		case e.Err != nil:
			failed++
		case e.Result != nil && e.Result.Skipped:
			skipped++
		default:
			downloaded++
		}
	}
	return downloaded, skipped, failed
}

// Failed returns the entries that did not succeed.
func (r Report) Failed() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Err != nil {
			out = append(out, e)
		}
	}
	return out
}

// FileName returns the last path segment of rawURL.
func FileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", pkgerrors.Wrapf(pkgerrors.ErrTransport, "invalid url %q: %v", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", pkgerrors.Wrapf(pkgerrors.ErrFilesystem, "cannot derive a file name from %s", rawURL)
	}
	return name, nil
}

// FetchAll downloads every value of worklist into dir, in worklist order.
// A failed item is recorded and the batch moves on; only cancellation of
// ctx stops the run early.
func (f *Fetcher) FetchAll(ctx context.Context, worklist *catalog.Flat, dir string) Report {
	resolved, fellBack := fsutil.ResolveDir(dir, f.fallbackDir)
	if fellBack {
		logger.Warn("download directory does not exist, using fallback", logger.Fields{
			"requested": dir,
			"fallback":  resolved,
		})
	}
	report := Report{Dir: resolved, FellBack: fellBack}

	for _, key := range worklist.Keys() {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
		rawURL, _ := worklist.Get(key)
		entry := Entry{Key: key, URL: rawURL}

		name, err := FileName(rawURL)
		if err != nil {
			entry.Err = err
			logger.Error("cannot download entry", logger.Fields{"entry": key, "error": err.Error()})
			report.Entries = append(report.Entries, entry)
			continue
		}

		entry.Result, entry.Err = f.Fetch(ctx, Target{
			URLs: []string{rawURL},
			Dest: filepath.Join(resolved, name),
		})
		switch {
		case entry.Err == nil && entry.Result.Skipped:
		case entry.Err == nil:
			logger.Success("downloaded", logger.Fields{"entry": key, "path": entry.Result.Path, "url": entry.Result.URL})
		case errors.Is(entry.Err, pkgerrors.ErrCancelled):
			report.Cancelled = true
		default:
			logger.Error("download failed", logger.Fields{"entry": key, "url": rawURL, "error": entry.Err.Error()})
		}
		report.Entries = append(report.Entries, entry)
		if report.Cancelled {
			break
		}
	}
	return report
}
