// Package download is the resilient fetch engine: HTTP retrieval with
// mirror failover, in-memory or chunked on-disk streaming, byte-count
// verification and commit-by-rename.
//
//go:generate mockgen -destination=./mocks/download.go . Downloader
package download

import (
	"context"

	"github.com/glorpus-work/drmget/pkg/catalog"
)

// Downloader retrieves single resources and flat worklists.
type Downloader interface {
	// Fetch retrieves one target into memory or onto disk.
	Fetch(ctx context.Context, t Target) (*Result, error)

	// FetchAll downloads every worklist value into dir and reports each outcome.
	FetchAll(ctx context.Context, worklist *catalog.Flat, dir string) Report
}

var _ Downloader = (*Fetcher)(nil)
