//go:generate mockgen -destination=./mocks/orchestrator.go . ArchiveReader,LinkScraper

package orchestrator

import (
	"context"
	"io"
	"time"

	"github.com/glorpus-work/drmget/pkg/catalog"
	"github.com/glorpus-work/drmget/pkg/download"
)

// ArchiveReader is the subset of the archive manager used by the orchestrator.
type ArchiveReader interface {
	ReadMember(ctx context.Context, name string, data []byte, member string) ([]byte, error)
}

// LinkScraper resolves the mirror-link table for the given row labels.
type LinkScraper interface {
	Links(ctx context.Context, labels []string) (*catalog.Mapping, error)
}

// Orchestrator ties catalog retrieval, manifest building, display and
// download together for one run.
type Orchestrator struct {
	DL      download.Downloader
	Archive ArchiveReader
	Links   LinkScraper
	Out     io.Writer // rendered manifest destination
	Hooks   Hooks     // Hooks for progress and event notifications
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // catalog|links|building|waiting|downloading|done
	ID    string
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Request describes one run.
type Request struct {
	Components []string
	// Download fetches the manifest after displaying it. A displayOnly
	// component overrides it.
	Download    bool
	Dir         string
	GracePeriod time.Duration

	CatalogURL    string
	CatalogMember string

	Render catalog.RenderOptions
}

// Outcome is what a run produced.
type Outcome struct {
	CatalogVersion string
	Manifest       *catalog.Mapping
	Worklist       *catalog.Flat
	Report         *download.Report
}
