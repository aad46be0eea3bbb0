package orchestrator

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/drmget/internal/logger"
	"github.com/glorpus-work/drmget/pkg/catalog"
	"github.com/glorpus-work/drmget/pkg/download"
	"github.com/glorpus-work/drmget/pkg/errors"
	"github.com/glorpus-work/drmget/pkg/manifest"
	"github.com/hashicorp/go-version"
)

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Run validates the selection, gathers the sources it needs, renders the
// manifest and, when downloading, waits out the grace period before
// fetching every entry. Per-file failures are reported in the Outcome;
// only selection, source and cancellation problems return an error.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Outcome, error) {
	if o.DL == nil {
		return nil, fmt.Errorf("download manager is not configured")
	}
	sel, err := manifest.Select(req.Components)
	if err != nil {
		return nil, err
	}
	fetch := req.Download && !sel.DisplayOnly
	out := &Outcome{}

	var cat catalog.Node
	if sel.Needs(manifest.SourceCatalog) {
		cat, out.CatalogVersion, err = o.loadCatalog(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	var links catalog.Node
	if sel.Needs(manifest.SourceMirrorLinks) {
		if o.Links == nil {
			return nil, fmt.Errorf("link scraper is not configured")
		}
		emit(o.Hooks, Event{Phase: "links", Msg: "resolving mirror links"})
		m, err := o.Links.Links(ctx, mirrorLabels(sel))
		if err != nil {
			return nil, err
		}
		links = m
	}

	emit(o.Hooks, Event{Phase: "building", Msg: fmt.Sprintf("%d component(s)", len(sel.Tags))})
	out.Manifest, err = manifest.NewBuilder().Build(sel.Tags, cat, links)
	if err != nil {
		return nil, err
	}

	if o.Out != nil {
		if err := catalog.Render(o.Out, out.Manifest, req.Render); err != nil {
			return nil, errors.Wrap(err, "failed to write manifest")
		}
	}

	if !fetch {
		emit(o.Hooks, Event{Phase: "done", Msg: "display only"})
		return out, nil
	}

	if err := o.wait(ctx, req.GracePeriod); err != nil {
		return out, err
	}

	out.Worklist = catalog.Flatten(out.Manifest, nil)
	emit(o.Hooks, Event{Phase: "downloading", Msg: fmt.Sprintf("%d file(s)", out.Worklist.Len())})
	report := o.DL.FetchAll(ctx, out.Worklist, req.Dir)
	out.Report = &report

	downloaded, skipped, failed := report.Counts()
	var received int64
	for _, e := range report.Entries {
		if e.Err == nil && e.Result != nil && !e.Result.Skipped {
			received += e.Result.Size
		}
	}
	logger.Notice("End of run", logger.Fields{
		"dir":        report.Dir,
		"downloaded": downloaded,
		"skipped":    skipped,
		"failed":     failed,
		"received":   humanize.IBytes(uint64(received)),
	})
	emit(o.Hooks, Event{Phase: "done", Msg: fmt.Sprintf("%d downloaded, %d skipped, %d failed", downloaded, skipped, failed)})

	if report.Cancelled {
		return out, errors.ErrCancelled
	}
	return out, nil
}

func (o *Orchestrator) loadCatalog(ctx context.Context, req Request) (catalog.Node, string, error) {
	if o.Archive == nil {
		return nil, "", fmt.Errorf("archive reader is not configured")
	}
	emit(o.Hooks, Event{Phase: "catalog", ID: req.CatalogURL, Msg: "fetching catalog"})

	res, err := o.DL.Fetch(ctx, download.Target{URLs: []string{req.CatalogURL}})
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to fetch catalog %s", req.CatalogURL)
	}
	data, err := o.Archive.ReadMember(ctx, path.Base(req.CatalogURL), res.Data, req.CatalogMember)
	if err != nil {
		return nil, "", err
	}
	cat, err := catalog.Parse(data)
	if err != nil {
		return nil, "", err
	}

	raw, _ := catalog.LookupString(cat, "AppUpdateInfo", "Version")
	if v, verr := version.NewVersion(raw); verr == nil {
		raw = v.String()
	}
	logger.Info("catalog loaded", logger.Fields{"url": res.URL, "version": raw})
	return cat, raw, nil
}

// wait blocks for the grace period so the operator can interrupt before
// anything is written.
func (o *Orchestrator) wait(ctx context.Context, grace time.Duration) error {
	if grace <= 0 {
		return nil
	}
	emit(o.Hooks, Event{Phase: "waiting", Msg: grace.String()})
	logger.Notice(fmt.Sprintf("About to start auto download. Waiting for %s for user cancellation.", grace))

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		logger.Notice("Download cancelled by user")
		return errors.ErrCancelled
	}
}

// mirrorLabels returns the table rows the selected mirror-link rules read.
func mirrorLabels(sel manifest.Selection) []string {
	var labels []string
	for _, r := range sel.Rules() {
		if r.Source == manifest.SourceMirrorLinks && len(r.Path) > 0 {
			labels = append(labels, r.Path[0])
		}
	}
	return labels
}

// New constructs an Orchestrator from its collaborators. Helper for wiring.
func New(dl download.Downloader, archive ArchiveReader, links LinkScraper, out io.Writer, hooks Hooks) *Orchestrator {
	return &Orchestrator{
		DL:      dl,
		Archive: archive,
		Links:   links,
		Out:     out,
		Hooks:   hooks,
	}
}
