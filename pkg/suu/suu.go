// Package suu scrapes the Server Update Utility landing page for the
// per-operating-system download table and follows each row to its ISO.
package suu

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/glorpus-work/drmget/internal/logger"
	"github.com/glorpus-work/drmget/pkg/catalog"
	"github.com/glorpus-work/drmget/pkg/download"
	"github.com/glorpus-work/drmget/pkg/errors"
)

// Selectors and column names used on the vendor pages.
const (
	TableSelector = "table.table.table-striped.table-bordered"
	ISOSelector   = "div.my-5:nth-child(1) > div:nth-child(5) > div:nth-child(2) > div:nth-child(1) > div:nth-child(2) > a:nth-child(1)"

	ColumnOS            = "Operating System"
	ColumnDownload      = "Download Link"
	ColumnDocumentation = "Documentation"
)

// ParseLinkTable extracts the download table as {OS: {column: value}}.
// Link columns hold the anchor's href resolved against base; every other
// column holds the cell text.
func ParseLinkTable(r io.Reader, base *url.URL) (*catalog.Mapping, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrLinkTable, err.Error())
	}

	table := doc.Find(TableSelector).First()
	if table.Length() == 0 {
		return nil, errors.Wrapf(errors.ErrLinkTable, "no element matches %q", TableSelector)
	}

	var headers []string
	index := make(map[string]int)
	table.Find("thead tr").Each(func(_ int, tr *goquery.Selection) {
		tr.Find("th").Each(func(i int, th *goquery.Selection) {
			name := strings.TrimSpace(th.Text())
			if _, ok := index[name]; !ok {
				headers = append(headers, name)
			}
			index[name] = i
		})
	})
	osIdx, ok := index[ColumnOS]
	if !ok {
		return nil, errors.Wrapf(errors.ErrLinkTable, "no %q column", ColumnOS)
	}
	logger.Debug("link table columns", logger.Fields{"columns": strings.Join(headers, ", ")})

	out := catalog.NewMapping()
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if osIdx >= cells.Length() {
			return
		}
		osName := strings.TrimSpace(cells.Eq(osIdx).Text())
		if osName == "" {
			return
		}
		row := out.Child(osName)
		for _, h := range headers {
			i := index[h]
			if h == ColumnOS || i >= cells.Length() {
				continue
			}
			cell := cells.Eq(i)
			if h == ColumnDownload || h == ColumnDocumentation {
				if href, ok := cell.Find("a").First().Attr("href"); ok {
					row.Set(h, catalog.String(resolve(base, href)))
				}
				continue
			}
			row.Set(h, catalog.String(strings.TrimSpace(cell.Text())))
		}
	})

	if out.Len() == 0 {
		return nil, errors.Wrap(errors.ErrLinkTable, "table has no rows")
	}
	return out, nil
}

// FindISOLink returns the ISO download link from an operating system's
// landing page. When the page layout has moved, the first anchor pointing
// at an .iso file is used instead.
func FindISOLink(r io.Reader, base *url.URL) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", errors.Wrap(errors.ErrLinkTable, err.Error())
	}

	if href, ok := doc.Find(ISOSelector).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		return resolve(base, href), nil
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if isISO(href) {
			found = resolve(base, href)
			return false
		}
		return true
	})
	if found == "" {
		return "", errors.Wrap(errors.ErrLinkTable, "no ISO link on page")
	}
	logger.Debug("ISO link found by extension", logger.Fields{"href": found})
	return found, nil
}

func isISO(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(u.Path), ".iso")
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// PageFetcher retrieves a page into memory.
type PageFetcher interface {
	Fetch(ctx context.Context, t download.Target) (*download.Result, error)
}

// Scraper resolves the SUU download links for a set of operating systems.
type Scraper struct {
	fetcher PageFetcher
	pageURL string
}

// NewScraper creates a Scraper reading the landing page at pageURL.
func NewScraper(fetcher PageFetcher, pageURL string) *Scraper {
	return &Scraper{fetcher: fetcher, pageURL: pageURL}
}

// Links fetches the landing page table and replaces the Download Link of
// each requested row with the ISO link found on that row's page. An empty
// labels list resolves every row. Requested rows missing from the table
// are left for the caller to report.
func (s *Scraper) Links(ctx context.Context, labels []string) (*catalog.Mapping, error) {
	res, err := s.fetcher.Fetch(ctx, download.Target{URLs: []string{s.pageURL}})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch SUU landing page")
	}
	base, _ := url.Parse(s.pageURL)
	table, err := ParseLinkTable(bytes.NewReader(res.Data), base)
	if err != nil {
		return nil, err
	}
	logger.Debug("SUU link table parsed", logger.Fields{"rows": table.Len()})

	if len(labels) == 0 {
		labels = table.Keys()
	}
	for _, label := range labels {
		node, ok := table.Get(label)
		row, isRow := node.(*catalog.Mapping)
		if !ok || !isRow {
			logger.Warn("operating system not listed on SUU page", logger.Fields{"os": label})
			continue
		}
		landing, ok := catalog.LookupString(row, ColumnDownload)
		if !ok {
			logger.Warn("SUU row has no download link", logger.Fields{"os": label})
			continue
		}
		logger.Info("link extracted", logger.Fields{"os": label, "url": landing})

		iso, err := s.resolveISO(ctx, landing)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", label)
		}
		logger.Info("found ISO URL", logger.Fields{"os": label, "url": iso})
		row.Set(ColumnDownload, catalog.String(iso))
	}
	return table, nil
}

func (s *Scraper) resolveISO(ctx context.Context, landing string) (string, error) {
	if isISO(landing) {
		return landing, nil
	}
	res, err := s.fetcher.Fetch(ctx, download.Target{URLs: []string{landing}})
	if err != nil {
		return "", err
	}
	base, _ := url.Parse(landing)
	return FindISOLink(bytes.NewReader(res.Data), base)
}
