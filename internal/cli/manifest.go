package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/glorpus-work/drmget/internal/logger"
	"github.com/glorpus-work/drmget/pkg/archive"
	"github.com/glorpus-work/drmget/pkg/catalog"
	"github.com/glorpus-work/drmget/pkg/download"
	"github.com/glorpus-work/drmget/pkg/manifest"
	"github.com/glorpus-work/drmget/pkg/orchestrator"
	"github.com/glorpus-work/drmget/pkg/suu"
	"github.com/spf13/cobra"
)

type runOptions struct {
	download bool
	dir      string
	grace    time.Duration
	progress string
}

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [COMPONENT...]",
		Short: "Display download links for components",
		Long: `Fetch the catalog and SUU link table and print the download links of
the selected components as a tree. Without arguments every component is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(cmd, args, runOptions{})
		},
	}

	return cmd
}

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	opts := runOptions{download: true}

	cmd := &cobra.Command{
		Use:   "fetch [COMPONENT...]",
		Short: "Download components",
		Long: `Display the download links of the selected components, wait for the
grace period and download every file into the destination directory.
Files that already exist are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Destination directory (defaults to config, then the current directory)")
	cmd.Flags().DurationVar(&opts.grace, "grace", -1, "Wait before downloading (defaults to config)")
	cmd.Flags().StringVar(&opts.progress, "progress", ProgressLog, "Progress display: log or bar")

	cmd.Example = `  # Download the Linux installer and the plugins
  drmget fetch drminstaller-linux plugins

  # Download everything into /srv/drm without waiting
  drmget fetch --dir /srv/drm --grace 0s`

	return cmd
}

func runManifest(cmd *cobra.Command, components []string, opts runOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	if _, err := manifest.Select(components); err != nil {
		return err
	}

	var progress download.Progress = download.NewLogProgress()
	var bars *download.BarProgress
	switch opts.progress {
	case "", ProgressLog:
	case ProgressBar:
		bars = download.NewBarProgress(cmd.ErrOrStderr())
		progress = bars
	default:
		return fmt.Errorf("invalid progress mode %q, must be one of: %s", opts.progress, strings.Join([]string{ProgressLog, ProgressBar}, ", "))
	}

	fetcher, err := newFetcher(cfg, progress)
	if err != nil {
		return err
	}

	dir := opts.dir
	if dir == "" {
		dir = cfg.Settings.DownloadDir
	}
	if dir == "" {
		dir = "."
	}
	grace := cfg.Settings.GracePeriod
	if opts.grace >= 0 {
		grace = opts.grace
	}

	hooks := orchestrator.Hooks{OnEvent: func(e orchestrator.Event) {
		logger.Debug(e.Msg, logger.Fields{"phase": e.Phase, "id": e.ID})
	}}
	orch := orchestrator.New(
		fetcher,
		archive.NewManager(),
		suu.NewScraper(fetcher, cfg.Settings.SUUPageURL),
		cmd.OutOrStdout(),
		hooks,
	)

	outcome, err := orch.Run(cmd.Context(), orchestrator.Request{
		Components:    components,
		Download:      opts.download,
		Dir:           dir,
		GracePeriod:   grace,
		CatalogURL:    cfg.Settings.CatalogURL,
		CatalogMember: cfg.Settings.CatalogMember,
		Render:        catalog.RenderOptions{Color: cfg.Settings.ColorOutput},
	})
	if bars != nil {
		bars.Wait()
	}
	if err != nil {
		return err
	}

	if outcome.Report != nil {
		for _, e := range outcome.Report.Failed() {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s (%s): %v\n", e.Key, e.URL, e.Err)
		}
	}
	return nil
}
