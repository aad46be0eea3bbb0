package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/glorpus-work/drmget/internal/cli"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    int
	logFile    string
	noColor    bool
	proxy      string
	proxyUser  string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drmget",
		Short: "Retrieve Dell Repository Manager artifacts",
		Long: `drmget lists and downloads the artifacts needed to run Dell Repository
Manager offline:
- DRM installers for Linux and Windows, taken from the DRM catalog
- DRM plugins, de-duplicated by version
- Server Update Utility ISOs, scraped from the SUU download page`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (-v info, -vv debug)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write log records to this file")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().StringVar(&proxy, "proxy", "", "proxy address (host:port or URL)")
	cmd.PersistentFlags().StringVar(&proxyUser, "proxy-user", "", "proxy user name; the password is prompted for")

	// Set up CLI variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.LogFile = &logFile
	cli.NoColor = &noColor
	cli.Proxy = &proxy
	cli.ProxyUser = &proxyUser

	cmd.AddCommand(
		cli.NewShowCmd(),
		cli.NewFetchCmd(),
		cli.NewComponentsCmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
