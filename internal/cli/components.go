package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/glorpus-work/drmget/pkg/manifest"
	"github.com/spf13/cobra"
)

// NewComponentsCmd creates the components command.
func NewComponentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "components",
		Short: "List selectable components",
		Long:  "List the component tags accepted by show and fetch",
		Args:  cobra.NoArgs,
		RunE:  runComponents,
	}

	return cmd
}

func runComponents(cmd *cobra.Command, _ []string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "COMPONENT\tSOURCE\tDESCRIPTION")
	for _, r := range manifest.Rules {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Tag, r.Source, r.Description)
	}
	_, _ = fmt.Fprintf(tw, "%s\t-\t%s\n", manifest.DisplayOnly, "Display links without downloading")
	return tw.Flush()
}
