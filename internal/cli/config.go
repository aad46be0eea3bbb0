package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/glorpus-work/drmget/internal/logger"
	"github.com/glorpus-work/drmget/pkg/config"
	"github.com/glorpus-work/drmget/pkg/errors"
	"github.com/spf13/cobra"
)

// NewConfigCmd groups the commands that read and edit the drmget settings
// file (catalog location, SUU page, mirrors, proxy, retry and timeouts).
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the drmget settings file",
		Long: `Inspect or edit the YAML settings file drmget reads on start-up.

Keys use the dotted names printed by "drmget config show", for example
catalog_url, mirrors.secondary, proxy.address or grace_period.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print every effective setting",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return printSettings(cmd)
			},
		},
		&cobra.Command{
			Use:     "set KEY VALUE",
			Short:   "Change one setting and write the file",
			Example: "  drmget config set mirrors.secondary https://mirror.example.org\n  drmget config set grace_period 30s",
			Args:    cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				return storeSetting(args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print the effective value of one setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printSetting(cmd, args[0])
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print where the settings file is read from",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), getConfigPath())
				return err
			},
		},
		newConfigInitCmd(),
	)

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file holding the built-in defaults",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return writeDefaultSettings(overwrite)
		},
	}
	cmd.Flags().BoolVar(&overwrite, "force", false, "replace a settings file that already exists")

	return cmd
}

// printSettings writes the flattened settings in config.Keys order.
func printSettings(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	settings := cfg.ToMap()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KEY\tVALUE")
	for _, key := range config.Keys {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", key, settings[key])
	}
	return tw.Flush()
}

func printSetting(cmd *cobra.Command, key string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	value, err := cfg.GetValue(key)
	if err != nil {
		return errors.Wrapf(err, "cannot read setting %q", key)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}

func storeSetting(key, value string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.SetValue(key, value); err != nil {
		return errors.Wrapf(err, "cannot change setting %q", key)
	}

	path := getConfigPath()
	if err := cfg.SaveConfig(path); err != nil {
		return errors.Wrapf(err, "cannot write settings to %s", path)
	}
	logger.Success("setting saved", logger.Fields{"key": key, "value": value, "file": path})
	return nil
}

func writeDefaultSettings(overwrite bool) error {
	path := getConfigPath()
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("settings file %s is already present (use --force to replace it): %w", path, errors.ErrConfigFileExists)
	}

	defaults := config.DefaultConfig()
	if err := defaults.SaveConfig(path); err != nil {
		return errors.Wrapf(err, "cannot write default settings to %s", path)
	}
	logger.Success("settings file written", logger.Fields{"file": path, "catalog_url": defaults.Settings.CatalogURL})
	return nil
}
