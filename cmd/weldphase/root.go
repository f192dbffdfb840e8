package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrissnell/weldphase/internal/log"
	"github.com/chrissnell/weldphase/pkg/config"
)

type rootOptions struct {
	cfgFile    string
	cfgBackend string
	debug      bool
	logFile    string
}

func (o *rootOptions) config() (*config.ConfigData, error) {
	return loadConfig(o.cfgFile, o.cfgBackend)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "weldphase",
		Short:         "Detect process phases in friction weld recordings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := log.InitWithFile(opts.debug, opts.logFile); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.cfgFile, "config", "c", "", "Path to configuration source (YAML file or SQLite database); built-in defaults when empty")
	flags.StringVar(&opts.cfgBackend, "config-backend", "yaml", "Configuration backend type: 'yaml' or 'sqlite'")
	flags.BoolVar(&opts.debug, "debug", false, "Turn on debugging output")
	flags.StringVar(&opts.logFile, "log-file", "", "Also write JSON logs to this file, rotated by size")

	rootCmd.AddCommand(newAnalyzeCommand(opts))
	rootCmd.AddCommand(newConfigCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "weldphase %s\n", version)
		},
	}
}
