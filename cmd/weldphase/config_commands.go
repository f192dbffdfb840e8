package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chrissnell/weldphase/pkg/config"
)

func newConfigCommand(root *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(root))
	configCmd.AddCommand(newConfigConvertCommand())

	return configCmd
}

func newConfigShowCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			data, err := config.MarshalYAML(cfg)
			if err != nil {
				return fmt.Errorf("failed to render configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigConvertCommand() *cobra.Command {
	var (
		yamlFile   string
		sqliteFile string
		force      bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a YAML configuration into a SQLite configuration database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			// Check if YAML file exists
			if _, err := os.Stat(yamlFile); os.IsNotExist(err) {
				return fmt.Errorf("YAML file does not exist: %s", yamlFile)
			}

			// Check if SQLite file already exists
			if _, err := os.Stat(sqliteFile); err == nil && !force {
				return fmt.Errorf("SQLite file already exists: %s (use --force to overwrite or choose a different filename)", sqliteFile)
			}

			fmt.Fprintf(out, "Converting YAML configuration to SQLite...\n")
			fmt.Fprintf(out, "  Source: %s\n", yamlFile)
			fmt.Fprintf(out, "  Target: %s\n", sqliteFile)

			configData, err := config.NewYAMLProvider(yamlFile).LoadConfig()
			if err != nil {
				return fmt.Errorf("error loading YAML configuration: %w", err)
			}
			if err := configData.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if dryRun {
				data, err := config.MarshalYAML(configData)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "DRY RUN - configuration that would be stored:\n%s", data)
				return nil
			}

			// Remove existing SQLite file if force is specified
			if force {
				if err := os.Remove(sqliteFile); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("error removing existing SQLite file: %w", err)
				}
			}

			if err := os.MkdirAll(filepath.Dir(sqliteFile), 0o755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

			provider, err := config.NewSQLiteProvider(sqliteFile)
			if err != nil {
				return fmt.Errorf("failed to create SQLite provider: %w", err)
			}
			defer provider.Close()

			if err := provider.SaveConfig(configData); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Fprintf(out, "Conversion completed successfully!\n")
			fmt.Fprintf(out, "You can now use the SQLite backend with: --config-backend sqlite --config %s\n", sqliteFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&yamlFile, "yaml", "", "Path to YAML configuration file (required)")
	cmd.Flags().StringVar(&sqliteFile, "sqlite", "", "Path to SQLite database file (required)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing SQLite database")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	cmd.MarkFlagRequired("yaml")
	cmd.MarkFlagRequired("sqlite")

	return cmd
}
