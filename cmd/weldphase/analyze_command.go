package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/chrissnell/weldphase/internal/app"
	"github.com/chrissnell/weldphase/internal/log"
	"github.com/chrissnell/weldphase/pkg/config"
)

type analyzeOptions struct {
	workers   int
	extension string
	output    config.OutputData
}

func newAnalyzeCommand(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <dir|file>...",
		Short: "Analyze weld recordings and export the phase report",
		Long: "Analyze every weld recording found in the given directories and files.\n" +
			"With no output configured the report is printed as a table.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)

			application := app.New(cfg, log.GetSugaredLogger(), cmd.OutOrStdout())
			summary, err := application.Run(cmd.Context(), args)

			if summary.Files > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d files analyzed, %d failed, %s read in %s (run %s)\n",
					summary.Files, summary.Failed, humanize.Bytes(uint64(summary.Bytes)),
					summary.Elapsed.Round(time.Millisecond), summary.RunID)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Number of files analyzed in parallel (default from config)")
	flags.StringVar(&opts.extension, "ext", "", "Extension of weld recordings (default from config)")
	flags.StringVar(&opts.output.XLSX, "xlsx", "", "Write the report to this XLSX file")
	flags.StringVar(&opts.output.CSV, "csv", "", "Write the report to this CSV file")
	flags.StringVar(&opts.output.JSON, "json", "", "Write the report to this JSON file")
	flags.StringVar(&opts.output.MsgPack, "msgpack", "", "Write the report to this MessagePack file")
	flags.StringVar(&opts.output.SQLite, "sqlite", "", "Append the records to this SQLite database")
	flags.StringVar(&opts.output.Postgres, "postgres", "", "Append the records to this PostgreSQL database (connection string)")
	flags.StringVar(&opts.output.MetricsTextfile, "metrics-textfile", "", "Write run metrics to this node exporter textfile")
	flags.BoolVar(&opts.output.Table, "table", false, "Print the report as a table")

	return cmd
}

// apply overlays the flags given on the command line onto cfg
func (o *analyzeOptions) apply(cmd *cobra.Command, cfg *config.ConfigData) {
	flags := cmd.Flags()

	if flags.Changed("workers") {
		cfg.Input.Workers = o.workers
	}
	if flags.Changed("ext") {
		cfg.Input.Extension = o.extension
	}

	out := &cfg.Output
	for _, f := range []struct {
		value  string
		target *string
	}{
		{o.output.XLSX, &out.XLSX},
		{o.output.CSV, &out.CSV},
		{o.output.JSON, &out.JSON},
		{o.output.MsgPack, &out.MsgPack},
		{o.output.SQLite, &out.SQLite},
		{o.output.Postgres, &out.Postgres},
		{o.output.MetricsTextfile, &out.MetricsTextfile},
	} {
		if f.value != "" {
			*f.target = f.value
		}
	}
	if flags.Changed("table") {
		out.Table = o.output.Table
	}

	if !hasReportOutput(*out) {
		out.Table = true
	}
}

func hasReportOutput(out config.OutputData) bool {
	return out.XLSX != "" || out.CSV != "" || out.JSON != "" || out.MsgPack != "" ||
		out.SQLite != "" || out.Postgres != "" || out.Table
}
