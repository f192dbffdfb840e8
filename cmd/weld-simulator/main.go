// Package main writes synthetic friction weld recordings in the machine's CSV
// layout, for trying out weldphase without a welder.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chrissnell/weldphase/internal/ingest"
	"github.com/chrissnell/weldphase/internal/log"
	"github.com/chrissnell/weldphase/internal/synth"
)

type options struct {
	out      string
	count    int
	noise    float64
	seed     int64
	step     int64
	duration int64
	part     string
	debug    bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "weld-simulator",
		Short:         "Generate synthetic weld recordings",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := log.Init(opts.debug); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer log.Sync()

			paths, err := simulate(opts)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	p := synth.DefaultProfile()
	flags := cmd.Flags()
	flags.StringVarP(&opts.out, "out", "o", "welds", "Directory the recordings are written to")
	flags.IntVarP(&opts.count, "count", "n", 10, "Number of weld cycles")
	flags.Float64Var(&opts.noise, "noise", 0.002, "Gaussian noise, relative to each channel's excursion")
	flags.Int64Var(&opts.seed, "seed", 1, "Seed of the first cycle; cycle i uses seed+i")
	flags.Int64Var(&opts.step, "step", p.Step, "Sample interval in ms")
	flags.Int64Var(&opts.duration, "duration", p.Duration, "Cycle length in ms")
	flags.StringVar(&opts.part, "part", "SYN", "Part number prefix")
	flags.BoolVar(&opts.debug, "debug", false, "Turn on debugging output")

	return cmd
}

// simulate writes opts.count recordings and returns their paths
func simulate(opts *options) ([]string, error) {
	if opts.count < 1 {
		return nil, fmt.Errorf("count must be at least 1, got %d", opts.count)
	}

	p := synth.DefaultProfile()
	p.Noise = opts.noise
	p.Seed = opts.seed
	p.Step = opts.step
	p.Duration = opts.duration
	p.Metadata.PartNumber = opts.part

	recs, err := synth.Batch(p, opts.count)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", opts.out, err)
	}

	paths := make([]string, 0, len(recs))
	for i, rec := range recs {
		path := filepath.Join(opts.out, fmt.Sprintf("weld-%04d.csv", i))
		if err := writeRecording(path, rec); err != nil {
			log.Errorw("failed to write weld recording", "file", path, "error", err)
			return paths, err
		}
		log.Debugw("wrote weld recording", "file", path, "part_number", rec.Metadata.PartNumber, "samples", rec.Force.Len())
		paths = append(paths, path)
	}

	log.Infof("wrote %d weld recordings to %s", len(paths), opts.out)
	return paths, nil
}

func writeRecording(path string, rec ingest.Recording) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ingest.Write(f, rec); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
