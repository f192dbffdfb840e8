package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/weldphase/internal/batch"
	"github.com/chrissnell/weldphase/internal/ingest"
	"github.com/chrissnell/weldphase/internal/sink"
	"github.com/chrissnell/weldphase/pkg/config"
)

// ErrNoInput is returned when the inputs hold no weld files
var ErrNoInput = errors.New("no weld files found")

// App represents one analysis run of the command line tool
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
	stdout io.Writer
}

// New creates a new application instance. The terminal table sink writes to stdout.
func New(cfg *config.ConfigData, logger *zap.SugaredLogger, stdout io.Writer) *App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		stdout: stdout,
	}
}

// Run analyzes every weld file found in inputs and exports the report to the
// configured sinks. A SIGINT or SIGTERM stops scheduling new files; the records
// collected so far are still exported.
func (a *App) Run(ctx context.Context, inputs []string) (batch.Summary, error) {
	if err := a.cfg.Validate(); err != nil {
		return batch.Summary{}, fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case <-sigs:
			a.logger.Info("shutdown signal received, finishing files in flight...")
			cancel()
		case <-ctx.Done():
		}
	}()

	paths, err := Collect(inputs, a.cfg.Input.Extension)
	if err != nil {
		return batch.Summary{}, err
	}
	if len(paths) == 0 {
		return batch.Summary{}, fmt.Errorf("%w with extension %q in %v", ErrNoInput, a.cfg.Input.Extension, inputs)
	}

	// Open the sinks before the run so an unwritable output fails fast
	sinks, err := sink.NewManager(a.cfg.Output, a.stdout, a.logger)
	if err != nil {
		return batch.Summary{}, err
	}

	runner := batch.New(a.cfg, a.logger, nil)
	agg, summary, runErr := runner.Run(ctx, paths)

	rep := sink.NewReport(runner.RunID(), summary.Finished, agg)
	writeErr := sinks.Write(context.WithoutCancel(ctx), rep)
	closeErr := sinks.Close()

	var metricsErr error
	if path := a.cfg.Output.MetricsTextfile; path != "" {
		if metricsErr = runner.Metrics().WriteTextfile(path); metricsErr == nil {
			a.logger.Debugw("metrics written", "path", path)
		}
	}

	return summary, errors.Join(runErr, writeErr, closeErr, metricsErr)
}

// Collect expands inputs into weld file paths. Directories are searched
// recursively for files with extension ext; files are taken as given. A path
// named twice is returned once.
func Collect(inputs []string, ext string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("cannot open input: %w", err)
		}

		if !info.IsDir() {
			add(in)
			continue
		}

		found, err := ingest.Discover(in, ext)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}

	return paths, nil
}
