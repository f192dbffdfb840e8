package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/chrissnell/weldphase/pkg/config"
)

// Manager holds the configured sinks and fans a finished report out to all of them
type Manager struct {
	Sinks  []Sink
	logger *zap.SugaredLogger
}

// NewManager creates a Manager populated with every sink enabled in out. The
// terminal table is written to stdout.
func NewManager(out config.OutputData, stdout io.Writer, logger *zap.SugaredLogger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	m := &Manager{logger: logger}

	// Check the output configuration for the supported sinks and enable them if found
	targets := []struct {
		name    string
		enabled bool
	}{
		{"xlsx", out.XLSX != ""},
		{"csv", out.CSV != ""},
		{"json", out.JSON != ""},
		{"msgpack", out.MsgPack != ""},
		{"sqlite", out.SQLite != ""},
		{"postgres", out.Postgres != ""},
		{"table", out.Table},
	}

	for _, t := range targets {
		if !t.enabled {
			continue
		}
		if err := m.AddSink(t.name, out, stdout); err != nil {
			m.Close()
			return nil, fmt.Errorf("could not add %s sink: %w", t.name, err)
		}
	}

	return m, nil
}

// AddSink adds the sink called name, configured from out
func (m *Manager) AddSink(name string, out config.OutputData, stdout io.Writer) error {
	var (
		s   Sink
		err error
	)

	switch name {
	case "xlsx":
		s = NewXLSXSink(out.XLSX)
	case "csv":
		s, err = NewCSVSink(out.CSV)
	case "json":
		s, err = NewEncodedSink(out.JSON, EncodingJSON)
	case "msgpack":
		s, err = NewEncodedSink(out.MsgPack, EncodingMsgPack)
	case "sqlite":
		s, err = NewSQLiteSink(out.SQLite)
	case "postgres":
		s, err = NewPostgresSink(out.Postgres)
	case "table":
		s = NewTerminalSink(stdout, FormatBox)
	default:
		return fmt.Errorf("unknown sink %q", name)
	}
	if err != nil {
		return err
	}

	m.Sinks = append(m.Sinks, s)
	return nil
}

// Write hands r to every sink concurrently and waits for all of them. A failing
// sink does not stop the others; their errors are joined.
func (m *Manager) Write(ctx context.Context, r *Report) error {
	if len(m.Sinks) == 0 {
		m.logger.Warn("no outputs configured, report discarded")
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, len(m.Sinks))

	for i, s := range m.Sinks {
		i, s := i, s
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Write(ctx, r); err != nil {
				m.logger.Errorw("report export failed", "sink", s.Name(), "error", err)
				errs[i] = fmt.Errorf("%s: %w", s.Name(), err)
				return
			}
			m.logger.Debugw("report exported", "sink", s.Name(), "records", len(r.records))
		}()
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Close closes every sink
func (m *Manager) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
