package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
)

// CSVSink writes the report table to a CSV file, one header row and one row per file
type CSVSink struct {
	file *os.File
}

// NewCSVSink creates path for the report
func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV report: %w", err)
	}
	return &CSVSink{file: f}, nil
}

func (s *CSVSink) Name() string {
	return "csv"
}

// Write writes the header and every row of r. Absent values are empty cells.
func (s *CSVSink) Write(_ context.Context, r *Report) error {
	t := r.Table()
	if len(t.Columns) == 0 {
		return nil
	}

	writer := csv.NewWriter(s.file)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(t.StringRows()); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

func (s *CSVSink) Close() error {
	return s.file.Close()
}
