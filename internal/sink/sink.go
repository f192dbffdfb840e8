// Package sink exports a finished report to spreadsheets, delimited text,
// encoded documents and SQL databases.
package sink

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chrissnell/weldphase/internal/record"
	"github.com/chrissnell/weldphase/internal/report"
)

// Sink is a report destination
type Sink interface {
	Name() string
	Write(ctx context.Context, r *Report) error
	Close() error
}

// Report is the immutable result of a batch run as seen by the sinks
type Report struct {
	RunID     uuid.UUID
	CreatedAt time.Time

	records []record.ProcessRecord
	table   report.Table
}

// NewReport snapshots agg. Later appends to agg are not reflected.
func NewReport(runID uuid.UUID, createdAt time.Time, agg *report.Aggregator) *Report {
	return &Report{
		RunID:     runID,
		CreatedAt: createdAt,
		records:   agg.Records(),
		table:     agg.Table(),
	}
}

// Records returns the report's records in row order
func (r *Report) Records() []record.ProcessRecord {
	out := make([]record.ProcessRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Table returns the flattened report
func (r *Report) Table() report.Table {
	return r.table
}
