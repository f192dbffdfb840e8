// Package report accumulates process records from many weld files into one table.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/chrissnell/weldphase/internal/record"
)

// Aggregator is an ordered, append-only collection of process records.
// Append is safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	records []record.ProcessRecord
}

// NewAggregator creates an empty Aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Append adds r after every record appended so far
func (a *Aggregator) Append(r record.ProcessRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.records = append(a.records, r)
}

// Len returns the number of records
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.records)
}

// Records returns a copy of the records in insertion order
func (a *Aggregator) Records() []record.ProcessRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]record.ProcessRecord, len(a.records))
	copy(out, a.records)
	return out
}

// SortBySource orders the records by source path. Used after a parallel run so
// the row order does not depend on worker scheduling.
func (a *Aggregator) SortBySource() {
	a.mu.Lock()
	defer a.mu.Unlock()

	sort.SliceStable(a.records, func(i, j int) bool {
		return a.records[i].Source < a.records[j].Source
	})
}

// Table is the flattened report. Columns is the union of field names across all
// records in first-seen order; a nil cell is an absent value.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Table flattens the records into one row per record. Records with different
// field sets are unified by the union of their field names.
func (a *Aggregator) Table() Table {
	records := a.Records()

	var columns []string
	position := make(map[string]int)
	rowFields := make([][]record.Field, len(records))

	for i, r := range records {
		rowFields[i] = r.Fields()
		for _, f := range rowFields[i] {
			if _, seen := position[f.Name]; !seen {
				position[f.Name] = len(columns)
				columns = append(columns, f.Name)
			}
		}
	}

	rows := make([][]any, len(records))
	for i, fields := range rowFields {
		row := make([]any, len(columns))
		for _, f := range fields {
			row[position[f.Name]] = f.Value
		}
		rows[i] = row
	}

	return Table{Columns: columns, Rows: rows}
}

// Column returns the index of name in t.Columns, or -1
func (t Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// StringRows renders every cell as text, absent cells as empty strings
func (t Table) StringRows() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = FormatCell(v)
		}
		out[i] = cells
	}
	return out
}

// FormatCell renders a single table value
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
