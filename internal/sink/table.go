package sink

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/chrissnell/weldphase/internal/record"
	"github.com/chrissnell/weldphase/internal/report"
)

// TableFormat selects how a TableSink renders the report
type TableFormat int

const (
	FormatBox TableFormat = iota
	FormatMarkdown
)

// numericColumns are right-aligned in box and markdown output
var numericColumns = map[string]bool{
	record.FieldHeadStartsSpinning: true,
	record.FieldHeadStartsDesc:     true,
	record.FieldHeadStartAscending: true,
	record.FieldFirstContact:       true,
	record.FieldPartContact:        true,
	record.FieldStartsFixing:       true,
	record.FieldStopsFixing:        true,
}

// TableSink renders the report as a box or markdown table
type TableSink struct {
	name   string
	w      io.Writer
	format TableFormat
}

// NewTerminalSink writes a rounded box table to w
func NewTerminalSink(w io.Writer, format TableFormat) *TableSink {
	return &TableSink{name: "table", w: w, format: format}
}

func (s *TableSink) Name() string {
	return s.name
}

func (s *TableSink) Write(_ context.Context, r *Report) error {
	out := renderTable(r.Table(), s.format)
	if out == "" {
		return nil
	}
	if _, err := io.WriteString(s.w, out+"\n"); err != nil {
		return fmt.Errorf("failed to write %s report: %w", s.name, err)
	}
	return nil
}

func (s *TableSink) Close() error {
	return nil
}

func renderTable(t report.Table, format TableFormat) string {
	columns := len(t.Columns)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, c := range t.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)

	for _, row := range t.StringRows() {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			r[i] = row[i]
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i, c := range t.Columns {
		align := text.AlignLeft
		if numericColumns[c] {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	switch format {
	case FormatMarkdown:
		return tw.RenderMarkdown()
	default:
		return tw.Render()
	}
}
