package sink

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the report
const SheetName = "report"

// XLSXSink writes the report as a spreadsheet: one header row, one row per
// weld file. Timestamps are stored as numbers, absent values as empty cells.
type XLSXSink struct {
	path string
}

// NewXLSXSink writes to path
func NewXLSXSink(path string) *XLSXSink {
	return &XLSXSink{path: path}
}

func (s *XLSXSink) Name() string {
	return "xlsx"
}

func (s *XLSXSink) Write(_ context.Context, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	t := r.Table()
	for col, name := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(SheetName, cell, name); err != nil {
			return fmt.Errorf("failed to write header %s: %w", name, err)
		}
	}

	for i, row := range t.Rows {
		for col, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if len(t.Columns) > 0 {
		if err := f.SetPanes(SheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header row: %w", err)
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.path, err)
	}
	return nil
}

func (s *XLSXSink) Close() error {
	return nil
}
