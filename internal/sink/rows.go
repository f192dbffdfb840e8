package sink

import (
	"time"

	"github.com/chrissnell/weldphase/internal/phase"
	"github.com/chrissnell/weldphase/internal/record"
)

// WeldRecord is the row stored by the SQL sinks. Nullable columns are pointers.
type WeldRecord struct {
	ID         uint      `gorm:"primaryKey"`
	RunID      string    `gorm:"column:run_id;size:36;index"`
	RecordedAt time.Time `gorm:"column:recorded_at"`
	SourceFile string    `gorm:"column:source_file"`

	PartNumber          *string `gorm:"column:part_number"`
	ReportDate          *string `gorm:"column:report_date"`
	ReportPartContact   *string `gorm:"column:report_part_contact"`
	ReportPartReduction *string `gorm:"column:report_part_reduction"`
	Flatness1           *string `gorm:"column:flatness_1"`
	Flatness2           *string `gorm:"column:flatness_2"`
	AngleDeviation      *string `gorm:"column:angle_deviation"`

	HeadStartsSpinning   *int64 `gorm:"column:head_starts_spinning"`
	HeadStartsDescending *int64 `gorm:"column:head_starts_descending"`
	HeadStartAscending   *int64 `gorm:"column:head_start_ascending"`
	FirstContact         *int64 `gorm:"column:first_contact"`
	PartContact          *int64 `gorm:"column:part_contact"`
	StartsFixing         *int64 `gorm:"column:starts_fixing"`
	StopsFixing          *int64 `gorm:"column:stops_fixing"`

	Error *string `gorm:"column:error"`
}

// TableName sets the table used by gorm
func (WeldRecord) TableName() string {
	return "weld_records"
}

// NewWeldRecord maps a process record onto a row of run runID
func NewWeldRecord(runID string, recordedAt time.Time, r record.ProcessRecord) WeldRecord {
	m := r.Metadata
	return WeldRecord{
		RunID:      runID,
		RecordedAt: recordedAt,
		SourceFile: r.Source,

		PartNumber:          nullString(m.PartNumber),
		ReportDate:          nullString(m.ReportDate),
		ReportPartContact:   nullString(m.ReportPartContact),
		ReportPartReduction: nullString(m.ReportPartReduction),
		Flatness1:           nullString(m.Flatness1),
		Flatness2:           nullString(m.Flatness2),
		AngleDeviation:      nullString(m.AngleDeviation),

		HeadStartsSpinning:   nullTime(r.HeadStartsSpinning),
		HeadStartsDescending: nullTime(r.HeadStartsDescending),
		HeadStartAscending:   nullTime(r.HeadStartAscending),
		FirstContact:         nullTime(r.FirstContact),
		PartContact:          nullTime(r.PartContact),
		StartsFixing:         nullTime(r.StartsFixing),
		StopsFixing:          nullTime(r.StopsFixing),

		Error: nullString(r.Failure),
	}
}

// values returns the row in weldRecordColumns order, absent values as nil
func (w WeldRecord) values() []any {
	return []any{
		w.RunID, w.RecordedAt.UTC().Format(time.RFC3339Nano), w.SourceFile,
		deref(w.PartNumber), deref(w.ReportDate), deref(w.ReportPartContact), deref(w.ReportPartReduction),
		deref(w.Flatness1), deref(w.Flatness2), deref(w.AngleDeviation),
		deref(w.HeadStartsSpinning), deref(w.HeadStartsDescending), deref(w.HeadStartAscending),
		deref(w.FirstContact), deref(w.PartContact), deref(w.StartsFixing), deref(w.StopsFixing),
		deref(w.Error),
	}
}

// weldRecordColumns lists the inserted columns of weld_records
var weldRecordColumns = []string{
	"run_id", "recorded_at", "source_file",
	"part_number", "report_date", "report_part_contact", "report_part_reduction",
	"flatness_1", "flatness_2", "angle_deviation",
	"head_starts_spinning", "head_starts_descending", "head_start_ascending",
	"first_contact", "part_contact", "starts_fixing", "stops_fixing",
	"error",
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullTime(t phase.Time) *int64 {
	ms, ok := t.Get()
	if !ok {
		return nil
	}
	return &ms
}
