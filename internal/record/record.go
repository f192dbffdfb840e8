// Package record fuses per-file metadata, the named phases of the speed, force
// and position channels and the torque contact rules into one report row.
package record

import (
	"github.com/chrissnell/weldphase/internal/phase"
)

// Report column names
const (
	FieldSource              = "source_file"
	FieldPartNumber          = "part_number"
	FieldReportDate          = "report_date"
	FieldReportPartContact   = "report_part_contact"
	FieldReportPartReduction = "report_part_reduction"
	FieldFlatness1           = "flatness_1"
	FieldFlatness2           = "flatness_2"
	FieldAngleDeviation      = "angle_deviation"
	FieldHeadStartsSpinning  = "head_starts_spinning"
	FieldHeadStartsDesc      = "head_starts_descending"
	FieldHeadStartAscending  = "head_start_ascending"
	FieldFirstContact        = "first_contact"
	FieldPartContact         = "part_contact"
	FieldStartsFixing        = "starts_fixing"
	FieldStopsFixing         = "stops_fixing"
	FieldError               = "error"
)

// Metadata is the quality data stored in the header rows of a weld file.
// Empty strings are treated as absent.
type Metadata struct {
	PartNumber          string `json:"part_number,omitempty"`
	ReportDate          string `json:"report_date,omitempty"`
	ReportPartContact   string `json:"report_part_contact,omitempty"`
	ReportPartReduction string `json:"report_part_reduction,omitempty"`
	Flatness1           string `json:"flatness_1,omitempty"`
	Flatness2           string `json:"flatness_2,omitempty"`
	AngleDeviation      string `json:"angle_deviation,omitempty"`
}

// ProcessRecord is one report row per weld file. It is built once and never mutated.
type ProcessRecord struct {
	Source   string
	Metadata Metadata

	HeadStartsSpinning   phase.Time
	HeadStartsDescending phase.Time
	HeadStartAscending   phase.Time
	FirstContact         phase.Time
	PartContact          phase.Time
	StartsFixing         phase.Time
	StopsFixing          phase.Time

	// Failure holds the reason the file could not be analyzed, if any
	Failure string
}

// Field is a named report value. A nil Value means the field is absent.
type Field struct {
	Name  string
	Value any
}

// Build fuses the inputs of one weld file into a ProcessRecord. Absent phases
// and absent torque crossings are carried through as absent fields.
func Build(source string, meta Metadata, speed, force, position phase.Mapping, contact, fullContact phase.Time) ProcessRecord {
	return ProcessRecord{
		Source:               source,
		Metadata:             meta,
		HeadStartsSpinning:   speed.Get(phase.SpeedStartsSpinning),
		HeadStartsDescending: position.Get(phase.PositionAscending),
		HeadStartAscending:   position.Get(phase.PositionDescending),
		FirstContact:         contact,
		PartContact:          fullContact,
		StartsFixing:         position.Get(phase.PositionStabilizes),
		StopsFixing:          force.Get(phase.ForceFalling),
	}
}

// Failed returns a record for a file that could not be parsed. Metadata that was
// recovered before the failure is kept, every analytic field is absent.
func Failed(source string, meta Metadata, reason string) ProcessRecord {
	return ProcessRecord{
		Source:   source,
		Metadata: meta,
		Failure:  reason,
	}
}

// Fields returns the record as ordered report fields
func (r ProcessRecord) Fields() []Field {
	fields := []Field{
		{FieldSource, optionalString(r.Source)},
		{FieldPartNumber, optionalString(r.Metadata.PartNumber)},
		{FieldReportDate, optionalString(r.Metadata.ReportDate)},
		{FieldReportPartContact, optionalString(r.Metadata.ReportPartContact)},
		{FieldReportPartReduction, optionalString(r.Metadata.ReportPartReduction)},
		{FieldFlatness1, optionalString(r.Metadata.Flatness1)},
		{FieldFlatness2, optionalString(r.Metadata.Flatness2)},
		{FieldAngleDeviation, optionalString(r.Metadata.AngleDeviation)},
		{FieldHeadStartsSpinning, r.HeadStartsSpinning.Value()},
		{FieldHeadStartsDesc, r.HeadStartsDescending.Value()},
		{FieldHeadStartAscending, r.HeadStartAscending.Value()},
		{FieldFirstContact, r.FirstContact.Value()},
		{FieldPartContact, r.PartContact.Value()},
		{FieldStartsFixing, r.StartsFixing.Value()},
		{FieldStopsFixing, r.StopsFixing.Value()},
	}

	if r.Failure != "" {
		fields = append(fields, Field{FieldError, r.Failure})
	}

	return fields
}

// Phases returns the phase fields by column name
func (r ProcessRecord) Phases() map[string]phase.Time {
	return map[string]phase.Time{
		FieldHeadStartsSpinning: r.HeadStartsSpinning,
		FieldHeadStartsDesc:     r.HeadStartsDescending,
		FieldHeadStartAscending: r.HeadStartAscending,
		FieldFirstContact:       r.FirstContact,
		FieldPartContact:        r.PartContact,
		FieldStartsFixing:       r.StartsFixing,
		FieldStopsFixing:        r.StopsFixing,
	}
}

func optionalString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
