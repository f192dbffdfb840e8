package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/weldphase/internal/changepoint"
	"github.com/chrissnell/weldphase/internal/phase"
)

func mapping(names []string, times ...int64) phase.Mapping {
	cps := make([]changepoint.ChangePoint, len(times))
	for i, ts := range times {
		cps[i] = changepoint.ChangePoint{Time: ts, Rank: i}
	}
	return phase.Assign(cps, names)
}

var testMeta = Metadata{
	PartNumber:          "A-1002",
	ReportDate:          "2024-03-11",
	ReportPartContact:   "12.5",
	ReportPartReduction: "1.9",
	Flatness1:           "0.02",
	Flatness2:           "0.03",
	AngleDeviation:      "0.1",
}

func TestBuild(t *testing.T) {
	speed := mapping(phase.SpeedPhases, 100, 400, 2600, 3000)
	force := mapping(phase.ForcePhases, 900, 1500, 2400, 2800)
	position := mapping(phase.PositionPhases, 300, 950, 1200, 2700)

	r := Build("welds/a.csv", testMeta, speed, force, position, phase.At(910), phase.At(1010))

	assert.Equal(t, "welds/a.csv", r.Source)
	assert.Equal(t, testMeta, r.Metadata)
	assert.Equal(t, phase.At(100), r.HeadStartsSpinning)
	assert.Equal(t, phase.At(300), r.HeadStartsDescending)
	assert.Equal(t, phase.At(2700), r.HeadStartAscending)
	assert.Equal(t, phase.At(910), r.FirstContact)
	assert.Equal(t, phase.At(1010), r.PartContact)
	assert.Equal(t, phase.At(1200), r.StartsFixing)
	assert.Equal(t, phase.At(2400), r.StopsFixing)
	assert.Empty(t, r.Failure)
}

func TestBuildWithMissingPhases(t *testing.T) {
	speed := mapping(phase.SpeedPhases, 100)
	force := mapping(phase.ForcePhases, 900, 1500)
	position := mapping(phase.PositionPhases, 300, 950, 1200)

	r := Build("b.csv", Metadata{}, speed, force, position, phase.Absent, phase.Absent)

	assert.Equal(t, phase.At(100), r.HeadStartsSpinning)
	assert.Equal(t, phase.At(1200), r.StartsFixing)
	assert.False(t, r.HeadStartAscending.Valid)
	assert.False(t, r.StopsFixing.Valid)
	assert.False(t, r.FirstContact.Valid)
	assert.False(t, r.PartContact.Valid)
}

func TestFields(t *testing.T) {
	speed := mapping(phase.SpeedPhases, 100, 400)
	force := mapping(phase.ForcePhases, 900)
	position := mapping(phase.PositionPhases, 300, 950, 1200, 2700)

	r := Build("a.csv", testMeta, speed, force, position, phase.At(910), phase.Absent)
	fields := r.Fields()

	names := make([]string, len(fields))
	values := make(map[string]any, len(fields))
	for i, f := range fields {
		names[i] = f.Name
		values[f.Name] = f.Value
	}

	assert.Equal(t, []string{
		FieldSource, FieldPartNumber, FieldReportDate, FieldReportPartContact,
		FieldReportPartReduction, FieldFlatness1, FieldFlatness2, FieldAngleDeviation,
		FieldHeadStartsSpinning, FieldHeadStartsDesc, FieldHeadStartAscending,
		FieldFirstContact, FieldPartContact, FieldStartsFixing, FieldStopsFixing,
	}, names)

	assert.Equal(t, "a.csv", values[FieldSource])
	assert.Equal(t, "A-1002", values[FieldPartNumber])
	assert.Equal(t, int64(100), values[FieldHeadStartsSpinning])
	assert.Equal(t, int64(910), values[FieldFirstContact])
	assert.Nil(t, values[FieldPartContact])
	assert.Nil(t, values[FieldStopsFixing])
}

func TestFailed(t *testing.T) {
	r := Failed("broken.csv", Metadata{PartNumber: "X-9"}, "row 7: not a number")

	fields := r.Fields()
	require.Equal(t, FieldError, fields[len(fields)-1].Name)
	assert.Equal(t, "row 7: not a number", fields[len(fields)-1].Value)

	for _, tm := range r.Phases() {
		assert.False(t, tm.Valid)
	}
	for _, f := range fields {
		switch f.Name {
		case FieldSource, FieldPartNumber, FieldError:
			assert.NotNil(t, f.Value, f.Name)
		default:
			assert.Nil(t, f.Value, f.Name)
		}
	}
}
