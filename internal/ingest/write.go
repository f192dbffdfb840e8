package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

// unitLabels is written on the row the reader skips after the metadata
var unitLabels = []string{"ms", "um", "rpm", "Ncm", "N"}

// Write emits rec in the machine layout, dividing torque by DefaultTorqueScale
// so that ReadFile recovers the same samples. All four channels must share the
// same timestamps.
func Write(w io.Writer, rec Recording) error {
	return WriteScaled(w, rec, DefaultTorqueScale)
}

// WriteScaled is Write with an explicit torque scale
func WriteScaled(w io.Writer, rec Recording, torqueScale float64) error {
	if torqueScale <= 0 {
		torqueScale = DefaultTorqueScale
	}

	n := rec.Position.Len()
	for _, ch := range []struct {
		name string
		len  int
	}{{Speed, rec.Speed.Len()}, {Torque, rec.Torque.Len()}, {Force, rec.Force.Len()}} {
		if ch.len != n {
			return fmt.Errorf("channel %s has %d samples, position has %d", ch.name, ch.len, n)
		}
	}

	cw := csv.NewWriter(w)

	m := rec.Metadata
	header := [][]string{
		{"", m.PartNumber, "", "", ""},
		{"", m.ReportDate, "", m.Flatness1, ""},
		{"", m.ReportPartContact, "", m.Flatness2, ""},
		{"", m.ReportPartReduction, "", m.AngleDeviation, ""},
		{"", "", "", "", ""},
		unitLabels,
	}
	if err := cw.WriteAll(header); err != nil {
		return fmt.Errorf("failed to write header rows: %w", err)
	}

	row := make([]string, numColumns)
	for i := 0; i < n; i++ {
		t := rec.Position.At(i).Time
		for _, ch := range []struct {
			name string
			time int64
		}{{Speed, rec.Speed.At(i).Time}, {Torque, rec.Torque.At(i).Time}, {Force, rec.Force.At(i).Time}} {
			if ch.time != t {
				return fmt.Errorf("channel %s sample %d is at %d ms, position is at %d ms", ch.name, i, ch.time, t)
			}
		}

		row[ColTime] = strconv.FormatInt(t, 10)
		row[ColPosition] = formatInt(rec.Position.At(i).Value)
		row[ColSpeed] = formatInt(rec.Speed.At(i).Value)
		row[ColTorque] = formatInt(rec.Torque.At(i).Value / torqueScale)
		row[ColForce] = formatInt(rec.Force.At(i).Value)

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write sample %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatInt(v float64) string {
	return strconv.FormatInt(int64(math.Round(v)), 10)
}
