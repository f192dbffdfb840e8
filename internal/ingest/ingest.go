// Package ingest reads and writes weld recordings in the CSV layout exported by
// the welding machine: no header, five columns (Time, Position, Speed, Torque,
// Force), quality metadata in the first rows and integer samples after that.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/chrissnell/weldphase/internal/changepoint"
	"github.com/chrissnell/weldphase/internal/record"
)

// ErrMalformedInput is wrapped by every error caused by the content of a file
var ErrMalformedInput = errors.New("malformed weld recording")

// Column positions in a recording
const (
	ColTime = iota
	ColPosition
	ColSpeed
	ColTorque
	ColForce

	numColumns
)

// Channel names
const (
	Position = "position"
	Speed    = "speed"
	Torque   = "torque"
	Force    = "force"
)

// metadataRows holds the quality data; unitRow carries no samples either
const (
	metadataRows = 4
	unitRow      = 5
)

// DefaultTorqueScale converts the torque column from N·cm to N·mm
const DefaultTorqueScale = 10

// Recording is one parsed weld cycle
type Recording struct {
	Source   string
	Metadata record.Metadata

	Position changepoint.Channel
	Speed    changepoint.Channel
	Torque   changepoint.Channel
	Force    changepoint.Channel

	// Bytes is the size of the parsed input
	Bytes int64
}

// Reader parses recordings
type Reader struct {
	// TorqueScale multiplies every torque sample
	TorqueScale float64
}

// NewReader returns a Reader that scales torque by torqueScale. A non-positive
// scale falls back to DefaultTorqueScale.
func NewReader(torqueScale float64) *Reader {
	if torqueScale <= 0 {
		torqueScale = DefaultTorqueScale
	}
	return &Reader{TorqueScale: torqueScale}
}

// ReadFile parses the recording at path with the default torque scale
func ReadFile(path string) (Recording, error) {
	return NewReader(DefaultTorqueScale).ReadFile(path)
}

// Read parses a recording with the default torque scale
func Read(in io.Reader) (Recording, error) {
	return NewReader(DefaultTorqueScale).Read(in)
}

// ReadFile parses the recording stored at path
func (r *Reader) ReadFile(path string) (Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return Recording{Source: path}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rec, err := r.Read(f)
	rec.Source = path
	if err != nil {
		return rec, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// Read parses a recording from in. On a malformed file the returned Recording
// still carries the metadata that was recovered before the failure.
func (r *Reader) Read(in io.Reader) (Recording, error) {
	counter := &countingReader{r: in}

	cr := csv.NewReader(counter)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var (
		rec     Recording
		samples [numColumns][]changepoint.Sample
	)

	for row := 0; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rec, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		if len(fields) > numColumns {
			return rec, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformedInput, row+1, len(fields), numColumns)
		}

		if row < metadataRows {
			readMetadata(&rec.Metadata, row, fields)
			continue
		}
		if row == unitRow || !complete(fields) {
			continue
		}

		var values [numColumns]int64
		for col := range values {
			v, err := parseInt(fields[col])
			if err != nil {
				return rec, fmt.Errorf("%w: row %d column %d: %v", ErrMalformedInput, row+1, col+1, err)
			}
			values[col] = v
		}

		t := values[ColTime]
		for col := ColPosition; col < numColumns; col++ {
			v := float64(values[col])
			if col == ColTorque {
				v *= r.TorqueScale
			}
			samples[col] = append(samples[col], changepoint.Sample{Time: t, Value: v})
		}
	}

	rec.Bytes = counter.n

	var err error
	if rec.Position, err = channel(Position, samples[ColPosition]); err != nil {
		return rec, err
	}
	if rec.Speed, err = channel(Speed, samples[ColSpeed]); err != nil {
		return rec, err
	}
	if rec.Torque, err = channel(Torque, samples[ColTorque]); err != nil {
		return rec, err
	}
	if rec.Force, err = channel(Force, samples[ColForce]); err != nil {
		return rec, err
	}

	return rec, nil
}

func readMetadata(m *record.Metadata, row int, fields []string) {
	cell := func(col int) string {
		if col < len(fields) {
			return strings.TrimSpace(fields[col])
		}
		return ""
	}

	switch row {
	case 0:
		m.PartNumber = cell(ColPosition)
	case 1:
		m.ReportDate = cell(ColPosition)
		m.Flatness1 = cell(ColTorque)
	case 2:
		m.ReportPartContact = cell(ColPosition)
		m.Flatness2 = cell(ColTorque)
	case 3:
		m.ReportPartReduction = cell(ColPosition)
		m.AngleDeviation = cell(ColTorque)
	}
}

func channel(name string, samples []changepoint.Sample) (changepoint.Channel, error) {
	ch, err := changepoint.NewChannel(name, samples)
	if err != nil {
		return changepoint.Channel{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return ch, nil
}

// complete reports whether the row has a non-empty cell in every column
func complete(fields []string) bool {
	if len(fields) < numColumns {
		return false
	}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// parseInt accepts integers and integral decimals such as "12.0"
func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int64(f), nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
