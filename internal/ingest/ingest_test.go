package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/weldphase/internal/changepoint"
	"github.com/chrissnell/weldphase/internal/record"
)

const machineFile = `,P-4711,,,
,2024-03-12,,0.12,
,850,,0.08,
,1.2,,0.5,
,,,,
ms,um,rpm,Ncm,N
0,5000,0,0,0
10,4990,120,5,2
20,4980,,7,3
30,4970,240,12.0,4
40,4960,360,150,900
`

func TestReadMachineLayout(t *testing.T) {
	rec, err := Read(strings.NewReader(machineFile))
	require.NoError(t, err)

	assert.Equal(t, record.Metadata{
		PartNumber:          "P-4711",
		ReportDate:          "2024-03-12",
		ReportPartContact:   "850",
		ReportPartReduction: "1.2",
		Flatness1:           "0.12",
		Flatness2:           "0.08",
		AngleDeviation:      "0.5",
	}, rec.Metadata)

	// The row at 20 ms has an empty speed cell and is dropped from every channel
	assert.Equal(t, []int64{0, 10, 30, 40}, rec.Position.Times())
	assert.Equal(t, []float64{5000, 4990, 4970, 4960}, rec.Position.Values())
	assert.Equal(t, []float64{0, 120, 240, 360}, rec.Speed.Values())
	assert.Equal(t, []float64{0, 50, 120, 1500}, rec.Torque.Values(), "torque is scaled to N·mm")
	assert.Equal(t, []float64{0, 2, 4, 900}, rec.Force.Values())
	assert.Equal(t, Torque, rec.Torque.Name)
	assert.Equal(t, int64(len(machineFile)), rec.Bytes)
}

func TestReaderTorqueScale(t *testing.T) {
	rec, err := NewReader(1).Read(strings.NewReader(machineFile))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 5, 12, 150}, rec.Torque.Values())

	assert.Equal(t, float64(DefaultTorqueScale), NewReader(0).TorqueScale)
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name string
		rows string
	}{
		{name: "text sample", rows: "0,1,2,3,4\n10,abc,2,3,4\n"},
		{name: "fractional sample", rows: "0,1,2,3,4\n10,1.5,2,3,4\n"},
		{name: "too many columns", rows: "0,1,2,3,4,5\n"},
		{name: "time goes backwards", rows: "10,1,2,3,4\n5,1,2,3,4\n"},
		{name: "repeated time", rows: "10,1,2,3,4\n10,1,2,3,4\n"},
		{name: "unterminated quote", rows: "0,\"1,2,3,4\n"},
	}

	header := strings.Join(strings.SplitAfterN(machineFile, "\n", 7)[:6], "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Read(strings.NewReader(header + tt.rows))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedInput)
			assert.Equal(t, "P-4711", rec.Metadata.PartNumber, "metadata survives a malformed body")
		})
	}
}

func TestReadEmptyBody(t *testing.T) {
	rec, err := Read(strings.NewReader(",P-1,,,\n"))
	require.NoError(t, err)
	assert.Equal(t, "P-1", rec.Metadata.PartNumber)
	assert.Zero(t, rec.Position.Len())
	assert.Empty(t, rec.Metadata.Flatness1)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weld.csv")
	require.NoError(t, os.WriteFile(path, []byte(machineFile), 0o644))

	rec, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, rec.Source)
	assert.Equal(t, 4, rec.Force.Len())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedInput)
}

func mustChannel(t *testing.T, name string, times []int64, values []float64) changepoint.Channel {
	t.Helper()
	samples := make([]changepoint.Sample, len(times))
	for i := range times {
		samples[i] = changepoint.Sample{Time: times[i], Value: values[i]}
	}
	ch, err := changepoint.NewChannel(name, samples)
	require.NoError(t, err)
	return ch
}

func TestWriteRoundTrip(t *testing.T) {
	times := []int64{0, 5, 10, 15}
	rec := Recording{
		Metadata: record.Metadata{PartNumber: "A,1", ReportDate: "2024-01-01", AngleDeviation: "0.3"},
		Position: mustChannel(t, Position, times, []float64{100, 90, 80, 70}),
		Speed:    mustChannel(t, Speed, times, []float64{0, 500, 1000, 1000}),
		Torque:   mustChannel(t, Torque, times, []float64{0, 10, 2000, 4000}),
		Force:    mustChannel(t, Force, times, []float64{1, 2, 3, 4}),
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rec))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, rec.Metadata, got.Metadata)
	assert.Equal(t, times, got.Force.Times())
	assert.Equal(t, rec.Position.Values(), got.Position.Values())
	assert.Equal(t, rec.Speed.Values(), got.Speed.Values())
	assert.Equal(t, rec.Torque.Values(), got.Torque.Values())
	assert.Equal(t, rec.Force.Values(), got.Force.Values())
}

func TestWriteMismatchedChannels(t *testing.T) {
	rec := Recording{
		Position: mustChannel(t, Position, []int64{0, 1}, []float64{1, 2}),
		Speed:    mustChannel(t, Speed, []int64{0}, []float64{1}),
		Torque:   mustChannel(t, Torque, []int64{0, 1}, []float64{1, 2}),
		Force:    mustChannel(t, Force, []int64{0, 1}, []float64{1, 2}),
	}
	assert.Error(t, Write(&bytes.Buffer{}, rec))

	rec.Speed = mustChannel(t, Speed, []int64{0, 2}, []float64{1, 2})
	assert.Error(t, Write(&bytes.Buffer{}, rec))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	files := []string{
		"b.csv",
		"a.CSV",
		"notes.txt",
		filepath.Join("line2", "c.csv"),
		filepath.Join("line2", "deep", "d.csv"),
	}
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir.csv"), 0o755))

	paths, err := Discover(root, "csv")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.CSV"),
		filepath.Join(root, "b.csv"),
		filepath.Join(root, "line2", "c.csv"),
		filepath.Join(root, "line2", "deep", "d.csv"),
	}, paths)

	paths, err = Discover(root, ".txt")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "notes.txt")}, paths)

	_, err = Discover(filepath.Join(root, "missing"), "csv")
	assert.Error(t, err)
}
