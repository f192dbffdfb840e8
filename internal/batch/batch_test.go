package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chrissnell/weldphase/internal/ingest"
	"github.com/chrissnell/weldphase/internal/metrics"
	"github.com/chrissnell/weldphase/internal/phase"
	"github.com/chrissnell/weldphase/internal/record"
	"github.com/chrissnell/weldphase/internal/synth"
	"github.com/chrissnell/weldphase/pkg/config"
)

func writeWelds(t *testing.T, dir string, n int) []string {
	t.Helper()

	recs, err := synth.Batch(synth.DefaultProfile(), n)
	require.NoError(t, err)

	paths := make([]string, n)
	for i, rec := range recs {
		paths[i] = filepath.Join(dir, fmt.Sprintf("weld-%03d.csv", i))
		f, err := os.Create(paths[i])
		require.NoError(t, err)
		require.NoError(t, ingest.Write(f, rec))
		require.NoError(t, f.Close())
	}
	return paths
}

func assertFiles(t *testing.T, m *metrics.Metrics, samples ...string) {
	t.Helper()
	expected := "# HELP weldphase_files_total Weld files processed, by outcome.\n" +
		"# TYPE weldphase_files_total counter\n" +
		strings.Join(samples, "\n") + "\n"
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "weldphase_files_total"))
}

func testConfig(workers int) *config.ConfigData {
	cfg := config.Defaults()
	cfg.Input.Workers = workers
	return cfg
}

func TestRunCollectsEveryFileInSourceOrder(t *testing.T) {
	dir := t.TempDir()
	paths := writeWelds(t, dir, 12)

	// Schedule in reverse to make sure ordering comes from the sort
	reversed := make([]string, len(paths))
	for i, p := range paths {
		reversed[len(paths)-1-i] = p
	}

	m := metrics.New()
	runner := New(testConfig(4), nil, m)
	agg, summary, err := runner.Run(context.Background(), reversed)
	require.NoError(t, err)

	recs := agg.Records()
	require.Len(t, recs, 12)
	for i, rec := range recs {
		assert.Equal(t, paths[i], rec.Source)
		assert.Empty(t, rec.Failure)
		assert.Equal(t, fmt.Sprintf("SYN-0001-%04d", i+1), rec.Metadata.PartNumber)
		assert.Equal(t, phase.At(802), rec.FirstContact, rec.Source)
	}

	assert.Equal(t, runner.RunID(), summary.RunID)
	assert.Equal(t, 12, summary.Files)
	assert.Zero(t, summary.Failed)
	assert.Positive(t, summary.Bytes)
	assertFiles(t, m, `weldphase_files_total{status="analyzed"} 12`)
}

func TestRunTurnsBadFilesIntoFailureRecords(t *testing.T) {
	dir := t.TempDir()
	paths := writeWelds(t, dir, 2)

	malformed := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(malformed, []byte(",P-9,,,\n,,,,\n,,,,\n,,,,\n0,1,2,3,4\nms,um,rpm,Ncm,N\n10,x,2,3,4\n"), 0o644))
	missing := filepath.Join(dir, "gone.csv")

	core, logs := observer.New(zapcore.WarnLevel)
	m := metrics.New()
	runner := New(testConfig(2), zap.New(core).Sugar(), m)

	agg, summary, err := runner.Run(context.Background(), append(paths, malformed, missing))
	require.NoError(t, err, "bad files never fail the run")

	assert.Equal(t, 4, summary.Files)
	assert.Equal(t, 2, summary.Failed)

	recs := agg.Records()
	require.Len(t, recs, 4)
	bad := recs[0]
	assert.Equal(t, malformed, bad.Source)
	assert.Equal(t, "P-9", bad.Metadata.PartNumber)
	assert.Contains(t, bad.Failure, "malformed")
	assert.False(t, bad.FirstContact.Valid)

	assert.Equal(t, missing, recs[1].Source)
	assert.NotEmpty(t, recs[1].Failure)

	table := agg.Table()
	assert.Equal(t, record.FieldError, table.Columns[len(table.Columns)-1])

	assert.Equal(t, 2, logs.FilterMessage("skipping weld file").Len())
	assertFiles(t, m,
		`weldphase_files_total{status="analyzed"} 2`,
		`weldphase_files_total{status="malformed"} 1`,
		`weldphase_files_total{status="unreadable"} 1`,
	)
}

func TestRunCancelled(t *testing.T) {
	paths := writeWelds(t, t.TempDir(), 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg, _, err := New(testConfig(1), nil, nil).Run(ctx, paths)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, agg.Len(), len(paths))
}

func TestRunEmpty(t *testing.T) {
	agg, summary, err := New(testConfig(3), nil, nil).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, agg.Len())
	assert.Zero(t, summary.Files)
}
