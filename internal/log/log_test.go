package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weldphase.log")

	require.NoError(t, InitWithFile(true, path))
	Debugw("analyzed weld file", "file", "weld-0001.csv")
	Infof("wrote %d records", 3)
	Errorw("failed to write weld recording", "file", "weld-0002.csv")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"analyzed weld file"`)
	assert.Contains(t, string(data), `"file":"weld-0001.csv"`)
	assert.Contains(t, string(data), `"msg":"wrote 3 records"`)
	assert.Contains(t, string(data), `"msg":"failed to write weld recording"`)
}

func TestFileLevelFollowsDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weldphase.log")

	require.NoError(t, InitWithFile(false, path))
	Debugw("hidden")
	Infow("shown")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestGetSugaredLoggerFallback(t *testing.T) {
	log, baseLogger = nil, nil
	assert.NotNil(t, GetSugaredLogger())
	assert.NotNil(t, GetZapLogger())
}
