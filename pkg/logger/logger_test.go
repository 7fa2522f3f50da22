package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesConsoleAndFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "clinic.log")

	log := NewLogger(&Config{
		Level:   DebugLevel,
		Output:  &buf,
		NoColor: true,
		File:    FileConfig{Enabled: true, Path: path, MaxSizeMB: 1},
	}).WithFields(map[string]interface{}{"action_id": "a-1"})

	log.Info("visit saved", "visit_id", 7)
	log.Error(errors.New("boom"), "store failure")

	out := buf.String()
	assert.Contains(t, out, "visit saved")
	assert.Contains(t, out, "visit_id=7")
	assert.Contains(t, out, "action_id=a-1")
	assert.Contains(t, out, "boom")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"visit saved"`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{Level: WarnLevel, Output: &buf, NoColor: true})

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("bogus"))
}
