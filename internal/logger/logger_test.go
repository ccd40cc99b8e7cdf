package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerWritesTaggedFileEntries(t *testing.T) {
	dir := t.TempDir()
	m := newManager(false, dir, nil)
	require.NotNil(t, m.logFile)

	l := &Logger{zl: m.base.With().Str("tag", "relay").Logger(), tag: "relay"}
	l.With("turn", "t-1").Info("Completed chat turn")
	l.Err(errors.New("boom")).Error("API error")
	l.Debug("hidden at info level")
	require.NoError(t, m.logFile.Close())

	files, err := filepath.Glob(filepath.Join(dir, "relay_log_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `"tag":"relay"`)
	assert.Contains(t, out, `"turn":"t-1"`)
	assert.Contains(t, out, `"message":"Completed chat turn"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"level":"error"`)
	assert.NotContains(t, out, "hidden at info level")
}

func TestSetOutputRedirectsAndRestores(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)

	NewLogger("relay").Err(errors.New("boom")).Error("API error")
	NewLogger("relay").Debug("visible at debug level")
	restore()
	NewLogger("relay").Info("after restore")

	out := buf.String()
	assert.Contains(t, out, `"message":"API error"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, "visible at debug level")
	assert.NotContains(t, out, "after restore")
}

func TestNewLoggerWithoutInit(t *testing.T) {
	l := NewLogger("test")
	assert.Equal(t, "test", l.tag)
	l.Info("works before InitLogger")
}
