package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLoggerHidesDebugByDefault(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, false, false)
	require.NoError(t, err)

	l.Debugw("hidden", "key", "value")
	l.Infow("flattened", "records", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "flattened")
	assert.Contains(t, out, "records")
}

func TestVerboseLoggerShowsDebug(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, true, false)
	require.NoError(t, err)

	l.Debugw("erased", "key", "ILayer")
	assert.Contains(t, buf.String(), "erased")
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, false, true)
	require.NoError(t, err)

	l.Warnw("formatter failed", "engine", "prettier")
	assert.Contains(t, buf.String(), `"msg":"formatter failed"`)
	assert.Contains(t, buf.String(), `"engine":"prettier"`)
}
