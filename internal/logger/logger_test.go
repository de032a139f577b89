package logger

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		json      bool
		debug     bool
		wantDebug bool
	}{
		{name: "console info", json: false, debug: false, wantDebug: false},
		{name: "json debug", json: true, debug: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.json, tt.debug)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, l.Core().Enabled(zapcore.DebugLevel))
			assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestNew_WritesToStderr(t *testing.T) {
	stdout, readStdout := redirect(t, &os.Stdout)
	stderr, readStderr := redirect(t, &os.Stderr)

	l, err := New(true, false)
	require.NoError(t, err)
	l.Info("hello")
	_ = l.Sync()
	stdout.Close()
	stderr.Close()

	assert.Empty(t, readStdout())
	assert.Contains(t, readStderr(), `"msg":"hello"`)
}

// redirect swaps *f for a pipe until the test ends and returns the write end
// plus a func that reads everything written to it.
func redirect(t *testing.T, f **os.File) (*os.File, func() string) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	old := *f
	*f = w
	t.Cleanup(func() {
		*f = old
		r.Close()
	})
	return w, func() string {
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		return string(data)
	}
}
