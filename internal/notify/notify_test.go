package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}

	Success(r, "Question Added Successfully")
	Error(r, "Upload failed")
	Info(r, "Logged out successfully.")

	assert.Equal(t, []string{"Question Added Successfully", "Upload failed", "Logged out successfully."}, r.Messages())

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, LevelInfo, last.Level)

	drained := r.Drain()
	assert.Len(t, drained, 3)
	assert.Empty(t, r.Toasts())
	_, ok = r.Last()
	assert.False(t, ok)
}

func TestNilNotifierIsSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		Success(nil, "x")
		Error(nil, "x")
	})
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	Success(w, "User deleted")
	Error(w, "Could not delete user")

	out := buf.String()
	assert.Contains(t, out, "User deleted")
	assert.Contains(t, out, "Could not delete user")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "success", LevelSuccess.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "info", LevelInfo.String())
}
