package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/rezai-admin/internal/errors"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat(""))
	assert.Equal(t, "json", FormatJSON.String())
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Format: FormatJSON, Output: NewOutput(&buf), ServiceName: "rezai-admin", ServiceVersion: "test"})

	logger.Info("fetched resource", "resource", "users", "count", 3)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "fetched resource", record["msg"])
	assert.Equal(t, "users", record["resource"])
	assert.Equal(t, "rezai-admin", record["service"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Format: FormatText, Output: NewOutput(&buf)})

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
}

func TestWithErrorAddsCodedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Format: FormatJSON, Output: NewOutput(&buf)})

	err := fmt.Errorf("list: %w", errors.NewFetchError("users", fmt.Errorf("connection refused")))
	logger.WithError(err).Error("fetch failed")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "FETCH-001", record["error_code"])
	assert.Equal(t, "connection refused", record["cause"])
}

func TestWithErrorPlain(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Format: FormatText, Output: NewOutput(&buf)})

	logger.WithError(fmt.Errorf("boom")).Warn("oops")
	assert.Contains(t, buf.String(), "error=boom")
	assert.Same(t, logger, logger.WithError(nil))
}

func TestOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rezai-admin.log")
	out, err := OutputFile(path)
	require.NoError(t, err)

	logger := New(Config{Level: LevelInfo, Format: FormatText, Output: out})
	logger.Info("console started")
	require.NoError(t, out.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "console started"))
}

func TestDefaultLoggerIsReplaceable(t *testing.T) {
	original := DefaultLogger()
	t.Cleanup(func() { SetDefaultLogger(original) })

	replacement := Discard()
	SetDefaultLogger(replacement)
	assert.Same(t, replacement, DefaultLogger())
}
