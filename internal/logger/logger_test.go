package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type logEntry map[string]any

func TestLoggerInfoWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log = log.With(map[string]any{"node": "vm", "event": "create"})
	log.Info("invoking operation")

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "invoking operation", entry["msg"])
	require.Equal(t, "vm", entry["node"])
	require.Equal(t, "create", entry["event"])
	require.Equal(t, "info", entry["level"])
}

func TestLoggerDebugRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log.Debug("this should not appear")
	require.Equal(t, "", strings.TrimSpace(buf.String()))
}

func TestLoggerErrorIncludesContext(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "debug", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log = log.With(map[string]any{"node": "vm"})
	log.Error(errors.New("boom"), "operation failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry logEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "operation failed", entry["msg"])
	require.Equal(t, "vm", entry["node"])
	require.Equal(t, "boom", entry["error"])
}

func TestLoggerWith_NilLoggerIsSafe(t *testing.T) {
	var log *Logger
	require.Nil(t, log.With(map[string]any{"a": 1}))
	require.NotPanics(t, func() { log.Info("noop") })
}

func TestNew_InvalidLevelReturnsError(t *testing.T) {
	_, err := New(Options{Level: "not-a-level"})
	require.Error(t, err)
}

func TestNoop_DiscardsOutput(t *testing.T) {
	log := Noop()
	require.NotPanics(t, func() {
		log.Info("anything")
		log.Error(errors.New("boom"), "anything")
	})
}
