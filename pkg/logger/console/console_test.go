package console

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleLogger(ConsoleLoggerParams{Writer: &buf})
	c.Debug("hidden")
	c.Info("shown", "nodes", 4)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "nodes=4")

	buf.Reset()
	c = NewConsoleLogger(ConsoleLoggerParams{Writer: &buf, Debug: true})
	c.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleLogger(ConsoleLoggerParams{Writer: &buf, JSON: true, Prefix: "explore"})
	c.Warn("[Session] Load superseded", "generation", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "[Session] Load superseded", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.EqualValues(t, 2, entry["generation"])
}
