package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoCFWritesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, "json", "info")
	t.Cleanup(func() { Configure(os.Stderr, "console", "info") })

	InfoCF("webchat", "started", map[string]interface{}{"addr": "0.0.0.0:8000"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "webchat", entry["component"])
	assert.Equal(t, "0.0.0.0:8000", entry["addr"])
	assert.Equal(t, "started", entry["message"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, "json", "warn")
	t.Cleanup(func() { Configure(os.Stderr, "console", "info") })

	DebugCF("engine", "hidden", nil)
	InfoCF("engine", "hidden too", nil)
	assert.Empty(t, buf.String())

	WarnCF("engine", "shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestDefaultLoggerStartsAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "json")
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())

	l.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}
