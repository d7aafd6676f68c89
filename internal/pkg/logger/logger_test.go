package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestComponentLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Format: FormatJSON, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: "info", Format: FormatText}) })

	l := Component("repository")
	l.Info().Str("collection", "students").Msg("created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "repository", line["component"])
	assert.Equal(t, "students", line["collection"])
	assert.Equal(t, "created", line["message"])
}
