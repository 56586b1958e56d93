package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "warn", "json")
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Uint64("asset_id", 3).Msg("shown")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, float64(3), entry["asset_id"])
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}

func TestNewWithWriter_Errors(t *testing.T) {
	var buf bytes.Buffer

	_, err := NewWithWriter(&buf, "loud", "json")
	assert.Error(t, err)

	_, err = NewWithWriter(&buf, "info", "xml")
	assert.Error(t, err)

	_, err = NewWithWriter(&buf, "INFO", "Console")
	assert.NoError(t, err)
}
