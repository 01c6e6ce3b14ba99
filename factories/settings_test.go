package factories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsConfigFromJSONFillsDefaults(t *testing.T) {
	cfg, err := SettingsConfigFromJSON([]byte(`{"control_url":"ws://example:9000/ws","llm":{"model":"gpt-4o"}}`))
	require.NoError(t, err)
	assert.Equal(t, "ws://example:9000/ws", cfg.ControlURL)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	// Unset fields keep the defaults.
	assert.Equal(t, "renderer", cfg.Role)
	assert.Equal(t, "http://127.0.0.1:12393", cfg.AudioOrigin)
	assert.Equal(t, 1.0, cfg.Voice.Speed)
}

func TestSettingsConfigFromJSONRejectsMalformed(t *testing.T) {
	_, err := SettingsConfigFromJSON([]byte(`{broken`))
	assert.Error(t, err)
}

func TestSettingsConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"role":"overlay"}`), 0o644))

	cfg, err := SettingsConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "overlay", cfg.Role)

	_, err = SettingsConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
