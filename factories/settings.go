package factories

import (
	"encoding/json"
	"fmt"
	"os"

	"stagelink/core"
)

// LLMConfig selects and tunes the upstream chat model. The API key is
// never stored here; it comes from the environment.
type LLMConfig struct {
	Model       string  `json:"model,omitempty"`
	BaseURL     string  `json:"base_url,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
}

// SettingsConfig is the top-level config loaded from settings.json.
type SettingsConfig struct {
	// ControlURL is the stage server's control endpoint.
	ControlURL string `json:"control_url,omitempty"`
	// Role announced in the identification frame.
	Role string `json:"role,omitempty"`
	// AudioOrigin is the base address for relative audio references.
	AudioOrigin string `json:"audio_origin,omitempty"`
	// SystemPrompt seeds the conversation log.
	SystemPrompt string `json:"system_prompt,omitempty"`

	LLM   LLMConfig        `json:"llm"`
	Voice core.VoiceParams `json:"voice"`
}

// DefaultSettingsConfig returns a SettingsConfig pre-filled with the
// local stage server defaults.
func DefaultSettingsConfig() SettingsConfig {
	return SettingsConfig{
		ControlURL:  "ws://127.0.0.1:12393/client-ws",
		Role:        "renderer",
		AudioOrigin: "http://127.0.0.1:12393",
		Voice:       core.VoiceParams{Speed: 1.0},
	}
}

// SettingsConfigFromJSON parses a JSON blob into a SettingsConfig,
// filling unset fields from the defaults.
func SettingsConfigFromJSON(data []byte) (SettingsConfig, error) {
	cfg := DefaultSettingsConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SettingsConfig{}, fmt.Errorf("settings: %w", err)
	}
	return cfg, nil
}

// SettingsConfigFromFile loads settings from a JSON file.
func SettingsConfigFromFile(path string) (SettingsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SettingsConfig{}, fmt.Errorf("settings: read %q: %w", path, err)
	}
	return SettingsConfigFromJSON(data)
}
