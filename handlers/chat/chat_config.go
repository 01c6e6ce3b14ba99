package chat

import "stagelink/core"

// HandlerConfig configures the streaming chat handler.
type HandlerConfig struct {
	// SystemPrompt seeds the conversation log.
	SystemPrompt string
	// Voice is passed through to synthesis for every utterance.
	Voice core.VoiceParams
}

// DefaultHandlerConfig returns a config with sensible defaults.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		SystemPrompt: "You are a friendly character on a live stream. Keep replies short and speakable.",
		Voice:        core.VoiceParams{Speed: 1.0},
	}
}
