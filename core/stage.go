package core

// Utterance is one speakable fragment extracted from the streaming text,
// together with the directive active at extraction time. It is consumed
// exactly once and never persisted.
type Utterance struct {
	// Tag is the running annotation (e.g. an emotion name) applied by the
	// most recent bracketed directive, empty when none has been seen.
	Tag string
	// Text is the sentence content, already normalized for speech.
	Text string
}

// VoiceParams are the synthesis parameters passed through to the
// text-to-speech capability.
type VoiceParams struct {
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
	Pitch float64 `json:"pitch,omitempty"`
}

// Stage is the presentation layer: the collaborator that renders the
// avatar, plays audio, and shows expressions. Rendering itself lives
// outside this module; everything here talks to it through this interface.
type Stage interface {
	// Speak plays an utterance. When audio is non-nil it holds pre-rendered
	// PCM to play as-is; when nil the stage synthesizes (or stays silent).
	Speak(u Utterance, audio []byte) error
	// SetExpression applies a resolved expression name.
	SetExpression(name string) error
	// SetIdle switches the idle behavior mode.
	SetIdle(mode string) error
}

// NopStage discards every effect. It stands in for a real renderer and
// still owns the audio-playing flag so the busy gate has something to read.
type NopStage struct {
	Playing *Flag
	logger  *Logger
}

func NewNopStage(logger *Logger) *NopStage {
	if logger == nil {
		logger = GetLogger()
	}
	return &NopStage{
		Playing: NewFlag(),
		logger:  logger.With(map[string]interface{}{"component": "stage"}),
	}
}

func (s *NopStage) Speak(u Utterance, audio []byte) error {
	s.logger.Debug("speak", "tag", u.Tag, "text", u.Text, "prerendered", audio != nil)
	return nil
}

func (s *NopStage) SetExpression(name string) error {
	s.logger.Debug("set expression", "name", name)
	return nil
}

func (s *NopStage) SetIdle(mode string) error {
	s.logger.Debug("set idle", "mode", mode)
	return nil
}
