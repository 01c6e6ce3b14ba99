package speech

import (
	"context"

	"stagelink/core"
)

// StageSynthesizer routes synthesis through the stage's own speak path,
// letting the presentation layer pick the actual TTS backend. With no
// pre-rendered audio the stage synthesizes (or stays silent).
type StageSynthesizer struct {
	Stage core.Stage
}

func (s StageSynthesizer) Speak(ctx context.Context, u core.Utterance, params core.VoiceParams, onStart, onEnd func()) error {
	if onStart != nil {
		onStart()
	}
	err := s.Stage.Speak(u, nil)
	if onEnd != nil {
		onEnd()
	}
	return err
}
