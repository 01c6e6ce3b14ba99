package speech

import (
	"context"
	"fmt"
	"sync"

	"stagelink/core"
)

// Synthesizer is the external synthesis/playback capability. Speak blocks
// until playback finished (or failed); onStart fires when audible output
// actually begins, onEnd when it completes. Either callback may be nil.
type Synthesizer interface {
	Speak(ctx context.Context, u core.Utterance, params core.VoiceParams, onStart, onEnd func()) error
}

// Dispatcher serializes utterance playback. Callers issue dispatches in
// extraction order; the single in-flight slot guarantees a later utterance
// never becomes audible before an earlier one finished, no matter how
// synthesis latency varies.
type Dispatcher struct {
	synth    Synthesizer
	speaking *core.Flag
	inflight sync.Mutex
	logger   *core.Logger
}

func NewDispatcher(synth Synthesizer, logger *core.Logger) *Dispatcher {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Dispatcher{
		synth:    synth,
		speaking: core.NewFlag(),
		logger:   logger.With(map[string]interface{}{"component": "speech"}),
	}
}

// Speaking exposes the dispatch-active flag. It is true from the moment a
// dispatch is issued until its synthesis/playback settles, success or not.
func (d *Dispatcher) Speaking() *core.Flag {
	return d.speaking
}

// Dispatch sends one utterance to synthesis and waits for playback to
// settle. The speaking flag is cleared on every exit path so a synthesis
// failure can never leave it stuck true.
func (d *Dispatcher) Dispatch(ctx context.Context, u core.Utterance, params core.VoiceParams, onStart, onEnd func()) error {
	d.inflight.Lock()
	defer d.inflight.Unlock()

	d.speaking.Set(true)
	defer d.speaking.Set(false)

	if err := d.synth.Speak(ctx, u, params, onStart, onEnd); err != nil {
		d.logger.Warn("synthesis failed", "text", u.Text, "error", err)
		return fmt.Errorf("speech: synthesize %q: %w", u.Text, err)
	}
	return nil
}
