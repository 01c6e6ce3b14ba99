package chat

import (
	"context"
	"fmt"
	"strings"

	"stagelink/core"

	"github.com/google/uuid"
)

// ChunkSource yields the decoded text chunks of one model response.
// Stream blocks until the response is finished and invokes onChunk
// sequentially, in arrival order, on the calling goroutine. A non-nil
// error means the stream broke mid-turn.
type ChunkSource interface {
	Stream(ctx context.Context, messages []core.ChatMessage, onChunk func(chunk string)) error
}

// Dispatcher is the ordered speech dispatch capability consumed by the
// handler; see handlers/speech.
type Dispatcher interface {
	Dispatch(ctx context.Context, u core.Utterance, params core.VoiceParams, onStart, onEnd func()) error
}

// TurnResult is the synchronous outcome of one inbound message.
type TurnResult struct {
	TurnID    string
	Processed bool
	// Response is the full assistant text, set when Processed is true.
	Response string
	Err      error
}

// Handler runs one conversational turn at a time: it streams model output,
// segments it into utterances as it arrives, and dispatches each utterance
// for speech in extraction order. A second message while any part of the
// loop is still active is rejected, never queued.
type Handler struct {
	source       ChunkSource
	dispatcher   Dispatcher
	gate         core.BusyGate
	conversation *core.Conversation
	turnActive   *core.Flag
	config       HandlerConfig
	logger       *core.Logger
}

func NewHandler(source ChunkSource, dispatcher Dispatcher, gate core.BusyGate, config HandlerConfig, logger *core.Logger) *Handler {
	if logger == nil {
		logger = core.GetLogger()
	}
	h := &Handler{
		source:       source,
		dispatcher:   dispatcher,
		gate:         gate,
		conversation: core.NewConversation(config.SystemPrompt),
		turnActive:   core.NewFlag(),
		config:       config,
		logger:       logger.With(map[string]interface{}{"component": "chat"}),
	}
	if h.gate.TurnInProgress == nil {
		h.gate.TurnInProgress = h.turnActive
	}
	return h
}

// TurnInProgress exposes the turn flag for external busy checks.
func (h *Handler) TurnInProgress() *core.Flag {
	return h.turnActive
}

// Conversation exposes the message log (for edits and reset).
func (h *Handler) Conversation() *core.Conversation {
	return h.conversation
}

// ProcessMessage runs a full turn for one user message. It returns
// synchronously with Processed=false and core.ErrBusy while a previous
// turn, speech dispatch, or audio playback is still active.
func (h *Handler) ProcessMessage(ctx context.Context, text string) TurnResult {
	if err := h.gate.Check(); err != nil {
		h.logger.Warn("rejecting message", "error", err)
		return TurnResult{Processed: false, Err: err}
	}

	turnID := uuid.New().String()
	logger := h.logger.With(map[string]interface{}{"turn_id": turnID})

	h.turnActive.Set(true)
	defer h.turnActive.Set(false)

	h.conversation.Append(core.RoleUser, text)

	seg := NewSegmenter()
	var full strings.Builder

	streamErr := h.source.Stream(ctx, h.conversation.Messages(), func(chunk string) {
		full.WriteString(chunk)
		for _, u := range seg.Feed(chunk) {
			h.speak(ctx, logger, u)
		}
	})
	if streamErr != nil {
		seg.Close()
		logger.Error("chat stream failed", "error", streamErr)
		return TurnResult{
			TurnID:    turnID,
			Processed: false,
			Err:       fmt.Errorf("chat: stream: %w", streamErr),
		}
	}

	if dropped := seg.Close(); strings.TrimSpace(dropped) != "" {
		// Trailing text without a terminal mark is dropped, not flushed:
		// we would rather lose a malformed fragment than mis-speak it.
		logger.Warn("discarding trailing fragment", "length", len(dropped))
	}

	h.conversation.Append(core.RoleAssistant, full.String())
	return TurnResult{TurnID: turnID, Processed: true, Response: full.String()}
}

// speak dispatches one utterance. Synthesis failure is recovered here so
// the remaining utterances of the turn still get their chance.
func (h *Handler) speak(ctx context.Context, logger *core.Logger, u core.Utterance) {
	u.Text = normalizeForSpeech(u.Text)
	if u.Text == "" {
		return
	}
	err := h.dispatcher.Dispatch(ctx, u, h.config.Voice,
		func() { logger.Debug("playback started", "text", u.Text) },
		func() { logger.Debug("playback ended", "text", u.Text) },
	)
	if err != nil {
		logger.Warn("utterance dispatch failed, continuing", "error", err)
	}
}
