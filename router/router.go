package router

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"stagelink/core"
	"stagelink/protocol"
	audioutil "stagelink/utils/audio"
)

// StatusSender is the outbound half of the control channel used for
// status replies.
type StatusSender interface {
	Send(frame []byte)
	IsConnected() bool
}

// Config configures the command router.
type Config struct {
	// AudioOrigin is the fixed local origin that relative audio
	// references are resolved against.
	AudioOrigin string
	// FetchTimeout bounds one audio reference fetch.
	FetchTimeout time.Duration
}

// DefaultConfig returns router defaults matching the local stage server.
func DefaultConfig() Config {
	return Config{
		AudioOrigin:  "http://127.0.0.1:12393",
		FetchTimeout: 10 * time.Second,
	}
}

// Router maps each decoded command onto exactly one effect against the
// stage. It is registered as a command handler on the control channel.
type Router struct {
	stage    core.Stage
	sender   StatusSender
	speaking core.BoolSource
	config   Config
	httpc    *http.Client
	logger   *core.Logger

	mu         sync.Mutex
	expression string
}

func New(stage core.Stage, sender StatusSender, speaking core.BoolSource, config Config, logger *core.Logger) *Router {
	if logger == nil {
		logger = core.GetLogger()
	}
	if config.AudioOrigin == "" {
		config.AudioOrigin = DefaultConfig().AudioOrigin
	}
	if config.FetchTimeout == 0 {
		config.FetchTimeout = DefaultConfig().FetchTimeout
	}
	return &Router{
		stage:      stage,
		sender:     sender,
		speaking:   speaking,
		config:     config,
		httpc:      &http.Client{Timeout: config.FetchTimeout},
		logger:     logger.With(map[string]interface{}{"component": "router"}),
		expression: DefaultExpression,
	}
}

// Expression reports the expression currently applied to the stage.
func (r *Router) Expression() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.expression
}

// Handle routes one command. It never returns an error and never panics
// outward; every failure is logged and absorbed here.
func (r *Router) Handle(cmd protocol.Command) {
	switch cmd.Type {
	case protocol.CmdSpeak:
		r.handleSpeak(cmd.Speak)
	case protocol.CmdSetExpression:
		r.handleSetExpression(cmd.SetExpression)
	case protocol.CmdSetIdle:
		// Accepted and acknowledged; idle behavior lives in the stage.
		r.logger.Debug("idle mode requested", "mode", cmd.SetIdle.Mode)
		if err := r.stage.SetIdle(cmd.SetIdle.Mode); err != nil {
			r.logger.Warn("set idle failed", "error", err)
		}
	case protocol.CmdGetStatus:
		r.handleGetStatus()
	case protocol.CmdIdentifyAck, protocol.CmdInitialState:
		// Handshake acknowledgements.
	default:
		r.logger.Warn("unknown command", "type", string(cmd.Type))
	}
}

func (r *Router) handleSpeak(cmd *protocol.SpeakCommand) {
	u := core.Utterance{Tag: cmd.Emotion, Text: cmd.Text}

	var audio []byte
	if cmd.Audio != "" {
		fetched, err := r.fetchAudio(cmd.Audio)
		if err != nil {
			// Fall back to the synthesized/silent speak path.
			r.logger.Warn("audio fetch failed, speaking without prerendered audio", "ref", cmd.Audio, "error", err)
		} else {
			audio = fetched
		}
	}

	if err := r.stage.Speak(u, audio); err != nil {
		r.logger.Warn("stage speak failed", "error", err)
	}
}

func (r *Router) handleSetExpression(cmd *protocol.SetExpressionCommand) {
	resolved := ResolveExpression(cmd.Expression)
	r.mu.Lock()
	r.expression = resolved
	r.mu.Unlock()

	if err := r.stage.SetExpression(resolved); err != nil {
		r.logger.Warn("set expression failed", "name", resolved, "error", err)
	}
}

func (r *Router) handleGetStatus() {
	frame, err := protocol.EncodeStatus(r.sender.IsConnected(), r.speaking.Get(), r.Expression())
	if err != nil {
		r.logger.Warn("encoding status reply failed", "error", err)
		return
	}
	r.sender.Send(frame)
}

// fetchAudio resolves the reference against the audio origin and fetches
// the bytes, expanding telephony codecs to PCM when recognized.
func (r *Router) fetchAudio(ref string) ([]byte, error) {
	url := ref
	if !strings.Contains(ref, "://") {
		url = strings.TrimSuffix(r.config.AudioOrigin, "/") + "/" + strings.TrimPrefix(ref, "/")
	}

	resp, err := r.httpc.Get(url)
	if err != nil {
		return nil, fmt.Errorf("router: fetch %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("router: fetch %q: unexpected status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("router: fetch %q: read body: %w", url, err)
	}
	return audioutil.DecodeForPlayback(data, resp.Header.Get("Content-Type"), ref), nil
}
