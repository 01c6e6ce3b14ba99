package protocol

// CommandType enumerates the control-channel frame types.
type CommandType string

const (
	// Inbound (stage server -> renderer)
	CmdSpeak         CommandType = "speak"
	CmdSetExpression CommandType = "setExpression"
	CmdSetIdle       CommandType = "setIdle"
	CmdGetStatus     CommandType = "getStatus"
	CmdIdentifyAck   CommandType = "identifyAck"
	CmdInitialState  CommandType = "initialState"
	// CmdUnknown marks any frame whose type is not recognized. The raw
	// payload is preserved so forward-compatible handlers can inspect it.
	CmdUnknown CommandType = "unknown"

	// Outbound (renderer -> stage server)
	MsgIdentify CommandType = "identify"
	MsgStatus   CommandType = "status"
)

// Command is the decoded form of one inbound control frame: a closed
// tagged union with exactly one variant payload set, matching Type.
type Command struct {
	Type CommandType

	Speak         *SpeakCommand
	SetExpression *SetExpressionCommand
	SetIdle       *SetIdleCommand

	// Raw holds the undecoded frame for CmdUnknown.
	Raw []byte
}

// SpeakCommand asks the renderer to speak text, optionally with a
// pre-rendered audio reference instead of synthesizing.
type SpeakCommand struct {
	Text    string `json:"text"`
	Emotion string `json:"emotion,omitempty"`
	// Audio is a reference to pre-rendered audio, absolute or relative to
	// the local audio origin.
	Audio string `json:"audio,omitempty"`
}

// SetExpressionCommand applies a named expression to the avatar.
type SetExpressionCommand struct {
	Expression string `json:"expression"`
}

// SetIdleCommand switches the idle animation mode.
type SetIdleCommand struct {
	Mode string `json:"mode,omitempty"`
}

// Identify is sent once per successful connection, before any other
// outbound traffic, declaring this client's role to the stage server.
type Identify struct {
	Type CommandType `json:"type"`
	Role string      `json:"role"`
}

// Status is the reply to a getStatus command.
type Status struct {
	Type       CommandType `json:"type"`
	Connected  bool        `json:"connected"`
	Speaking   bool        `json:"speaking"`
	Expression string      `json:"expression"`
}
