package protocol

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// frame is the flat wire shape of every control message. Variant fields
// are all optional; Type selects which ones are meaningful.
type frame struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	Emotion    string `json:"emotion,omitempty"`
	Audio      string `json:"audio,omitempty"`
	Expression string `json:"expression,omitempty"`
	Mode       string `json:"mode,omitempty"`
}

// DecodeCommand parses one inbound frame. Malformed JSON or a missing
// type field is an error; an unrecognized type is NOT: it decodes to
// CmdUnknown carrying the raw bytes, so new server-side commands never
// break older renderers.
func DecodeCommand(data []byte) (Command, error) {
	var f frame
	if err := sonic.Unmarshal(data, &f); err != nil {
		return Command{}, fmt.Errorf("protocol: decode frame: %w", err)
	}
	if f.Type == "" {
		return Command{}, fmt.Errorf("protocol: frame missing type field")
	}

	switch CommandType(f.Type) {
	case CmdSpeak, "startSpeaking":
		return Command{Type: CmdSpeak, Speak: &SpeakCommand{
			Text:    f.Text,
			Emotion: f.Emotion,
			Audio:   f.Audio,
		}}, nil
	case CmdSetExpression, "updateExpression":
		return Command{Type: CmdSetExpression, SetExpression: &SetExpressionCommand{
			Expression: f.Expression,
		}}, nil
	case CmdSetIdle:
		return Command{Type: CmdSetIdle, SetIdle: &SetIdleCommand{Mode: f.Mode}}, nil
	case CmdGetStatus:
		return Command{Type: CmdGetStatus}, nil
	case CmdIdentifyAck:
		return Command{Type: CmdIdentifyAck}, nil
	case CmdInitialState:
		return Command{Type: CmdInitialState}, nil
	default:
		raw := make([]byte, len(data))
		copy(raw, data)
		return Command{Type: CmdUnknown, Raw: raw}, nil
	}
}

// EncodeCommand serializes a Command back to its wire form. Unknown
// commands round-trip through their preserved raw payload.
func EncodeCommand(cmd Command) ([]byte, error) {
	if cmd.Type == CmdUnknown {
		if len(cmd.Raw) == 0 {
			return nil, fmt.Errorf("protocol: unknown command without raw payload")
		}
		out := make([]byte, len(cmd.Raw))
		copy(out, cmd.Raw)
		return out, nil
	}

	f := frame{Type: string(cmd.Type)}
	switch cmd.Type {
	case CmdSpeak:
		if cmd.Speak == nil {
			return nil, fmt.Errorf("protocol: speak command missing payload")
		}
		f.Text = cmd.Speak.Text
		f.Emotion = cmd.Speak.Emotion
		f.Audio = cmd.Speak.Audio
	case CmdSetExpression:
		if cmd.SetExpression == nil {
			return nil, fmt.Errorf("protocol: setExpression command missing payload")
		}
		f.Expression = cmd.SetExpression.Expression
	case CmdSetIdle:
		if cmd.SetIdle == nil {
			return nil, fmt.Errorf("protocol: setIdle command missing payload")
		}
		f.Mode = cmd.SetIdle.Mode
	case CmdGetStatus, CmdIdentifyAck, CmdInitialState:
		// type-only frames
	default:
		return nil, fmt.Errorf("protocol: encode unsupported command type %q", cmd.Type)
	}
	return sonic.Marshal(f)
}

// EncodeIdentify builds the one-shot identification frame.
func EncodeIdentify(role string) ([]byte, error) {
	return sonic.Marshal(Identify{Type: MsgIdentify, Role: role})
}

// EncodeStatus builds a status reply frame.
func EncodeStatus(connected, speaking bool, expression string) ([]byte, error) {
	return sonic.Marshal(Status{
		Type:       MsgStatus,
		Connected:  connected,
		Speaking:   speaking,
		Expression: expression,
	})
}
