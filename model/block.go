// Package model holds the provider-agnostic conversation core: content
// blocks, turns, the append-only conversation store, the session state,
// and the side-effect archives populated by the agent loop.
//
// The package is deliberately free of SDK and UI imports so that the
// provider, agent, transcript and ui packages can all depend on it
// without cycles.
package model

import "encoding/json"

// Block is one atomic unit of turn content. The set of implementations
// is closed: TextBlock, ToolUseBlock, ToolResultBlock and RawBlock. The
// unexported marker method keeps external packages from adding variants,
// so a switch over Block can be treated as exhaustive.
type Block interface {
	// Kind returns the wire discriminator for the variant ("text",
	// "tool_use", "tool_result", "raw").
	Kind() string

	isBlock()
}

// TextBlock is a plain utterance, produced by either the user or the model.
type TextBlock struct {
	Text string
}

func (TextBlock) Kind() string { return "text" }
func (TextBlock) isBlock()     {}

// ToolUseBlock is the model's structured request to invoke a named tool.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input map[string]any
}

func (ToolUseBlock) Kind() string { return "tool_use" }
func (ToolUseBlock) isBlock()     {}

// ToolResultBlock is the outcome of executing a tool. At most one of
// Output and Error is primary; Base64Image may co-occur with either.
type ToolResultBlock struct {
	ToolUseID   string
	Output      string
	Error       string
	Base64Image string
}

func (ToolResultBlock) Kind() string { return "tool_result" }
func (ToolResultBlock) isBlock()     {}

// RawBlock preserves provider content that did not match any known
// variant. It is never rendered; the transcript projector logs and
// skips it.
type RawBlock struct {
	Payload map[string]any
}

func (RawBlock) Kind() string { return "raw" }
func (RawBlock) isBlock()     {}

// blockEnvelope is the persisted form of a Block. A single flat struct
// with a type discriminator keeps session files human-readable.
type blockEnvelope struct {
	Type        string         `json:"type"`
	Text        string         `json:"text,omitempty"`
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name,omitempty"`
	Input       map[string]any `json:"input,omitempty"`
	ToolUseID   string         `json:"tool_use_id,omitempty"`
	Output      string         `json:"output,omitempty"`
	Error       string         `json:"error,omitempty"`
	Base64Image string         `json:"base64_image,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
}

func envelopeFor(b Block) blockEnvelope {
	switch v := b.(type) {
	case TextBlock:
		return blockEnvelope{Type: v.Kind(), Text: v.Text}
	case ToolUseBlock:
		return blockEnvelope{Type: v.Kind(), ID: v.ID, Name: v.Name, Input: v.Input}
	case ToolResultBlock:
		return blockEnvelope{
			Type:        v.Kind(),
			ToolUseID:   v.ToolUseID,
			Output:      v.Output,
			Error:       v.Error,
			Base64Image: v.Base64Image,
		}
	case RawBlock:
		return blockEnvelope{Type: v.Kind(), Payload: v.Payload}
	default:
		// Unreachable while the union stays sealed.
		return blockEnvelope{Type: "raw"}
	}
}

func (e blockEnvelope) block() Block {
	switch e.Type {
	case "text":
		return TextBlock{Text: e.Text}
	case "tool_use":
		return ToolUseBlock{ID: e.ID, Name: e.Name, Input: e.Input}
	case "tool_result":
		return ToolResultBlock{
			ToolUseID:   e.ToolUseID,
			Output:      e.Output,
			Error:       e.Error,
			Base64Image: e.Base64Image,
		}
	default:
		payload := e.Payload
		if payload == nil {
			payload = map[string]any{"type": e.Type}
		}
		return RawBlock{Payload: payload}
	}
}

// MarshalBlock encodes a single block in its persisted envelope form.
func MarshalBlock(b Block) ([]byte, error) {
	return json.Marshal(envelopeFor(b))
}

// UnmarshalBlock decodes a block envelope. Unrecognized discriminators
// come back as RawBlock rather than an error so old session files stay
// loadable.
func UnmarshalBlock(data []byte) (Block, error) {
	var e blockEnvelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return e.block(), nil
}
