package model

import (
	"reflect"
	"testing"
)

func TestBlockRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		block Block
	}{
		{"text", TextBlock{Text: "hello"}},
		{"tool use", ToolUseBlock{ID: "tu_1", Name: "bash", Input: map[string]any{"command": "ls -la"}}},
		{"tool result output", ToolResultBlock{ToolUseID: "tu_1", Output: "42"}},
		{"tool result error", ToolResultBlock{ToolUseID: "tu_2", Error: "boom"}},
		{"tool result image", ToolResultBlock{ToolUseID: "tu_3", Base64Image: "aGVsbG8="}},
		{"raw", RawBlock{Payload: map[string]any{"type": "thinking", "thinking": "hmm"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalBlock(tt.block)
			if err != nil {
				t.Fatalf("MarshalBlock: %v", err)
			}
			got, err := UnmarshalBlock(data)
			if err != nil {
				t.Fatalf("UnmarshalBlock: %v", err)
			}
			if !reflect.DeepEqual(got, tt.block) {
				t.Errorf("round trip = %#v, want %#v", got, tt.block)
			}
		})
	}
}

func TestUnmarshalBlock_UnknownType(t *testing.T) {
	got, err := UnmarshalBlock([]byte(`{"type":"server_tool_use","id":"x"}`))
	if err != nil {
		t.Fatalf("UnmarshalBlock: %v", err)
	}
	raw, ok := got.(RawBlock)
	if !ok {
		t.Fatalf("block type = %T, want RawBlock", got)
	}
	if raw.Payload["type"] != "server_tool_use" {
		t.Errorf("payload type = %v, want server_tool_use", raw.Payload["type"])
	}
}

func TestTurnJSONRoundTrip(t *testing.T) {
	turn := Turn{
		Role: RoleAssistant,
		Blocks: []Block{
			TextBlock{Text: "Let me check."},
			ToolUseBlock{ID: "tu_9", Name: "screenshot", Input: map[string]any{}},
		},
	}

	data, err := turn.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var got Turn
	if err := got.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if got.Role != turn.Role {
		t.Errorf("role = %s, want %s", got.Role, turn.Role)
	}
	if len(got.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(got.Blocks))
	}
	if _, ok := got.Blocks[0].(TextBlock); !ok {
		t.Errorf("block 0 type = %T, want TextBlock", got.Blocks[0])
	}
	if _, ok := got.Blocks[1].(ToolUseBlock); !ok {
		t.Errorf("block 1 type = %T, want ToolUseBlock", got.Blocks[1])
	}
}
