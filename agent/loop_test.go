package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	"cutui/model"
	"cutui/tools"
)

// scriptedAPI returns canned responses in order and records the
// requests it saw.
type scriptedAPI struct {
	responses []*anthropic.Message
	requests  []anthropic.MessageNewParams
	err       error
}

func (s *scriptedAPI) CreateMessage(_ context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	s.requests = append(s.requests, params)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return nil, errors.New("script exhausted")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

// roundTrip re-parses a hand-built message through the SDK's
// UnmarshalJSON so the union accessors (AsAny etc.), which read the
// stored raw JSON, see the fixture's fields.
func roundTrip(m *anthropic.Message) *anthropic.Message {
	data, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	var out anthropic.Message
	if err := out.UnmarshalJSON(data); err != nil {
		panic(err)
	}
	return &out
}

func textResponse(text string) *anthropic.Message {
	return roundTrip(&anthropic.Message{
		Content:    []anthropic.ContentBlockUnion{{Type: "text", Text: text}},
		StopReason: "end_turn",
	})
}

func toolUseResponse(text, id, name string, input string) *anthropic.Message {
	return roundTrip(&anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: text},
			{Type: "tool_use", ID: id, Name: name, Input: json.RawMessage(input)},
		},
		StopReason: "tool_use",
	})
}

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes its message argument" }
func (echoTool) Schema() tools.Schema {
	return tools.Schema{
		Properties: map[string]any{"message": map[string]any{"type": "string"}},
		Required:   []string{"message"},
	}
}
func (echoTool) Run(_ context.Context, input map[string]any) (tools.Result, error) {
	msg, _ := input["message"].(string)
	return tools.Result{Output: msg}, nil
}

func newConvo(t *testing.T) *model.Conversation {
	t.Helper()
	c := model.NewConversation()
	if err := c.Append(model.RoleUser, model.TextBlock{Text: "echo hello"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	return c
}

func TestLoop_TextOnlyEndsAfterOneRound(t *testing.T) {
	api := &scriptedAPI{responses: []*anthropic.Message{textResponse("hi")}}
	loop := &Loop{API: api, Model: "claude-3-5-sonnet-20241022"}
	convo := newConvo(t)

	if err := loop.Run(context.Background(), convo, Callbacks{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	turns := convo.Snapshot()
	if len(turns) != 2 {
		t.Fatalf("turns = %d, want user + assistant", len(turns))
	}
	if turns[1].Role != model.RoleAssistant {
		t.Errorf("turn 1 role = %s", turns[1].Role)
	}
	tb, ok := turns[1].Blocks[0].(model.TextBlock)
	if !ok || tb.Text != "hi" {
		t.Errorf("assistant block = %#v", turns[1].Blocks[0])
	}
	if len(api.requests) != 1 {
		t.Errorf("requests = %d, want 1", len(api.requests))
	}
}

func TestLoop_ToolUseRound(t *testing.T) {
	api := &scriptedAPI{responses: []*anthropic.Message{
		toolUseResponse("Let me echo that.", "tu_1", "echo", `{"message":"hello"}`),
		textResponse("It said hello."),
	}}

	registry := tools.NewRegistry()
	registry.Register(echoTool{})

	var contents []model.Block
	var toolOutputs []model.ToolResultBlock
	var responses []json.RawMessage
	cb := Callbacks{
		OnContent:  func(b model.Block) { contents = append(contents, b) },
		OnResponse: func(raw json.RawMessage) { responses = append(responses, raw) },
		OnToolOutput: func(id string, result model.ToolResultBlock) {
			if id != "tu_1" {
				t.Errorf("tool output id = %q", id)
			}
			toolOutputs = append(toolOutputs, result)
		},
	}

	loop := &Loop{API: api, Model: "claude-3-5-sonnet-20241022", Tools: registry}
	convo := newConvo(t)
	if err := loop.Run(context.Background(), convo, cb); err != nil {
		t.Fatalf("Run: %v", err)
	}

	turns := convo.Snapshot()
	wantRoles := []model.Role{model.RoleUser, model.RoleAssistant, model.RoleTool, model.RoleAssistant}
	if len(turns) != len(wantRoles) {
		t.Fatalf("turns = %d, want %d", len(turns), len(wantRoles))
	}
	for i, want := range wantRoles {
		if turns[i].Role != want {
			t.Errorf("turn %d role = %s, want %s", i, turns[i].Role, want)
		}
	}

	tr, ok := turns[2].Blocks[0].(model.ToolResultBlock)
	if !ok || tr.ToolUseID != "tu_1" || tr.Output != "hello" {
		t.Errorf("tool turn block = %#v", turns[2].Blocks[0])
	}

	// All three sinks fired.
	if len(contents) != 3 {
		t.Errorf("OnContent fired %d times, want 3", len(contents))
	}
	if len(toolOutputs) != 1 || toolOutputs[0].Output != "hello" {
		t.Errorf("OnToolOutput = %+v", toolOutputs)
	}
	if len(responses) != 2 {
		t.Errorf("OnResponse fired %d times, want 2", len(responses))
	}

	// The second request carries the tool round trip.
	if len(api.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(api.requests))
	}
	if n := len(api.requests[1].Messages); n != 3 {
		t.Errorf("second request messages = %d, want 3", n)
	}
}

func TestLoop_UnknownToolBecomesErrorResult(t *testing.T) {
	api := &scriptedAPI{responses: []*anthropic.Message{
		toolUseResponse("Trying.", "tu_1", "nonexistent", `{}`),
		textResponse("That tool is not available."),
	}}

	loop := &Loop{API: api, Model: "m", Tools: tools.NewRegistry()}
	convo := newConvo(t)
	if err := loop.Run(context.Background(), convo, Callbacks{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	turns := convo.Snapshot()
	tr, ok := turns[2].Blocks[0].(model.ToolResultBlock)
	if !ok || tr.Error == "" {
		t.Fatalf("tool turn block = %#v, want an error result", turns[2].Blocks[0])
	}
}

func TestLoop_RequestErrorPropagates(t *testing.T) {
	api := &scriptedAPI{err: errors.New("connection refused")}
	loop := &Loop{API: api, Model: "m"}

	err := loop.Run(context.Background(), newConvo(t), Callbacks{})
	if err == nil {
		t.Fatal("Run succeeded, want the request error")
	}
}

func TestLoop_RequestShape(t *testing.T) {
	api := &scriptedAPI{responses: []*anthropic.Message{textResponse("ok")}}
	registry := tools.NewRegistry()
	registry.Register(echoTool{})

	loop := &Loop{
		API:                api,
		Model:              "claude-3-5-sonnet-20241022",
		SystemPromptSuffix: "Answer in French.",
		Tools:              registry,
		MaxTokens:          512,
	}
	if err := loop.Run(context.Background(), newConvo(t), Callbacks{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	req := api.requests[0]
	if req.Model != "claude-3-5-sonnet-20241022" {
		t.Errorf("model = %s", req.Model)
	}
	if req.MaxTokens != 512 {
		t.Errorf("max tokens = %d", req.MaxTokens)
	}
	if len(req.System) != 1 {
		t.Fatalf("system blocks = %d, want 1", len(req.System))
	}
	if got := req.System[0].Text; !strings.HasSuffix(got, "Answer in French.") {
		t.Errorf("system prompt does not end with the suffix: %q", got)
	}
	if len(req.Tools) != 1 {
		t.Fatalf("tools = %d, want 1", len(req.Tools))
	}
	tool := req.Tools[0].OfTool
	if tool == nil || tool.Name != "echo" {
		t.Errorf("tool param = %+v", req.Tools[0])
	}
}

func TestSystemPrompt(t *testing.T) {
	base := SystemPrompt("")
	if base == "" {
		t.Fatal("empty base prompt")
	}
	with := SystemPrompt("  Extra guidance.  ")
	if !strings.HasSuffix(with, "Extra guidance.") {
		t.Errorf("suffix not appended: %q", with)
	}
	if SystemPrompt("   ") != base {
		t.Error("whitespace-only suffix changed the prompt")
	}
}
