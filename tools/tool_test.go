package tools

import (
	"context"
	"testing"
)

type staticTool struct {
	name   string
	result Result
}

func (t staticTool) Name() string        { return t.name }
func (t staticTool) Description() string { return "static test tool" }
func (t staticTool) Schema() Schema      { return Schema{Properties: map[string]any{}} }
func (t staticTool) Run(context.Context, map[string]any) (Result, error) {
	return t.result, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(staticTool{name: "bash"})
	r.Register(staticTool{name: "screenshot"})

	if _, ok := r.Get("bash"); !ok {
		t.Error("Get(bash) missing")
	}
	if _, ok := r.Get("nope"); ok {
		t.Error("Get of unregistered tool reported ok")
	}

	all := r.All()
	if len(all) != 2 || all[0].Name() != "bash" || all[1].Name() != "screenshot" {
		t.Errorf("All order = %v", names(all))
	}

	// Re-registering replaces in place without changing position.
	r.Register(staticTool{name: "bash", result: Result{Output: "v2"}})
	all = r.All()
	if len(all) != 2 || all[0].Name() != "bash" {
		t.Errorf("All after re-register = %v", names(all))
	}
	res, _ := all[0].Run(context.Background(), nil)
	if res.Output != "v2" {
		t.Errorf("re-registered tool output = %q, want v2", res.Output)
	}
}

func names(ts []Tool) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name()
	}
	return out
}

func TestResultBlock(t *testing.T) {
	b := Result{Output: "ok", Base64Image: "aGk="}.Block("tu_1")
	if b.ToolUseID != "tu_1" || b.Output != "ok" || b.Base64Image != "aGk=" {
		t.Errorf("Block = %+v", b)
	}
}

func TestStringArg(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    string
		wantErr bool
	}{
		{"present", map[string]any{"command": "ls"}, "ls", false},
		{"missing", map[string]any{}, "", true},
		{"wrong type", map[string]any{"command": 7}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stringArg(tt.input, "command")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
