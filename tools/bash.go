package tools

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// defaultBashTimeout bounds a single command so a hung process cannot
// stall the agent loop forever.
const defaultBashTimeout = 60 * time.Second

// BashTool runs a shell command and returns its combined output. Each
// invocation is an independent shell; no state carries over between
// commands.
type BashTool struct {
	Timeout time.Duration
}

func (t *BashTool) Name() string { return "bash" }

func (t *BashTool) Description() string {
	return "Run a bash command on the local machine and return its combined stdout and stderr."
}

func (t *BashTool) Schema() Schema {
	return Schema{
		Properties: map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "The bash command to run.",
			},
		},
		Required: []string{"command"},
	}
}

func (t *BashTool) Run(ctx context.Context, input map[string]any) (Result, error) {
	command, err := stringArg(input, "command")
	if err != nil {
		return Result{Error: err.Error()}, nil
	}

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = defaultBashTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "bash", "-c", command).CombinedOutput()
	output := strings.TrimRight(string(out), "\n")

	if ctx.Err() == context.DeadlineExceeded {
		return Result{Error: "command timed out: " + command}, nil
	}
	if err != nil {
		msg := err.Error()
		if output != "" {
			msg = output + "\n" + msg
		}
		return Result{Error: msg}, nil
	}
	return Result{Output: output}, nil
}
