package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// screenshotCommands are tried in order until one is installed. Each
// must accept an output filename as its final argument.
var screenshotCommands = [][]string{
	{"gnome-screenshot", "-f"},
	{"scrot", "-o"},
	{"import", "-window", "root"},
}

// ScreenshotTool captures the current display and returns it as a
// base64 PNG inside the tool result, the shape the transcript layer
// and the image request budget both understand.
type ScreenshotTool struct{}

func (t *ScreenshotTool) Name() string { return "screenshot" }

func (t *ScreenshotTool) Description() string {
	return "Capture a screenshot of the current display."
}

func (t *ScreenshotTool) Schema() Schema {
	return Schema{Properties: map[string]any{}}
}

func (t *ScreenshotTool) Run(ctx context.Context, _ map[string]any) (Result, error) {
	tmpDir, err := os.MkdirTemp("", "cutui-shot-*")
	if err != nil {
		return Result{Error: fmt.Sprintf("could not create capture directory: %v", err)}, nil
	}
	defer os.RemoveAll(tmpDir)
	target := filepath.Join(tmpDir, "screenshot.png")

	var lastErr error
	for _, cmdline := range screenshotCommands {
		if _, err := exec.LookPath(cmdline[0]); err != nil {
			continue
		}
		args := append(append([]string{}, cmdline[1:]...), target)
		if err := exec.CommandContext(ctx, cmdline[0], args...).Run(); err != nil {
			lastErr = err
			continue
		}

		data, err := os.ReadFile(target)
		if err != nil {
			lastErr = err
			continue
		}
		return Result{Base64Image: base64.StdEncoding.EncodeToString(data)}, nil
	}

	if lastErr != nil {
		return Result{Error: fmt.Sprintf("screenshot failed: %v", lastErr)}, nil
	}
	return Result{Error: "no screenshot utility found (tried gnome-screenshot, scrot, import)"}, nil
}
