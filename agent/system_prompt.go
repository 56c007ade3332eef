package agent

import "strings"

// baseSystemPrompt frames the assistant as a computer-use agent with
// the built-in tools. The user can append their own instructions via
// the configurable suffix.
const baseSystemPrompt = `You are an assistant with access to tools on the user's machine.
* You can run shell commands with the bash tool and inspect the display with the screenshot tool.
* After running a command that changes what is on screen, take a screenshot to verify the result.
* When a command produces a very large amount of output, prefer filtering it (grep, head, tail) over dumping it all.
* If a tool fails, read the error, adjust, and try again rather than repeating the same call.`

// SystemPrompt combines the base prompt with the user's custom suffix.
func SystemPrompt(suffix string) string {
	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		return baseSystemPrompt
	}
	return baseSystemPrompt + "\n\n" + suffix
}
