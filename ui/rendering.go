package ui

import (
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/mattn/go-runewidth"

	"cutui/transcript"
)

// renderPairs formats the projected transcript for the viewport: user
// utterances on the left under a "You" label, assistant/tool output
// indented under an "Assistant" label with markdown rendering.
func renderPairs(pairs []transcript.Pair, width int) string {
	if len(pairs) == 0 {
		return DimStyle.Render("No messages yet. Type below and press Enter to start.")
	}

	var sb strings.Builder
	for i, pair := range pairs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		switch {
		case pair.User != nil:
			sb.WriteString(UserStyle.Render("You"))
			sb.WriteByte('\n')
			sb.WriteString(pair.User.Text)
			sb.WriteByte('\n')
		case pair.Assistant != nil:
			sb.WriteString(AssistantStyle.Render("Assistant"))
			sb.WriteByte('\n')
			sb.WriteString(renderUtterance(pair.Assistant, width))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func renderUtterance(u *transcript.Utterance, width int) string {
	if u == nil {
		return ""
	}
	if u.ImagePath != "" {
		return ToolStyle.Render("[screenshot saved: " + u.ImagePath + "]")
	}
	// Tool-use announcements are preformatted; keep them verbatim.
	if strings.HasPrefix(u.Text, "Tool Use: ") {
		return ToolStyle.Render(u.Text)
	}
	if width < 20 {
		width = 20
	}
	return strings.TrimRight(string(markdown.Render(u.Text, width, 0)), "\n")
}

// truncateStatus keeps the status line on a single terminal row.
func truncateStatus(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
