package provider

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"

	"cutui/model"
)

// ToMessageParams converts a conversation snapshot into the Messages
// API request shape. Tool turns travel back to the API as user-role
// messages carrying tool_result blocks, per the Messages protocol.
// Raw blocks are not resendable and are dropped here; turns that end
// up empty after conversion are dropped with them.
func ToMessageParams(turns []model.Turn) []anthropic.MessageParam {
	params := make([]anthropic.MessageParam, 0, len(turns))

	for _, turn := range turns {
		var blocks []anthropic.ContentBlockParamUnion

		switch turn.Role {
		case model.RoleUser:
			for _, b := range turn.Blocks {
				if tb, ok := b.(model.TextBlock); ok {
					blocks = append(blocks, anthropic.NewTextBlock(tb.Text))
				}
			}
			if len(blocks) > 0 {
				params = append(params, anthropic.NewUserMessage(blocks...))
			}

		case model.RoleAssistant:
			for _, b := range turn.Blocks {
				switch v := b.(type) {
				case model.TextBlock:
					blocks = append(blocks, anthropic.NewTextBlock(v.Text))
				case model.ToolUseBlock:
					blocks = append(blocks, anthropic.ContentBlockParamUnion{
						OfToolUse: &anthropic.ToolUseBlockParam{
							ID:    v.ID,
							Name:  v.Name,
							Input: v.Input,
						},
					})
				}
			}
			if len(blocks) > 0 {
				params = append(params, anthropic.NewAssistantMessage(blocks...))
			}

		case model.RoleTool:
			for _, b := range turn.Blocks {
				if tr, ok := b.(model.ToolResultBlock); ok {
					blocks = append(blocks, toolResultParam(tr))
				}
			}
			if len(blocks) > 0 {
				params = append(params, anthropic.NewUserMessage(blocks...))
			}
		}
	}
	return params
}

func toolResultParam(tr model.ToolResultBlock) anthropic.ContentBlockParamUnion {
	result := anthropic.ToolResultBlockParam{ToolUseID: tr.ToolUseID}

	text := tr.Output
	if tr.Error != "" {
		text = tr.Error
		result.IsError = anthropic.Bool(true)
	}

	var content []anthropic.ToolResultBlockParamContentUnion
	if text != "" {
		content = append(content, anthropic.ToolResultBlockParamContentUnion{
			OfText: &anthropic.TextBlockParam{Text: text},
		})
	}
	if tr.Base64Image != "" {
		content = append(content, anthropic.ToolResultBlockParamContentUnion{
			OfImage: &anthropic.ImageBlockParam{
				Source: anthropic.ImageBlockParamSourceUnion{
					OfBase64: &anthropic.Base64ImageSourceParam{
						Data:      tr.Base64Image,
						MediaType: anthropic.Base64ImageSourceMediaTypeImagePNG,
					},
				},
			},
		})
	}
	result.Content = content

	return anthropic.ContentBlockParamUnion{OfToolResult: &result}
}

// FromContentBlocks converts response content into conversation
// blocks. Anything the switch does not recognize is preserved as a
// RawBlock so the transcript layer can flag it instead of losing it.
func FromContentBlocks(content []anthropic.ContentBlockUnion) []model.Block {
	blocks := make([]model.Block, 0, len(content))

	for _, cb := range content {
		switch v := cb.AsAny().(type) {
		case anthropic.TextBlock:
			blocks = append(blocks, model.TextBlock{Text: v.Text})

		case anthropic.ToolUseBlock:
			var input map[string]any
			if err := json.Unmarshal(v.Input, &input); err != nil || input == nil {
				input = map[string]any{}
			}
			blocks = append(blocks, model.ToolUseBlock{ID: v.ID, Name: v.Name, Input: input})

		default:
			var payload map[string]any
			if err := json.Unmarshal([]byte(cb.RawJSON()), &payload); err != nil {
				payload = map[string]any{"type": cb.Type}
			}
			blocks = append(blocks, model.RawBlock{Payload: payload})
		}
	}
	return blocks
}

// FilterRecentImages returns a snapshot with all but the n most recent
// tool-result images stripped, implementing the only-N-most-recent-
// images request budget. n <= 0 disables filtering. The input turns
// are never mutated; turns that change are rebuilt.
func FilterRecentImages(turns []model.Turn, n int) []model.Turn {
	if n <= 0 {
		return turns
	}

	out := make([]model.Turn, len(turns))
	copy(out, turns)

	kept := 0
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Role != model.RoleTool {
			continue
		}

		changed := false
		blocks := make([]model.Block, len(out[i].Blocks))
		copy(blocks, out[i].Blocks)

		// Walk blocks newest-last within the turn, from the end.
		for j := len(blocks) - 1; j >= 0; j-- {
			tr, ok := blocks[j].(model.ToolResultBlock)
			if !ok || tr.Base64Image == "" {
				continue
			}
			if kept < n {
				kept++
				continue
			}
			tr.Base64Image = ""
			blocks[j] = tr
			changed = true
		}

		if changed {
			out[i] = model.Turn{Role: out[i].Role, Blocks: blocks}
		}
	}
	return out
}
