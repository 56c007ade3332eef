// Package agent runs the tool-use sampling loop: send the conversation
// to the Messages API, execute any tools the model requests, feed the
// results back, and repeat until the model stops asking.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/sirupsen/logrus"

	"cutui/config"
	"cutui/model"
	"cutui/provider"
	"cutui/tools"
)

const defaultMaxTokens = 4096

// MessageCreator is the one API call the loop needs. It is an
// interface so tests can drive the loop without the network.
type MessageCreator interface {
	CreateMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

type clientAdapter struct {
	client *anthropic.Client
}

func (a clientAdapter) CreateMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return a.client.Messages.New(ctx, params)
}

// NewAPI wraps an SDK client as a MessageCreator.
func NewAPI(client *anthropic.Client) MessageCreator {
	return clientAdapter{client: client}
}

// Callbacks are the three side-effect sinks the loop notifies while it
// works. Any of them may be nil. They are observers: the loop never
// reads anything back from them.
type Callbacks struct {
	// OnContent fires once per assistant content block as it is
	// appended, for incremental display.
	OnContent func(block model.Block)

	// OnToolOutput fires after each tool execution with the
	// invocation id and its result.
	OnToolOutput func(toolUseID string, result model.ToolResultBlock)

	// OnResponse fires with the raw provider response before the loop
	// interprets it.
	OnResponse func(raw json.RawMessage)
}

// Loop drives one conversation against the Messages API. A Loop is
// configured once per run; the caller guarantees at most one Run is in
// flight per conversation at a time.
type Loop struct {
	API                   MessageCreator
	Model                 string
	SystemPromptSuffix    string
	Tools                 *tools.Registry
	MaxTokens             int64
	OnlyNMostRecentImages int
	Log                   *logrus.Entry
}

// Run executes the sampling loop to completion, appending assistant
// and tool turns to the conversation as it goes. It returns when the
// model finishes a turn without requesting a tool, or with the first
// request error.
func (l *Loop) Run(ctx context.Context, convo *model.Conversation, cb Callbacks) error {
	log := l.Log
	if log == nil {
		log = config.Log.WithField("component", "agent")
	}

	maxTokens := l.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	toolParams := l.toolParams()

	for {
		snapshot := provider.FilterRecentImages(convo.Snapshot(), l.OnlyNMostRecentImages)

		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(l.Model),
			MaxTokens: maxTokens,
			Messages:  provider.ToMessageParams(snapshot),
			System: []anthropic.TextBlockParam{
				{Text: SystemPrompt(l.SystemPromptSuffix)},
			},
		}
		if len(toolParams) > 0 {
			params.Tools = toolParams
		}

		resp, err := l.API.CreateMessage(ctx, params)
		if err != nil {
			return fmt.Errorf("model request failed: %w", err)
		}

		if cb.OnResponse != nil {
			if raw, err := json.Marshal(resp); err == nil {
				cb.OnResponse(raw)
			} else {
				log.WithError(err).Warn("could not serialize provider response for archive")
			}
		}

		blocks := provider.FromContentBlocks(resp.Content)
		if len(blocks) == 0 {
			log.Warn("provider returned a response with no content")
			return nil
		}

		if err := convo.Append(model.RoleAssistant, blocks...); err != nil {
			return fmt.Errorf("could not append assistant turn: %w", err)
		}
		if cb.OnContent != nil {
			for _, b := range blocks {
				cb.OnContent(b)
			}
		}

		var toolUses []model.ToolUseBlock
		for _, b := range blocks {
			if tu, ok := b.(model.ToolUseBlock); ok {
				toolUses = append(toolUses, tu)
			}
		}
		if resp.StopReason != "tool_use" || len(toolUses) == 0 {
			return nil
		}

		results := make([]model.Block, 0, len(toolUses))
		for _, tu := range toolUses {
			log.WithFields(logrus.Fields{"tool": tu.Name, "id": tu.ID}).Debug("executing tool")
			result := l.runTool(ctx, tu)
			if cb.OnToolOutput != nil {
				cb.OnToolOutput(tu.ID, result)
			}
			results = append(results, result)
		}

		if err := convo.Append(model.RoleTool, results...); err != nil {
			return fmt.Errorf("could not append tool turn: %w", err)
		}
	}
}

func (l *Loop) runTool(ctx context.Context, tu model.ToolUseBlock) model.ToolResultBlock {
	if l.Tools == nil {
		return model.ToolResultBlock{ToolUseID: tu.ID, Error: "no tools available"}
	}
	tool, ok := l.Tools.Get(tu.Name)
	if !ok {
		return model.ToolResultBlock{ToolUseID: tu.ID, Error: "unknown tool: " + tu.Name}
	}

	result, err := tool.Run(ctx, tu.Input)
	if err != nil {
		return model.ToolResultBlock{ToolUseID: tu.ID, Error: err.Error()}
	}
	return result.Block(tu.ID)
}

func (l *Loop) toolParams() []anthropic.ToolUnionParam {
	if l.Tools == nil {
		return nil
	}

	all := l.Tools.All()
	params := make([]anthropic.ToolUnionParam, 0, len(all))
	for _, t := range all {
		schema := anthropic.ToolInputSchemaParam{Properties: t.Schema().Properties}
		if len(t.Schema().Required) > 0 {
			schema.Required = t.Schema().Required
		}

		p := anthropic.ToolUnionParamOfTool(schema, t.Name())
		if desc := t.Description(); desc != "" {
			p.OfTool.Description = anthropic.String(desc)
		}
		params = append(params, p)
	}
	return params
}
