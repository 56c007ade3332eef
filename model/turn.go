package model

import (
	"encoding/json"
	"fmt"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is one role-attributed entry in the conversation. Turns are
// value types and are never mutated after they enter the conversation
// store.
type Turn struct {
	Role   Role
	Blocks []Block
}

// InvalidTurnError rejects an append whose content is empty or whose
// block variants are not valid for the turn's role.
type InvalidTurnError struct {
	Role   Role
	Reason string
}

func (e *InvalidTurnError) Error() string {
	return fmt.Sprintf("invalid %s turn: %s", e.Role, e.Reason)
}

// validateTurn enforces the role/content contract: user turns hold text
// only, assistant turns hold text or tool-use requests, tool turns hold
// tool results only. RawBlock is never appendable; it only enters the
// store as part of provider content the loop could not classify, and
// even then only inside assistant turns.
func validateTurn(role Role, blocks []Block) error {
	if len(blocks) == 0 {
		return &InvalidTurnError{Role: role, Reason: "turn has no content"}
	}

	for _, b := range blocks {
		ok := false
		switch role {
		case RoleUser:
			_, ok = b.(TextBlock)
		case RoleAssistant:
			switch b.(type) {
			case TextBlock, ToolUseBlock, RawBlock:
				ok = true
			}
		case RoleTool:
			_, ok = b.(ToolResultBlock)
		default:
			return &InvalidTurnError{Role: role, Reason: "unknown role"}
		}
		if !ok {
			return &InvalidTurnError{
				Role:   role,
				Reason: fmt.Sprintf("%s block not allowed", b.Kind()),
			}
		}
	}
	return nil
}

type turnEnvelope struct {
	Role    Role            `json:"role"`
	Content []blockEnvelope `json:"content"`
}

// MarshalJSON encodes the turn with typed block envelopes so session
// files round-trip every variant.
func (t Turn) MarshalJSON() ([]byte, error) {
	env := turnEnvelope{Role: t.Role, Content: make([]blockEnvelope, 0, len(t.Blocks))}
	for _, b := range t.Blocks {
		env.Content = append(env.Content, envelopeFor(b))
	}
	return json.Marshal(env)
}

func (t *Turn) UnmarshalJSON(data []byte) error {
	var env turnEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	t.Role = env.Role
	t.Blocks = make([]Block, 0, len(env.Content))
	for _, e := range env.Content {
		t.Blocks = append(t.Blocks, e.block())
	}
	return nil
}
