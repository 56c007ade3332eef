package model

import "sync"

// Conversation is the ordered, append-only sequence of turns for one
// session. Insertion order is the canonical chronological order; turns
// are never reordered, deduplicated, or mutated after append.
//
// A mutex guards the slice so a render can take a snapshot while an
// append is in flight. A turn becomes visible atomically: Snapshot
// never observes a partially built turn.
type Conversation struct {
	mu    sync.Mutex
	turns []Turn
}

// NewConversation returns an empty conversation store.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append validates and adds a turn at the end of the history. On
// validation failure the store is left unchanged and the error is an
// *InvalidTurnError.
func (c *Conversation) Append(role Role, blocks ...Block) error {
	if err := validateTurn(role, blocks); err != nil {
		return err
	}

	// Copy the block slice so a caller reusing its argument slice
	// cannot mutate an appended turn.
	owned := make([]Block, len(blocks))
	copy(owned, blocks)

	c.mu.Lock()
	c.turns = append(c.turns, Turn{Role: role, Blocks: owned})
	c.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the full history in append order. The
// copy reflects every append that completed before the call.
func (c *Conversation) Snapshot() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len reports the number of appended turns.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// Replace swaps the full history, used when loading a persisted
// session. Loaded turns are validated the same way appends are;
// invalid turns reject the whole load.
func (c *Conversation) Replace(turns []Turn) error {
	for _, t := range turns {
		if err := validateTurn(t.Role, t.Blocks); err != nil {
			return err
		}
	}
	owned := make([]Turn, len(turns))
	copy(owned, turns)

	c.mu.Lock()
	c.turns = owned
	c.mu.Unlock()
	return nil
}
