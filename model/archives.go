package model

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ResponseArchive records raw provider responses for post-hoc
// debugging. It is write-only from the core's perspective: nothing in
// the rendering path reads it back.
//
// Keys are timestamp-derived. Two responses can land within the same
// instant, so a short uuid fragment disambiguates the key instead of
// silently overwriting.
type ResponseArchive struct {
	mu      sync.Mutex
	entries map[string]json.RawMessage
}

// NewResponseArchive returns an empty archive.
func NewResponseArchive() *ResponseArchive {
	return &ResponseArchive{entries: make(map[string]json.RawMessage)}
}

// Record stores a raw response under a freshly generated id and
// returns that id.
func (a *ResponseArchive) Record(raw json.RawMessage) string {
	id := time.Now().Format(time.RFC3339Nano) + "_" + uuid.NewString()[:8]
	a.mu.Lock()
	a.entries[id] = raw
	a.mu.Unlock()
	return id
}

// Get returns the archived response for id.
func (a *ResponseArchive) Get(id string) (json.RawMessage, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	raw, ok := a.entries[id]
	return raw, ok
}

// Len reports the number of archived responses.
func (a *ResponseArchive) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// ToolOutputArchive records tool execution results keyed by the tool
// invocation id. Recording the same id twice is last-write-wins; the
// agent loop retries a tool under the same id when the provider does.
type ToolOutputArchive struct {
	mu      sync.Mutex
	entries map[string]ToolResultBlock
}

// NewToolOutputArchive returns an empty archive.
func NewToolOutputArchive() *ToolOutputArchive {
	return &ToolOutputArchive{entries: make(map[string]ToolResultBlock)}
}

// Record stores result under toolUseID, overwriting any prior entry.
func (a *ToolOutputArchive) Record(toolUseID string, result ToolResultBlock) {
	a.mu.Lock()
	a.entries[toolUseID] = result
	a.mu.Unlock()
}

// Get returns the archived result for toolUseID.
func (a *ToolOutputArchive) Get(toolUseID string) (ToolResultBlock, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	res, ok := a.entries[toolUseID]
	return res, ok
}

// Len reports the number of archived tool outputs.
func (a *ToolOutputArchive) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}
