package model

import (
	"os"

	"cutui/config"
)

// PlaceholderAPIKey is installed when no key is found in storage or the
// environment, so the settings screen has something visible to replace.
const PlaceholderAPIKey = "YOUR_API_KEY_HERE"

// Settings is the resolved per-session configuration. Fields are
// materialized once by EnsureInitialized and afterwards change only
// through explicit user edits.
type Settings struct {
	APIKey                string
	Provider              Provider
	Model                 string
	SystemPromptSuffix    string
	OnlyNMostRecentImages int
	HideImages            bool
}

// Session owns everything scoped to one conversation run: the resolved
// settings, the conversation store, and the two side-effect archives.
// It replaces the single flat state bag the UI layer would otherwise
// accumulate.
type Session struct {
	Settings      Settings
	Conversation  *Conversation
	Responses     *ResponseArchive
	ToolOutputs   *ToolOutputArchive
	AuthValidated bool

	bootstrapped    bool
	modelOverridden bool
}

// NewSession returns a session with empty sub-objects. Settings are
// filled in by EnsureInitialized.
func NewSession() *Session {
	return &Session{
		Conversation: NewConversation(),
		Responses:    NewResponseArchive(),
		ToolOutputs:  NewToolOutputArchive(),
	}
}

// EnsureInitialized idempotently fills any missing settings field using
// the resolution chain stored value -> environment -> placeholder. It
// is safe to call before every user-facing operation: once a field is
// present it is never reset, and after the first full pass subsequent
// calls only repair nil sub-objects.
//
// OnlyNMostRecentImages treats zero as "unset" during the first pass
// only; a user can still set it to zero afterwards.
func (s *Session) EnsureInitialized(store *config.KeyStore) {
	if s.Conversation == nil {
		s.Conversation = NewConversation()
	}
	if s.Responses == nil {
		s.Responses = NewResponseArchive()
	}
	if s.ToolOutputs == nil {
		s.ToolOutputs = NewToolOutputArchive()
	}
	if s.bootstrapped {
		return
	}

	if s.Settings.APIKey == "" {
		if v, ok := load(store, "api_key"); ok {
			s.Settings.APIKey = v
		} else if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			s.Settings.APIKey = v
		} else {
			s.Settings.APIKey = PlaceholderAPIKey
			config.Log.WithField("component", "session").
				Warn("no API key in storage or environment")
		}
	}

	if s.Settings.Provider == "" {
		if p, ok := ParseProvider(os.Getenv("API_PROVIDER")); ok {
			s.Settings.Provider = p
		} else {
			s.Settings.Provider = ProviderAnthropic
		}
	}

	if s.Settings.Model == "" {
		s.Settings.Model = DefaultModel(s.Settings.Provider)
	} else {
		s.modelOverridden = s.Settings.Model != DefaultModel(s.Settings.Provider)
	}

	if s.Settings.SystemPromptSuffix == "" {
		if v, ok := load(store, "system_prompt"); ok {
			s.Settings.SystemPromptSuffix = v
		}
	}

	if s.Settings.OnlyNMostRecentImages == 0 {
		s.Settings.OnlyNMostRecentImages = 10
	}

	s.bootstrapped = true
}

// SetProvider switches providers and re-derives the default model for
// the new provider unless the user explicitly overrode the model.
// Credentials must be re-validated after a switch.
func (s *Session) SetProvider(p Provider) {
	if p == s.Settings.Provider {
		return
	}
	s.Settings.Provider = p
	s.AuthValidated = false
	if !s.modelOverridden {
		s.Settings.Model = DefaultModel(p)
	}
}

// SetModel records an explicit model choice. Choosing the provider's
// default clears the override so later provider switches re-derive.
func (s *Session) SetModel(m string) {
	s.Settings.Model = m
	s.modelOverridden = m != DefaultModel(s.Settings.Provider)
}

func load(store *config.KeyStore, key string) (string, bool) {
	if store == nil {
		return "", false
	}
	return store.Load(key)
}
