package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"cutui/config"
	"cutui/model"
)

// Field indices in the settings overlay, top to bottom.
const (
	fieldProvider = iota
	fieldModel
	fieldAPIKey
	fieldSuffix
	fieldImageLimit
	fieldHideImages
	fieldCount
)

// settingsForm is the modal overlay for editing session configuration.
// Edits apply on Enter and are discarded on Esc.
type settingsForm struct {
	provider     model.Provider
	hideImages   bool
	modelInput   textinput.Model
	keyInput     textinput.Model
	suffixInput  textinput.Model
	limitInput   textinput.Model
	initialModel string
	focus        int
}

func newSettingsForm(s model.Settings) *settingsForm {
	mi := textinput.New()
	mi.SetValue(s.Model)

	ki := textinput.New()
	ki.SetValue(s.APIKey)
	ki.EchoMode = textinput.EchoPassword

	si := textinput.New()
	si.SetValue(s.SystemPromptSuffix)
	si.Placeholder = "Custom system prompt suffix"

	li := textinput.New()
	li.SetValue(strconv.Itoa(s.OnlyNMostRecentImages))

	f := &settingsForm{
		provider:     s.Provider,
		hideImages:   s.HideImages,
		modelInput:   mi,
		keyInput:     ki,
		suffixInput:  si,
		limitInput:   li,
		initialModel: s.Model,
	}
	f.setFocus(fieldProvider)
	return f
}

func (f *settingsForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.modelInput, &f.keyInput, &f.suffixInput, &f.limitInput}
}

func (f *settingsForm) setFocus(field int) {
	f.focus = field
	for i, in := range f.inputs() {
		if field == i+fieldModel {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (f *settingsForm) cycleProvider(delta int) {
	providers := model.Providers()
	for i, p := range providers {
		if p == f.provider {
			f.provider = providers[(i+delta+len(providers))%len(providers)]
			return
		}
	}
	f.provider = providers[0]
}

// update handles one key press. done reports whether the overlay
// should close; apply whether the edits should be committed.
func (f *settingsForm) update(msg tea.KeyMsg) (done, apply bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc":
		return true, false, nil
	case "enter":
		return true, true, nil
	case "up", "shift+tab":
		f.setFocus((f.focus - 1 + fieldCount) % fieldCount)
		return false, false, nil
	case "down", "tab":
		f.setFocus((f.focus + 1) % fieldCount)
		return false, false, nil
	}

	switch f.focus {
	case fieldProvider:
		switch msg.String() {
		case "left":
			f.cycleProvider(-1)
		case "right", " ":
			f.cycleProvider(1)
		}
	case fieldHideImages:
		if msg.String() == " " || msg.String() == "left" || msg.String() == "right" {
			f.hideImages = !f.hideImages
		}
	default:
		for i, in := range f.inputs() {
			if f.focus == i+fieldModel {
				var c tea.Cmd
				*in, c = in.Update(msg)
				return false, false, c
			}
		}
	}
	return false, false, nil
}

func (f *settingsForm) View(width int) string {
	label := func(field int, text string) string {
		if field == f.focus {
			return SelectedStyle.Render("> " + text)
		}
		return "  " + text
	}
	onOff := map[bool]string{true: "on", false: "off"}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Settings"))
	sb.WriteString("\n\n")
	sb.WriteString(label(fieldProvider, fmt.Sprintf("API provider:   %s  (left/right to change)", f.provider)))
	sb.WriteString("\n")
	sb.WriteString(label(fieldModel, "Model:          ") + f.modelInput.View())
	sb.WriteString("\n")
	sb.WriteString(label(fieldAPIKey, "API key:        ") + f.keyInput.View())
	sb.WriteString("\n")
	sb.WriteString(label(fieldSuffix, "Prompt suffix:  ") + f.suffixInput.View())
	sb.WriteString("\n")
	sb.WriteString(label(fieldImageLimit, "Recent images:  ") + f.limitInput.View())
	sb.WriteString("\n")
	sb.WriteString(label(fieldHideImages, fmt.Sprintf("Hide images:    %s  (space to toggle)", onOff[f.hideImages])))
	sb.WriteString("\n\n")
	sb.WriteString(DimStyle.Render(truncateStatus("Tab/arrows move  Enter save  Esc cancel", width)))
	return sb.String()
}

// updateSettings routes a key press to the overlay and commits the
// form when it closes with apply.
func (a *App) updateSettings(msg tea.KeyMsg) tea.Cmd {
	done, apply, cmd := a.settings.update(msg)
	if !done {
		return cmd
	}
	if apply {
		a.applySettings(a.settings)
	}
	a.settings = nil
	return cmd
}

// applySettings commits the form into the session and persists the
// durable pieces: the API key and prompt suffix into the key-file
// store. Persistence failures are logged, never surfaced (the
// in-memory session already has the new values).
func (a *App) applySettings(f *settingsForm) {
	s := a.session
	log := config.Log.WithField("component", "ui")

	s.SetProvider(f.provider)

	if m := strings.TrimSpace(f.modelInput.Value()); m != "" && m != f.initialModel {
		s.SetModel(m)
	}

	if key := strings.TrimSpace(f.keyInput.Value()); key != "" && key != s.Settings.APIKey {
		s.Settings.APIKey = key
		s.AuthValidated = false
		if a.keyStore != nil {
			if err := a.keyStore.Save("api_key", key); err != nil {
				log.WithError(err).Warn("could not persist API key")
			}
		}
	}

	if suffix := f.suffixInput.Value(); suffix != s.Settings.SystemPromptSuffix {
		s.Settings.SystemPromptSuffix = suffix
		if a.keyStore != nil {
			if err := a.keyStore.Save("system_prompt", suffix); err != nil {
				log.WithError(err).Warn("could not persist system prompt suffix")
			}
		}
	}

	if n, err := strconv.Atoi(strings.TrimSpace(f.limitInput.Value())); err == nil && n >= 0 {
		s.Settings.OnlyNMostRecentImages = n
	}
	s.Settings.HideImages = f.hideImages

	a.refreshTranscript()
}
