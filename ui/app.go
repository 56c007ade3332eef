// Package ui is the terminal front end: a viewport transcript over the
// projected conversation, an input line, and a settings overlay. All
// conversation semantics live in the model, transcript and agent
// packages; this layer only displays and forwards.
package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"cutui/agent"
	"cutui/config"
	"cutui/model"
	"cutui/provider"
	"cutui/storage"
	"cutui/tools"
	"cutui/transcript"
)

const securityWarning = "Never give the agent access to sensitive accounts or data; malicious web content can hijack its behavior."

// App is the root bubbletea model.
type App struct {
	session   *model.Session
	keyStore  *config.KeyStore
	projector *transcript.Projector
	sessions  *storage.SessionStorage
	audit     *storage.AuditStore
	registry  *tools.Registry

	// record accumulates the persisted form of this conversation so
	// repeated saves update one session file.
	record *storage.Session

	viewport viewport.Model
	input    textarea.Model
	pairs    []transcript.Pair
	live     []string
	events   chan tea.Msg
	settings *settingsForm

	running       bool
	status        string
	statusIsError bool
	width, height int
	ready         bool
}

// NewApp wires the front end to an initialized session and its
// collaborators. sessions and audit may be nil.
func NewApp(session *model.Session, keyStore *config.KeyStore, projector *transcript.Projector, sessions *storage.SessionStorage, audit *storage.AuditStore, registry *tools.Registry) *App {
	input := textarea.New()
	input.Placeholder = "Type a message to send to Claude..."
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	return &App{
		session:   session,
		keyStore:  keyStore,
		projector: projector,
		sessions:  sessions,
		audit:     audit,
		registry:  registry,
		input:     input,
	}
}

// ResumeRecord attaches a previously saved session record so later
// saves update it instead of creating a new file.
func (a *App) ResumeRecord(record *storage.Session) {
	a.record = record
}

func (a *App) Init() tea.Cmd {
	return textarea.Blink
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		a.refreshTranscript()
		return a, nil

	case assistantContentMsg:
		a.live = append(a.live, renderUtterance(msg.Utterance, a.contentWidth()))
		a.updateViewport()
		return a, a.waitEvent()

	case loopDoneMsg:
		a.running = false
		a.live = nil
		if msg.Err != nil {
			a.setError(msg.Err.Error())
		} else {
			a.setStatus("")
		}
		a.saveSession()
		a.refreshTranscript()
		return a, nil

	case tea.KeyMsg:
		if a.settings != nil {
			return a, a.updateSettings(msg)
		}
		switch msg.String() {
		case "ctrl+c":
			a.saveSession()
			return a, tea.Quit
		case "ctrl+s":
			a.settings = newSettingsForm(a.session.Settings)
			return a, nil
		case "ctrl+y":
			a.copyLastReply()
			return a, nil
		case "enter":
			return a, a.submit()
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if a.settings == nil && !a.running {
		a.input, cmd = a.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.settings != nil {
		return a.settings.View(a.width)
	}

	var sb strings.Builder
	title := fmt.Sprintf("cutui | %s / %s", a.session.Settings.Provider, a.session.Settings.Model)
	sb.WriteString(TitleStyle.Render(title))
	sb.WriteByte('\n')
	if os.Getenv("HIDE_WARNING") == "" {
		sb.WriteString(DimStyle.Render(truncateStatus(securityWarning, a.width)))
		sb.WriteByte('\n')
	}

	sb.WriteString(a.viewport.View())
	sb.WriteByte('\n')

	if a.running {
		sb.WriteString(ToolStyle.Render("Working..."))
		sb.WriteByte('\n')
	} else {
		sb.WriteString(a.input.View())
		sb.WriteByte('\n')
	}

	if a.status != "" {
		style := DimStyle
		if a.statusIsError {
			style = ErrorStyle
		}
		sb.WriteString(style.Render(truncateStatus(a.status, a.width)))
		sb.WriteByte('\n')
	}
	sb.WriteString(DimStyle.Render("Enter send  Ctrl+S settings  Ctrl+Y copy reply  Ctrl+C quit"))
	return sb.String()
}

func (a *App) layout() {
	headerLines := 2
	footerLines := 6
	h := a.height - headerLines - footerLines
	if h < 3 {
		h = 3
	}
	if !a.ready {
		a.viewport = viewport.New(a.width, h)
		a.ready = true
	} else {
		a.viewport.Width = a.width
		a.viewport.Height = h
	}
	a.input.SetWidth(a.width)
}

func (a *App) contentWidth() int {
	if a.width > 4 {
		return a.width - 2
	}
	return 78
}

func (a *App) options() transcript.Options {
	return transcript.Options{HideImages: a.session.Settings.HideImages}
}

// refreshTranscript reprojects the settled conversation snapshot into
// display pairs and rebuilds the viewport.
func (a *App) refreshTranscript() {
	if !a.ready {
		return
	}
	a.pairs = a.projector.Project(a.session.Conversation.Snapshot(), a.options())
	a.updateViewport()
}

func (a *App) updateViewport() {
	content := renderPairs(a.pairs, a.contentWidth())
	if len(a.live) > 0 {
		content += "\n" + AssistantStyle.Render("Assistant") + "\n" + strings.Join(a.live, "\n")
	}
	a.viewport.SetContent(content)
	a.viewport.GotoBottom()
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusIsError = false
}

func (a *App) setError(s string) {
	a.status = s
	a.statusIsError = true
}

// submit appends the typed message as a user turn and kicks off one
// agent loop run. Input is rejected while a run is in flight, so at
// most one loop executes against the conversation at a time.
func (a *App) submit() tea.Cmd {
	if a.running {
		return nil
	}
	text := strings.TrimSpace(a.input.Value())
	if text == "" {
		return nil
	}

	a.session.EnsureInitialized(a.keyStore)
	if reason := provider.ValidateAuth(context.Background(), a.session.Settings.Provider, a.session.Settings.APIKey); reason != "" {
		a.setError(reason)
		return nil
	}

	if err := a.session.Conversation.Append(model.RoleUser, model.TextBlock{Text: text}); err != nil {
		a.setError(err.Error())
		return nil
	}

	a.input.Reset()
	a.setStatus("")
	a.running = true
	a.refreshTranscript()

	a.events = make(chan tea.Msg, 32)
	go a.runLoop()
	return a.waitEvent()
}

func (a *App) waitEvent() tea.Cmd {
	events := a.events
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

// runLoop executes the agent loop in the background, forwarding side
// effects to the session archives (and their audit mirror) and
// incremental content to the UI over the event channel.
func (a *App) runLoop() {
	defer close(a.events)

	ctx := context.Background()
	s := a.session
	log := config.Log.WithField("component", "ui")

	client, err := provider.NewClient(ctx, s.Settings.Provider, s.Settings.APIKey)
	if err != nil {
		a.events <- loopDoneMsg{Err: err}
		return
	}

	opts := a.options()
	callbacks := agent.Callbacks{
		OnContent: func(b model.Block) {
			if utt := a.projector.RenderAssistantBlock(b, opts); utt != nil {
				a.events <- assistantContentMsg{Utterance: utt}
			}
		},
		OnToolOutput: func(toolUseID string, result model.ToolResultBlock) {
			s.ToolOutputs.Record(toolUseID, result)
			if a.audit != nil {
				if err := a.audit.RecordToolOutput(toolUseID, result); err != nil {
					log.WithError(err).Warn("audit write failed for tool output")
				}
			}
		},
		OnResponse: func(raw json.RawMessage) {
			id := s.Responses.Record(raw)
			if a.audit != nil {
				if err := a.audit.RecordResponse(id, raw); err != nil {
					log.WithError(err).Warn("audit write failed for response")
				}
			}
		},
	}

	loop := &agent.Loop{
		API:                   agent.NewAPI(client),
		Model:                 s.Settings.Model,
		SystemPromptSuffix:    s.Settings.SystemPromptSuffix,
		Tools:                 a.registry,
		OnlyNMostRecentImages: s.Settings.OnlyNMostRecentImages,
	}
	a.events <- loopDoneMsg{Err: loop.Run(ctx, s.Conversation, callbacks)}
}

// saveSession persists the conversation so it can be resumed later.
// Best effort: a failed save is logged and the chat continues.
func (a *App) saveSession() {
	if a.sessions == nil || a.session.Conversation.Len() == 0 {
		return
	}

	if a.record == nil {
		a.record = &storage.Session{}
	}
	s := a.session.Settings
	a.record.Name = sessionName(a.session.Conversation.Snapshot())
	a.record.Provider = string(s.Provider)
	a.record.Model = s.Model
	a.record.SystemPromptSuffix = s.SystemPromptSuffix
	a.record.Turns = a.session.Conversation.Snapshot()

	if err := a.sessions.Save(a.record); err != nil {
		config.Log.WithField("component", "ui").
			WithError(err).Warn("could not save session")
	}
}

// sessionName derives a listing name from the first user message.
func sessionName(turns []model.Turn) string {
	for _, turn := range turns {
		if turn.Role != model.RoleUser || len(turn.Blocks) == 0 {
			continue
		}
		if tb, ok := turn.Blocks[0].(model.TextBlock); ok {
			name := strings.TrimSpace(tb.Text)
			if len(name) > 60 {
				name = name[:60]
			}
			return name
		}
	}
	return "untitled"
}

func (a *App) copyLastReply() {
	for i := len(a.pairs) - 1; i >= 0; i-- {
		if u := a.pairs[i].Assistant; u != nil && u.Text != "" {
			if err := clipboard.WriteAll(u.Text); err != nil {
				a.setError("copy failed: " + err.Error())
			} else {
				a.setStatus("Last reply copied to clipboard.")
			}
			return
		}
	}
	a.setStatus("Nothing to copy yet.")
}
