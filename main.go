package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"cutui/config"
	"cutui/model"
	"cutui/storage"
	"cutui/tools"
	"cutui/transcript"
	"cutui/ui"
)

const (
	Version = "v0.1.0"
	License = "MIT"
)

func main() {
	resume := flag.String("resume", "", `session id to resume, or "last" for the most recent`)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	dataDir := cfg.DataDir()

	logCloser, err := config.InitLogging(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	} else {
		defer logCloser.Close()
	}
	log := config.Log.WithField("component", "main")

	keyStore := config.NewKeyStore("")

	imageStore, err := storage.NewImageStore(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare image directory: %v\n", err)
		os.Exit(1)
	}

	audit, err := storage.OpenAuditStore(dataDir)
	if err != nil {
		// Auditing is best effort; the session works without it.
		log.WithError(err).Warn("audit store unavailable")
		audit = nil
	} else {
		defer audit.Close()
	}

	sessionStorage, err := storage.NewSessionStorage(dataDir)
	if err != nil {
		log.WithError(err).Warn("session persistence unavailable")
		sessionStorage = nil
	}

	session := model.NewSession()
	if p, ok := model.ParseProvider(cfg.Provider); ok {
		session.Settings.Provider = p
	}
	if cfg.Model != "" {
		session.Settings.Model = cfg.Model
	}
	session.Settings.OnlyNMostRecentImages = cfg.OnlyNMostRecentImages
	session.Settings.HideImages = cfg.HideImages

	var record *storage.Session
	if *resume != "" {
		record, err = resumeSession(sessionStorage, *resume, session)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not resume session: %v\n", err)
			os.Exit(1)
		}
	}
	session.EnsureInitialized(keyStore)

	registry := tools.NewRegistry()
	registry.Register(&tools.BashTool{})
	registry.Register(&tools.ScreenshotTool{})

	projector := transcript.New(imageStore, nil)
	app := ui.NewApp(session, keyStore, projector, sessionStorage, audit, registry)
	if record != nil {
		app.ResumeRecord(record)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resumeSession loads a saved conversation into the live session. The
// saved provider/model/suffix win over file-config defaults; the id
// "last" picks the most recently updated session.
func resumeSession(store *storage.SessionStorage, id string, session *model.Session) (*storage.Session, error) {
	if store == nil {
		return nil, fmt.Errorf("session storage is unavailable")
	}

	if id == "last" {
		list, err := store.List()
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("no saved sessions")
		}
		id = list[0].ID
	}

	record, err := store.Load(id)
	if err != nil {
		return nil, err
	}
	if err := session.Conversation.Replace(record.Turns); err != nil {
		return nil, fmt.Errorf("saved session is not loadable: %w", err)
	}

	if p, ok := model.ParseProvider(record.Provider); ok {
		session.Settings.Provider = p
	}
	if record.Model != "" {
		session.Settings.Model = record.Model
	}
	if record.SystemPromptSuffix != "" {
		session.Settings.SystemPromptSuffix = record.SystemPromptSuffix
	}
	return record, nil
}
