package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"chemtui/api"
	"chemtui/chat"
	"chemtui/config"
	"chemtui/storage"
)

// Model holds the core application data and business logic state
type Model struct {
	// Core dependencies
	Config      *config.Config
	Client      *api.Client
	Session     *chat.Session
	Archive     *storage.Archive
	Credentials *config.CredentialStore

	// Account state
	CurrentUser *api.User

	// Conversation state
	Conversations       []api.Conversation
	CurrentConversation *api.Conversation
	Messages            []chat.Message
	SelectedModel       string
	AvailableModels     []api.ModelInfo

	// Streaming state
	Streaming    bool
	StreamHandle *chat.Handle
	streamCh     chan tea.Msg
	Revealer     *chat.Typewriter

	// Runtime state (not UI)
	NeedsInitialRender bool
	Quitting           bool

	// Application metadata
	Version string
}

// NewModel creates a new Model with the given configuration
func NewModel(cfg *config.Config, client *api.Client, creds *config.CredentialStore, archive *storage.Archive, version string) *Model {
	return &Model{
		Config:        cfg,
		Client:        client,
		Session:       chat.NewSession(client),
		Archive:       archive,
		Credentials:   creds,
		SelectedModel: cfg.DefaultModel,
		Version:       version,
	}
}

// LastAnswer returns the most recent finished assistant answer, or "".
func (m *Model) LastAnswer() string {
	for i := len(m.Messages) - 1; i >= 0; i-- {
		msg := m.Messages[i]
		if msg.Role == chat.RoleAssistant && msg.Finalized && !msg.Failed {
			return msg.FinalAnswer
		}
	}
	return ""
}

// LastQuestion returns the most recent user prompt, or "".
func (m *Model) LastQuestion() string {
	for i := len(m.Messages) - 1; i >= 0; i-- {
		if m.Messages[i].Role == chat.RoleUser {
			return m.Messages[i].Content
		}
	}
	return ""
}

// IsAdmin reports whether the logged-in account has the admin role.
func (m *Model) IsAdmin() bool {
	return m.CurrentUser != nil && m.CurrentUser.Role == "admin"
}
