package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"chemtui/chat"
	"chemtui/config"
	"chemtui/storage"
)

// ArchiveExchange stores a finished exchange in the local archive.
// Failed exchanges are archived too so the error trail is searchable.
func (m *Model) ArchiveExchange(question string, answer *chat.Message) tea.Cmd {
	if m.Archive == nil || !m.Config.ArchiveEnabled {
		return nil
	}

	ex := &storage.Exchange{
		Question: question,
		Answer:   answer.FinalAnswer,
		Model:    answer.Model,
		Failed:   answer.Failed,
	}
	if m.CurrentConversation != nil {
		ex.ConversationID = m.CurrentConversation.ID
		ex.Title = m.CurrentConversation.Title
	}
	for _, step := range answer.Steps {
		ex.Steps = append(ex.Steps, storage.ArchivedStep{
			Thought:     step.Thought,
			Action:      step.Action,
			ActionInput: step.ActionInput,
			Observation: step.Observation,
		})
	}

	archive := m.Archive
	return func() tea.Msg {
		err := archive.Record(ex)
		if err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[model] failed to archive exchange: %v", err)
		}
		return ArchiveRecordedMsg{Err: err}
	}
}

// SearchArchive searches past exchanges stored locally
func (m *Model) SearchArchive(query string) tea.Cmd {
	if m.Archive == nil {
		return nil
	}
	archive := m.Archive
	return func() tea.Msg {
		matches, err := archive.Search(query)
		return ArchiveSearchMsg{Matches: matches, Err: err}
	}
}
