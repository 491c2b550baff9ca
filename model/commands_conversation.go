package model

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 15 * time.Second

// conversationPageSize matches the page the web client requests.
const conversationPageSize = 50

// FetchConversations retrieves the conversation history list
func (m *Model) FetchConversations() tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		conversations, err := client.Conversations(ctx, 0, conversationPageSize)
		return ConversationsListMsg{
			Conversations: conversations,
			Err:           err,
		}
	}
}

// LoadConversation fetches a conversation with its full message history
func (m *Model) LoadConversation(id string) tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		detail, err := client.Conversation(ctx, id)
		return ConversationLoadedMsg{
			Detail: detail,
			Err:    err,
		}
	}
}

// RenameConversationCmd sets a new title and refreshes the list
func (m *Model) RenameConversationCmd(id, title string) tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := client.RenameConversation(ctx, id, title); err != nil {
			return ConversationRenamedMsg{Err: err}
		}

		conversations, err := client.Conversations(ctx, 0, conversationPageSize)
		return ConversationsListMsg{Conversations: conversations, Err: err}
	}
}

// DeleteConversationCmd removes a conversation server-side and drops its
// local archive entries.
func (m *Model) DeleteConversationCmd(id string) tea.Cmd {
	client := m.Client
	archive := m.Archive
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := client.DeleteConversation(ctx, id); err != nil {
			return ConversationDeletedMsg{ID: id, Err: err}
		}
		if archive != nil {
			// Archive cleanup is best effort; the server delete already
			// succeeded.
			_ = archive.DeleteConversation(id)
		}
		return ConversationDeletedMsg{ID: id}
	}
}

// FetchModelList retrieves the models the backend can route to
// showSelector: whether to auto-show model selector after fetch (user-initiated vs background)
func (m *Model) FetchModelList(showSelector bool) tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		models, err := client.Models(ctx)
		return ModelsListMsg{
			Models:       models,
			Err:          err,
			ShowSelector: showSelector,
		}
	}
}
