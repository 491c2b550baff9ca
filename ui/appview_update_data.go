package ui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chemtui/api"
	"chemtui/chat"
	"chemtui/config"
)

// handleDataMsg processes messages coming back from backend requests.
// The returned bool reports whether the message was consumed.
func (a AppView) handleDataMsg(msg tea.Msg) (tea.Model, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case loginResultMsg:
		a.loginBusy = false
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrUnauthorized) {
				a.loginError = "Invalid username or password"
			} else {
				a.loginError = fmt.Sprintf("Login failed: %v", msg.Err)
			}
			return a, nil, true
		}

		a.closeAllModals()
		a.loginError = ""
		a.updateViewportContent(true)
		return a, tea.Batch(
			a.dataModel.FetchCurrentUser(),
			a.dataModel.FetchModelList(false),
			a.dataModel.FetchConversations(),
		), true

	case registerResultMsg:
		a.loginBusy = false
		if msg.Err != nil {
			a.loginError = fmt.Sprintf("Registration failed: %v", msg.Err)
			return a, nil, true
		}
		// Back to the login form with the username pre-filled.
		a.loginRegisterMode = false
		a.loginError = ""
		a.loginNotice = "Account created. Log in to continue."
		a.loginUsernameInput.SetValue(msg.Username)
		a.loginPasswordInput.SetValue("")
		a.loginFocusedField = 1
		a.loginUsernameInput.Blur()
		a.loginPasswordInput.Focus()
		return a, nil, true

	case currentUserMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrUnauthorized) {
				a.openLoginModal("Your session expired. Log in again.")
				return a, nil, true
			}
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] failed to load current user: %v", msg.Err)
			}
			return a, nil, true
		}
		a.dataModel.CurrentUser = msg.User
		return a, nil, true

	case loggedOutMsg:
		a.dataModel.Conversations = nil
		a.dataModel.CurrentConversation = nil
		a.dataModel.Messages = nil
		a.openLoginModal("Logged out.")
		return a, nil, true

	case profileMsg:
		if cmd, handled := a.authGate(msg.Err); handled {
			return a, cmd, true
		}
		a.profile = msg.Profile
		return a, nil, true

	case usageMsg:
		if msg.Err == nil {
			a.usage = msg.Usage
		}
		return a, nil, true

	case profileUpdatedMsg:
		if msg.Err != nil {
			a.profileStatus = fmt.Sprintf("❌ %v", msg.Err)
			return a, nil, true
		}
		a.profileStatus = "✓ Email updated"
		a.profileEmailEditMode = false
		a.profileEmailInput.Blur()
		return a, a.dataModel.FetchProfile(), true

	case conversationsListMsg:
		if cmd, handled := a.authGate(msg.Err); handled {
			return a, cmd, true
		}
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] failed to list conversations: %v", msg.Err)
			}
			return a, nil, true
		}

		a.dataModel.Conversations = msg.Conversations
		if a.selectedConversationIdx >= len(msg.Conversations) {
			a.selectedConversationIdx = 0
		}

		// First list after startup or login: resume the most recently
		// updated conversation.
		if !a.openedInitialConversation {
			a.openedInitialConversation = true
			if a.dataModel.CurrentConversation == nil && len(a.dataModel.Messages) == 0 && len(msg.Conversations) > 0 {
				a.conversationLoading = true
				return a, a.dataModel.LoadConversation(msg.Conversations[0].ID), true
			}
		}

		// The backend creates a conversation on the first exchange.
		// Adopt the newest one so follow-up prompts continue it.
		if a.dataModel.CurrentConversation == nil && len(a.dataModel.Messages) > 0 && len(msg.Conversations) > 0 {
			conv := msg.Conversations[0]
			a.dataModel.CurrentConversation = &conv
		}
		return a, nil, true

	case conversationLoadedMsg:
		a.conversationLoading = false
		if cmd, handled := a.authGate(msg.Err); handled {
			return a, cmd, true
		}
		if msg.Err != nil {
			a.showInfoModal = true
			a.infoModalTitle = "⚠️  Load Failed"
			a.infoModalMsg = fmt.Sprintf("Could not load conversation:\n%v", msg.Err)
			return a, nil, true
		}

		a.loadConversationDetail(msg.Detail)
		a.closeAllModals()

		// Render the restored history as markdown
		var renderCmds []tea.Cmd
		for i := range a.dataModel.Messages {
			m := &a.dataModel.Messages[i]
			if m.Role == chat.RoleUser {
				renderCmds = append(renderCmds, a.renderMarkdownAsync(i, m.Content))
			} else if !m.Failed {
				renderCmds = append(renderCmds, a.renderMarkdownAsync(i, m.FinalAnswer))
			}
		}
		a.updateViewportContent(true)
		return a, tea.Batch(renderCmds...), true

	case conversationRenamedMsg:
		if msg.Err != nil {
			a.showInfoModal = true
			a.infoModalTitle = "⚠️  Rename Failed"
			a.infoModalMsg = fmt.Sprintf("%v", msg.Err)
		}
		return a, nil, true

	case conversationDeletedMsg:
		if msg.Err != nil {
			a.showInfoModal = true
			a.infoModalTitle = "⚠️  Delete Failed"
			a.infoModalMsg = fmt.Sprintf("%v", msg.Err)
			return a, nil, true
		}
		if a.dataModel.CurrentConversation != nil && a.dataModel.CurrentConversation.ID == msg.ID {
			a.dataModel.CurrentConversation = nil
			a.dataModel.Messages = nil
			a.updateViewportContent(true)
		}
		return a, a.dataModel.FetchConversations(), true

	case modelsListMsg:
		if cmd, handled := a.authGate(msg.Err); handled {
			return a, cmd, true
		}
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] failed to fetch models: %v", msg.Err)
			}
			if msg.ShowSelector {
				a.showInfoModal = true
				a.infoModalTitle = "⚠️  Models Unavailable"
				a.infoModalMsg = fmt.Sprintf("Could not fetch the model list:\n%v", msg.Err)
			}
			return a, nil, true
		}

		a.dataModel.AvailableModels = msg.Models
		if msg.ShowSelector {
			a.closeAllModals()
			a.showModelSelector = true
			for i, m := range msg.Models {
				if m.ID == a.dataModel.SelectedModel {
					a.selectedModelIdx = i
					break
				}
			}
		}
		return a, nil, true

	case adminUsersMsg:
		if cmd, handled := a.authGate(msg.Err); handled {
			return a, cmd, true
		}
		if msg.Err != nil {
			a.adminStatus = fmt.Sprintf("❌ %v", msg.Err)
			return a, nil, true
		}
		a.adminUsers = msg.Users
		if a.selectedAdminIdx >= len(msg.Users) {
			a.selectedAdminIdx = 0
		}
		return a, nil, true

	case adminActionMsg:
		if msg.Err != nil {
			a.adminStatus = fmt.Sprintf("❌ %s failed: %v", msg.Action, msg.Err)
			return a, nil, true
		}
		switch msg.Action {
		case "delete":
			a.adminStatus = fmt.Sprintf("✓ user %d deleted", msg.UserID)
		case "set_admin":
			a.adminStatus = fmt.Sprintf("✓ user %d role changed", msg.UserID)
		}
		return a, a.dataModel.FetchAdminUsers(), true

	case vectorStatsMsg:
		if cmd, handled := a.authGate(msg.Err); handled {
			return a, cmd, true
		}
		if msg.Err == nil {
			a.vectorStats = msg.Stats
		}
		return a, nil, true

	case vectorSearchMsg:
		if msg.Err != nil {
			a.vectorStatus = fmt.Sprintf("❌ search failed: %v", msg.Err)
			return a, nil, true
		}
		a.vectorResults = msg.Results
		a.vectorStatus = fmt.Sprintf("%d results", len(msg.Results))
		return a, nil, true

	case vectorActionMsg:
		if msg.Err != nil {
			a.vectorStatus = fmt.Sprintf("❌ %s failed: %v", msg.Action, msg.Err)
			return a, nil, true
		}
		if msg.Message != "" {
			a.vectorStatus = "✓ " + msg.Message
		} else {
			a.vectorStatus = "✓ " + msg.Action + " done"
		}
		return a, a.dataModel.FetchVectorStats(), true

	case feedbackPendingMsg:
		if cmd, handled := a.authGate(msg.Err); handled {
			return a, cmd, true
		}
		if msg.Err != nil {
			a.feedbackStatus = fmt.Sprintf("❌ %v", msg.Err)
			return a, nil, true
		}
		a.feedbackPending = msg.Pending
		if a.selectedFeedbackIdx >= len(msg.Pending) {
			a.selectedFeedbackIdx = 0
		}
		return a, nil, true

	case feedbackHistoryMsg:
		if cmd, handled := a.authGate(msg.Err); handled {
			return a, cmd, true
		}
		if msg.Err != nil {
			a.feedbackStatus = fmt.Sprintf("❌ %v", msg.Err)
			return a, nil, true
		}
		a.feedbackHistory = msg.Page
		if msg.Page != nil && a.selectedFeedbackIdx >= len(msg.Page.Feedbacks) {
			a.selectedFeedbackIdx = 0
		}
		return a, nil, true

	case feedbackStatsMsg:
		if msg.Err == nil {
			a.feedbackStats = msg.Stats
		}
		return a, nil, true

	case feedbackActionMsg:
		if msg.Err != nil {
			a.feedbackStatus = fmt.Sprintf("❌ %s failed: %v", msg.Action, msg.Err)
			return a, nil, true
		}
		if msg.Message != "" {
			a.feedbackStatus = "✓ " + msg.Message
		} else {
			a.feedbackStatus = "✓ " + msg.Action + " done"
		}
		if msg.Action == "delete" {
			return a, a.dataModel.FetchFeedbackHistory(feedbackPageSize, a.currentHistoryOffset()), true
		}
		return a, a.dataModel.FetchPendingFeedbacks(), true

	case archiveSearchMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] archive search failed: %v", msg.Err)
			}
			return a, nil, true
		}
		a.archiveResults = msg.Matches
		a.selectedArchiveIdx = 0
		return a, nil, true
	}

	return a, nil, false
}

// authGate opens the login modal when a request died on an expired
// token. Any other error is left for the caller.
func (a *AppView) authGate(err error) (tea.Cmd, bool) {
	if err != nil && errors.Is(err, api.ErrUnauthorized) {
		a.openLoginModal("Your session expired. Log in again.")
		return nil, true
	}
	return nil, false
}

// loadConversationDetail replaces the transcript with a stored history.
func (a *AppView) loadConversationDetail(detail *api.ConversationDetail) {
	conv := detail.Conversation
	a.dataModel.CurrentConversation = &conv

	if detail.ModelUsed != "" {
		a.dataModel.SelectedModel = detail.ModelUsed
	}

	a.dataModel.Messages = a.dataModel.Messages[:0]
	for _, stored := range detail.Messages {
		ts := parseTimestamp(stored.CreatedAt)
		if stored.Role == chat.RoleUser {
			m := chat.NewUserMessage(stored.Content)
			m.Timestamp = ts
			a.dataModel.Messages = append(a.dataModel.Messages, m)
			continue
		}

		m := chat.NewAssistantMessage(stored.ModelUsed)
		m.Timestamp = ts
		m.Content = stored.Content
		m.FinalAnswer = stored.Content
		m.Finalized = true
		a.dataModel.Messages = append(a.dataModel.Messages, m)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[UI] loaded conversation %s with %d messages", conv.ID, len(detail.Messages))
	}
}

// parseTimestamp accepts the backend's RFC 3339 timestamps and falls
// back to now for anything unparseable.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Now()
}
