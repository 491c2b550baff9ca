package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"chemtui/chat"
	"chemtui/config"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	// Update spinner FIRST to handle TickMsg before anything else
	if a.dataModel.Streaming {
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		cmds = append(cmds, cmd)
		// Repaint so the thinking banner and pending observations animate
		a.updateViewportContent(true)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// Reserve space for title (1 line), separator (1 line), textarea (3 lines), and status bar (1 line)
		viewportHeight := a.height - 6
		a.viewport.Width = a.width
		a.viewport.Height = viewportHeight
		a.textarea.SetWidth(a.width)

		a.ready = true
		a.updateViewportContent(true)

		// Trigger initial rendering if needed (after we have width)
		if a.dataModel.NeedsInitialRender {
			a.dataModel.NeedsInitialRender = false
			var renderCmds []tea.Cmd
			for i := range a.dataModel.Messages {
				m := &a.dataModel.Messages[i]
				if m.Rendered != "" {
					continue
				}
				if m.Role == chat.RoleUser {
					renderCmds = append(renderCmds, a.renderMarkdownAsync(i, m.Content))
				} else if m.Finalized && !m.Failed {
					renderCmds = append(renderCmds, a.renderMarkdownAsync(i, m.FinalAnswer))
				}
			}
			return a, tea.Batch(renderCmds...)
		}

		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg, cmds)

	default:
		if model, streamCmd, handled := a.handleStreamMsg(msg); handled {
			cmds = append(cmds, streamCmd)
			return model, tea.Batch(cmds...)
		}
		if model, dataCmd, handled := a.handleDataMsg(msg); handled {
			cmds = append(cmds, dataCmd)
			return model, tea.Batch(cmds...)
		}
	}

	// Forward everything else to the focused textarea (cursor blink etc.)
	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

func (a AppView) handleKey(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	kb := a.dataModel.Config.Keybindings
	k := msg.String()

	// PRIORITY 0: Quit works everywhere
	if k == kb.GetActionKey("quit") {
		a.dataModel.Quitting = true
		a.dataModel.CancelExchange()
		return a, tea.Quit
	}

	// PRIORITY 1: Info modal closes on any key
	if a.showInfoModal {
		a.showInfoModal = false
		a.infoModalTitle = ""
		a.infoModalMsg = ""
		return a, nil
	}

	// Help toggle works over any modal
	if k == kb.GetActionKey("help") {
		a.showHelp = !a.showHelp
		return a, nil
	}

	if a.showHelp {
		if k == "esc" {
			a.showHelp = false
		}
		return a, nil
	}

	// Login modal blocks everything until authenticated
	if a.showLogin {
		return a.handleLoginUpdate(msg)
	}

	// PRIORITY 2: Modal toggle shortcuts (close current modal, open new one)
	switch k {
	case kb.GetActionKey("new_conversation"):
		if a.dataModel.Streaming {
			return a, nil
		}
		a.closeAllModals()
		a.dataModel.CurrentConversation = nil
		a.dataModel.Messages = nil
		a.dataModel.Revealer = nil
		a.textarea.Reset()
		a.updateViewportContent(true)
		return a, nil

	case kb.GetActionKey("conversation_manager"):
		wasOpen := a.showConversationManager
		a.closeAllModals()
		a.showConversationManager = !wasOpen
		if a.showConversationManager {
			a.selectedConversationIdx = 0
			return a, a.dataModel.FetchConversations()
		}
		return a, nil

	case kb.GetActionKey("rename_conversation"):
		if a.dataModel.CurrentConversation != nil {
			a.closeAllModals()
			a.showConversationManager = true
			a.convRenameMode = true
			a.convRenameInput.SetValue(a.dataModel.CurrentConversation.Title)
			a.convRenameInput.Focus()
			a.textarea.Blur()
			for i, conv := range a.dataModel.Conversations {
				if conv.ID == a.dataModel.CurrentConversation.ID {
					a.selectedConversationIdx = i
					break
				}
			}
			return a, textinput.Blink
		}
		return a, nil

	case kb.GetActionKey("model_selector"):
		wasOpen := a.showModelSelector
		a.closeAllModals()
		a.showModelSelector = !wasOpen
		if a.showModelSelector {
			for i, m := range a.dataModel.AvailableModels {
				if m.ID == a.dataModel.SelectedModel {
					a.selectedModelIdx = i
					break
				}
			}
			if len(a.dataModel.AvailableModels) == 0 {
				return a, a.dataModel.FetchModelList(true)
			}
		}
		return a, nil

	case kb.GetActionKey("archive_search"):
		wasOpen := a.showArchiveSearch
		a.closeAllModals()
		a.showArchiveSearch = !wasOpen
		if a.showArchiveSearch {
			a.archiveSearchInput.Focus()
			a.archiveSearchInput.SetValue("")
			a.archiveResults = nil
			a.selectedArchiveIdx = 0
			a.textarea.Blur()
			return a, textinput.Blink
		}
		return a, nil

	case kb.GetActionKey("profile"):
		wasOpen := a.showProfile
		a.closeAllModals()
		a.showProfile = !wasOpen
		if a.showProfile {
			a.profileStatus = ""
			return a, tea.Batch(a.dataModel.FetchProfile(), a.dataModel.FetchUsage())
		}
		return a, nil

	case kb.GetActionKey("admin_panel"):
		if !a.dataModel.IsAdmin() {
			a.closeAllModals()
			a.showInfoModal = true
			a.infoModalTitle = "⚠️  Admin Only"
			a.infoModalMsg = "The user management panel requires the admin role."
			return a, nil
		}
		wasOpen := a.showAdminPanel
		a.closeAllModals()
		a.showAdminPanel = !wasOpen
		if a.showAdminPanel {
			a.selectedAdminIdx = 0
			a.adminStatus = ""
			return a, a.dataModel.FetchAdminUsers()
		}
		return a, nil

	case kb.GetActionKey("vector_panel"):
		if !a.dataModel.IsAdmin() {
			a.closeAllModals()
			a.showInfoModal = true
			a.infoModalTitle = "⚠️  Admin Only"
			a.infoModalMsg = "The vector index panel requires the admin role."
			return a, nil
		}
		wasOpen := a.showVectorPanel
		a.closeAllModals()
		a.showVectorPanel = !wasOpen
		if a.showVectorPanel {
			a.vectorResults = nil
			a.vectorStatus = ""
			return a, a.dataModel.FetchVectorStats()
		}
		return a, nil

	case kb.GetActionKey("feedback_panel"):
		wasOpen := a.showFeedbackPanel
		a.closeAllModals()
		a.showFeedbackPanel = !wasOpen
		if a.showFeedbackPanel {
			a.selectedFeedbackIdx = 0
			a.feedbackTab = "pending"
			a.feedbackStatus = ""
			return a, a.dataModel.FetchPendingFeedbacks()
		}
		return a, nil

	case kb.GetActionKey("clear_chat"):
		// Local projection only; the conversation itself stays on the
		// server and reloads from history.
		if a.dataModel.Streaming {
			return a, nil
		}
		a.closeAllModals()
		a.dataModel.Messages = nil
		a.dataModel.Revealer = nil
		a.updateViewportContent(true)
		return a, nil

	case kb.GetActionKey("settings"):
		wasOpen := a.showSettings
		a.closeAllModals()
		a.showSettings = !wasOpen
		if a.showSettings {
			a.initSettings()
		}
		return a, nil

	case kb.GetActionKey("about"):
		wasOpen := a.showAbout
		a.closeAllModals()
		a.showAbout = !wasOpen
		return a, nil
	}

	// PRIORITY 3: Modal-specific key handling (order matches View rendering)
	if a.showModelSelector {
		return a.handleModelSelectorUpdate(msg)
	}

	if a.showSettings {
		return a.handleSettingsUpdate(msg)
	}

	if a.showAdminPanel {
		return a.handleAdminPanelUpdate(msg)
	}

	if a.showVectorPanel {
		return a.handleVectorPanelUpdate(msg)
	}

	if a.showFeedbackPanel {
		return a.handleFeedbackPanelUpdate(msg)
	}

	if a.showProfile {
		return a.handleProfileUpdate(msg)
	}

	if a.showConversationManager {
		return a.handleConversationManagerUpdate(msg)
	}

	if a.showArchiveSearch {
		return a.handleArchiveSearchUpdate(msg)
	}

	if a.showAbout {
		if k == "esc" || k == kb.GetActionKey("close_about") {
			a.showAbout = false
		}
		return a, nil
	}

	// PRIORITY 4: Streaming cancellation and reveal skip (no modal open)
	if k == kb.GetActionKey("cancel_exchange") {
		if a.dataModel.Streaming {
			a.dataModel.CancelExchange()

			// Settle the transcript locally; the stream end that follows
			// sees a finalized message and leaves it alone.
			if last := a.lastAssistantMessage(); last != nil && !last.Finalized {
				last.Thinking = ""
				last.FinalAnswer = "⚠️ Exchange cancelled"
				last.Content = last.FinalAnswer
				last.Failed = true
				last.Finalized = true
			}
			a.updateViewportContent(true)
			return a, nil
		}
		if a.dataModel.Revealer != nil {
			a.dataModel.Revealer.Skip()
			return a, nil
		}
		return a, nil
	}

	// Handle Enter for sending messages - DON'T let textarea process it
	// But allow Alt+Enter to pass through for newlines
	if msg.Type == tea.KeyEnter && !msg.Alt && !a.dataModel.Streaming {
		if strings.TrimSpace(a.textarea.Value()) != "" {
			return a.sendPrompt(a.textarea.Value())
		}
		return a, nil
	}

	switch k {
	case kb.GetActionKey("yank_last_answer"):
		if answer := a.dataModel.LastAnswer(); answer != "" {
			_ = clipboard.WriteAll(answer)
		}
		return a, nil

	case kb.GetActionKey("yank_conversation"):
		var allText strings.Builder
		for _, m := range a.dataModel.Messages {
			role := "Assistant"
			body := m.FinalAnswer
			if m.Role == chat.RoleUser {
				role = "You"
				body = m.Content
			}
			allText.WriteString(fmt.Sprintf("[%s] %s:\n%s\n\n",
				m.Timestamp.Format("15:04"),
				role,
				body))
		}
		_ = clipboard.WriteAll(allText.String())
		return a, nil

	case kb.GetActionKey("scroll_down"), kb.GetActionKey("scroll_down_arrow"):
		a.viewport.LineDown(1)
		return a, nil

	case kb.GetActionKey("scroll_up"), kb.GetActionKey("scroll_up_arrow"):
		a.viewport.LineUp(1)
		return a, nil

	case kb.GetActionKey("half_page_down"), kb.GetActionKey("half_page_down_arrow"):
		a.viewport.HalfViewDown()
		return a, nil

	case kb.GetActionKey("half_page_up"), kb.GetActionKey("half_page_up_arrow"):
		a.viewport.HalfViewUp()
		return a, nil

	case kb.GetActionKey("page_down"):
		a.viewport.ViewDown()
		return a, nil

	case kb.GetActionKey("page_up"):
		a.viewport.ViewUp()
		return a, nil

	case kb.GetActionKey("scroll_to_top"):
		a.viewport.GotoTop()
		return a, nil

	case kb.GetActionKey("scroll_to_bottom"):
		a.viewport.GotoBottom()
		return a, nil

	case kb.GetActionKey("clear_input"):
		a.textarea.Reset()
		return a, nil
	}

	// Everything else goes to the textarea
	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// sendPrompt appends the user and assistant transcript entries and fires
// the streamed exchange.
func (a AppView) sendPrompt(prompt string) (tea.Model, tea.Cmd) {
	a.textarea.Reset()

	if config.DebugLog != nil {
		config.DebugLog.Printf("Enter pressed - sending prompt (%d chars)", len(prompt))
	}

	a.dataModel.Messages = append(a.dataModel.Messages,
		chat.NewUserMessage(prompt),
		chat.NewAssistantMessage(a.dataModel.SelectedModel),
	)
	userIdx := len(a.dataModel.Messages) - 2

	a.dataModel.Streaming = true
	a.dataModel.Revealer = nil
	a.updateViewportContent(true)

	return a, tea.Batch(
		a.renderMarkdownAsync(userIdx, prompt),
		a.dataModel.StartExchange(prompt),
		a.dataModel.WaitForStreamEvent(),
		a.loadingSpinner.Tick,
	)
}

// lastAssistantMessage returns the trailing assistant entry, or nil.
func (a *AppView) lastAssistantMessage() *chat.Message {
	for i := len(a.dataModel.Messages) - 1; i >= 0; i-- {
		if a.dataModel.Messages[i].Role == chat.RoleAssistant {
			return &a.dataModel.Messages[i]
		}
	}
	return nil
}
