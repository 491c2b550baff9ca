package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chemtui/api"
	appmodel "chemtui/model"
	"chemtui/storage"
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI Components
	viewport viewport.Model
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	// Loading spinner (bubbles/spinner)
	loadingSpinner spinner.Model

	showHelp  bool
	showAbout bool

	// Login / register modal
	showLogin          bool
	loginRegisterMode  bool // false = login, true = register
	loginUsernameInput textinput.Model
	loginEmailInput    textinput.Model
	loginPasswordInput textinput.Model
	loginFocusedField  int
	loginBusy          bool
	loginError         string
	loginNotice        string

	// Model selector
	showModelSelector bool
	selectedModelIdx  int
	modelFilterMode   bool
	modelFilterInput  textinput.Model
	filteredModelList []api.ModelInfo

	// Conversation manager
	showConversationManager bool
	selectedConversationIdx int
	convRenameMode          bool
	convRenameInput         textinput.Model
	convFilterMode          bool
	convFilterInput         textinput.Model
	filteredConversations   []api.Conversation
	confirmDeleteConv       *api.Conversation
	conversationLoading     bool

	// Set once the first conversation list after startup or login has
	// been handled; gates the resume-most-recent behavior.
	openedInitialConversation bool

	// Archive search (local exchange history)
	showArchiveSearch  bool
	archiveSearchInput textinput.Model
	archiveResults     []storage.ExchangeMatch
	selectedArchiveIdx int

	// Profile modal
	showProfile          bool
	profile              *api.Profile
	usage                *api.Usage
	profileEmailEditMode bool
	profileEmailInput    textinput.Model
	profileStatus        string

	// Admin users panel
	showAdminPanel    bool
	adminUsers        []api.AdminUser
	selectedAdminIdx  int
	confirmDeleteUser *api.AdminUser
	adminStatus       string

	// Vector index panel
	showVectorPanel    bool
	vectorStats        *api.VectorStats
	vectorResults      []api.VectorSearchResult
	vectorSearchMode   bool
	vectorSearchInput  textinput.Model
	confirmDeleteIndex bool
	vectorStatus       string

	// Feedback review panel
	showFeedbackPanel     bool
	feedbackTab           string // "pending", "history" or "stats"
	feedbackPending       []api.PendingFeedback
	feedbackHistory       *api.FeedbackHistoryPage
	feedbackStats         *api.FeedbackStats
	selectedFeedbackIdx   int
	feedbackReviewMode    bool // typing the expert response for approve/reject
	feedbackReviewApprove bool
	feedbackResponseInput textinput.Model
	confirmDeleteFeedback *api.FeedbackRecord
	feedbackStatus        string

	// Settings modal
	showSettings        bool
	settingsFields      []SettingField
	selectedSettingIdx  int
	settingsEditMode    bool
	settingsEditInput   textinput.Model
	settingsHasChanges  bool
	settingsConfirmExit bool
	settingsSaveError   string

	// Info modal state (for simple notifications/errors)
	showInfoModal  bool
	infoModalTitle string
	infoModalMsg   string
}

func NewAppView(dataModel *appmodel.Model) AppView {
	ta := textarea.New()
	ta.Placeholder = "Ask a chemistry question..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Custom KeyMap: Alt+Enter for newline, Enter alone does nothing (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	// Set dynamic prompt: "> " for first line, "| " for subsequent lines
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	vp := viewport.New(0, 0)

	modelFilterInput := textinput.New()
	modelFilterInput.Prompt = "Filter: "
	modelFilterInput.CharLimit = 64

	convFilterInput := textinput.New()
	convFilterInput.Prompt = "Filter: "
	convFilterInput.CharLimit = 64

	convRenameInput := textinput.New()
	convRenameInput.Prompt = "Title: "
	convRenameInput.CharLimit = 200

	archiveSearchInput := textinput.New()
	archiveSearchInput.Prompt = "Search archive: "
	archiveSearchInput.CharLimit = 100

	loginUsernameInput := textinput.New()
	loginUsernameInput.Prompt = "Username: "
	loginUsernameInput.CharLimit = 64

	loginEmailInput := textinput.New()
	loginEmailInput.Prompt = "Email:    "
	loginEmailInput.CharLimit = 128

	loginPasswordInput := textinput.New()
	loginPasswordInput.Prompt = "Password: "
	loginPasswordInput.EchoMode = textinput.EchoPassword
	loginPasswordInput.EchoCharacter = '•'
	loginPasswordInput.CharLimit = 128

	profileEmailInput := textinput.New()
	profileEmailInput.Prompt = "New email: "
	profileEmailInput.CharLimit = 128

	vectorSearchInput := textinput.New()
	vectorSearchInput.Prompt = "Query: "
	vectorSearchInput.CharLimit = 200

	feedbackResponseInput := textinput.New()
	feedbackResponseInput.Prompt = "Response: "
	feedbackResponseInput.CharLimit = 500

	a := AppView{
		dataModel:             dataModel,
		textarea:              ta,
		viewport:              vp,
		loadingSpinner:        spinner.New(),
		modelFilterInput:      modelFilterInput,
		convFilterInput:       convFilterInput,
		convRenameInput:       convRenameInput,
		archiveSearchInput:    archiveSearchInput,
		loginUsernameInput:    loginUsernameInput,
		loginEmailInput:       loginEmailInput,
		loginPasswordInput:    loginPasswordInput,
		profileEmailInput:     profileEmailInput,
		vectorSearchInput:     vectorSearchInput,
		feedbackResponseInput: feedbackResponseInput,
		feedbackTab:           "pending",
	}
	a.loadingSpinner.Spinner = spinner.Dot

	// No saved session means the user has to log in first.
	if dataModel.Client.Token() == "" {
		a.openLoginModal("")
	}

	return a
}

func (a AppView) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}

	if a.dataModel.Client.Token() != "" {
		// Saved token from a previous run. Validate it in the background;
		// a 401 pushes the login modal back up.
		cmds = append(cmds,
			a.dataModel.FetchCurrentUser(),
			a.dataModel.FetchModelList(false),
			a.dataModel.FetchConversations(),
		)
	}

	return tea.Batch(cmds...)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading ChemTUI..."
	}

	// Modal rendering order (top to bottom layers):
	// 0. Info modal
	// 1. Help (always on top - can peek while in other modals)
	// 2. Login / register
	// 3. Model selector
	// 4. Settings
	// 5. Panels (admin, vector, feedback, profile)
	// 6. Conversation manager / archive search
	// 7. About

	if a.showInfoModal {
		return RenderConfirmationModal(ConfirmationState{
			Active:  true,
			Title:   a.infoModalTitle,
			Message: a.infoModalMsg,
		}, a.width, a.height)
	}

	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	if a.showLogin {
		return a.renderLoginModal()
	}

	if a.showModelSelector {
		return renderModelSelector(a.dataModel.AvailableModels, a.selectedModelIdx, a.dataModel.SelectedModel, a.modelFilterMode, a.modelFilterInput, a.filteredModelList, a.width, a.height)
	}

	if a.showSettings {
		return renderSettings(a.settingsFields, a.selectedSettingIdx, a.settingsEditMode, a.settingsEditInput, a.settingsHasChanges, a.settingsConfirmExit, a.settingsSaveError, a.width, a.height)
	}

	if a.showAdminPanel {
		return a.renderAdminPanel()
	}

	if a.showVectorPanel {
		return a.renderVectorPanel()
	}

	if a.showFeedbackPanel {
		return a.renderFeedbackPanel()
	}

	if a.showProfile {
		return a.renderProfileModal()
	}

	if a.showConversationManager {
		return a.renderConversationManager()
	}

	if a.showArchiveSearch {
		return a.renderArchiveSearch()
	}

	if a.showAbout {
		return renderAboutModal(a, a.width, a.height, a.dataModel.Version)
	}

	// Title bar - "ChemTUI - Model - Conversation"
	appText := AssistantStyle.Render("ChemTUI")
	modelText := TitleStyle.Render(fmt.Sprintf(" - %s", a.dataModel.SelectedModel))
	convName := "New Conversation"
	if a.dataModel.CurrentConversation != nil && a.dataModel.CurrentConversation.Title != "" {
		convName = a.dataModel.CurrentConversation.Title
	}
	convText := UserStyle.Render(fmt.Sprintf(" - %s", convName))

	userText := ""
	if a.dataModel.CurrentUser != nil {
		indicator := " | 👤 " + a.dataModel.CurrentUser.Username
		if a.dataModel.IsAdmin() {
			indicator += " (admin)"
		}
		userText = DimStyle.Render(indicator)
	}

	title := appText + modelText + convText + userText

	// Separator with bottom margin for header (empty line forces spacing)
	separator := ""

	viewportView := a.viewport.View()
	inputView := a.textarea.View()

	// Status bar with bold user green descriptions (main chat uses user green)
	kb := a.dataModel.Config.Keybindings
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	statusBar := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  Alt+Enter %s  Enter %s  %s %s",
		kb.DisplayActionKey("quit"), descStyle.Render("Quit"),
		kb.DisplayActionKey("conversation_manager"), descStyle.Render("History"),
		kb.DisplayActionKey("model_selector"), descStyle.Render("Models"),
		kb.DisplayActionKey("help"), descStyle.Render("Help"),
		descStyle.Render("New Line"),
		descStyle.Render("Send"),
		kb.DisplayActionKey("yank_last_answer"), descStyle.Render("Copy"),
	)
	statusBar = StatusStyle.Render(statusBar)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		separator,
		viewportView,
		inputView,
		statusBar,
	)
}

func (a AppView) getModelList() []api.ModelInfo {
	if a.modelFilterMode && len(a.filteredModelList) > 0 {
		return a.filteredModelList
	}
	return a.dataModel.AvailableModels
}

func (a AppView) getConversationList() []api.Conversation {
	if a.convFilterMode && len(a.filteredConversations) > 0 {
		return a.filteredConversations
	}
	return a.dataModel.Conversations
}

func (a *AppView) openLoginModal(notice string) {
	a.closeAllModals()
	a.showLogin = true
	a.loginRegisterMode = false
	a.loginBusy = false
	a.loginError = ""
	a.loginNotice = notice
	a.loginFocusedField = 0
	a.loginUsernameInput.SetValue("")
	a.loginPasswordInput.SetValue("")
	a.loginEmailInput.SetValue("")
	a.loginUsernameInput.Focus()
	a.loginPasswordInput.Blur()
	a.loginEmailInput.Blur()
	a.textarea.Blur()
}

func (a *AppView) closeAllModals() {
	a.showInfoModal = false
	a.showHelp = false
	a.showLogin = false
	a.showModelSelector = false
	a.showConversationManager = false
	a.showArchiveSearch = false
	a.showProfile = false
	a.showAdminPanel = false
	a.showVectorPanel = false
	a.showFeedbackPanel = false
	a.showSettings = false
	a.showAbout = false

	a.convRenameMode = false
	a.convFilterMode = false
	a.confirmDeleteConv = nil
	a.confirmDeleteUser = nil
	a.confirmDeleteIndex = false
	a.confirmDeleteFeedback = nil

	a.modelFilterMode = false
	a.vectorSearchMode = false
	a.feedbackReviewMode = false
	a.profileEmailEditMode = false

	a.settingsEditMode = false
	a.settingsConfirmExit = false

	for _, in := range []*textinput.Model{
		&a.modelFilterInput,
		&a.convFilterInput,
		&a.convRenameInput,
		&a.archiveSearchInput,
		&a.loginUsernameInput,
		&a.loginEmailInput,
		&a.loginPasswordInput,
		&a.profileEmailInput,
		&a.vectorSearchInput,
		&a.feedbackResponseInput,
		&a.settingsEditInput,
	} {
		if in.Focused() {
			in.Blur()
		}
	}

	a.textarea.Focus()
}
