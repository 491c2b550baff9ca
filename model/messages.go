package model

import (
	"chemtui/api"
	"chemtui/storage"
	"chemtui/stream"
)

// Streaming exchange messages

type StreamEventMsg struct {
	Event stream.Event
}

type StreamEndMsg struct{}

type StreamFailedMsg struct {
	Err error
}

// RevealTickMsg paces the typewriter reveal of a finished answer.
type RevealTickMsg struct{}

type MarkdownRenderedMsg struct {
	MessageIndex int
	Rendered     string
}

// Authentication messages

type LoginResultMsg struct {
	Username string
	Token    string
	Err      error
}

type RegisterResultMsg struct {
	Username string
	Err      error
}

type CurrentUserMsg struct {
	User *api.User
	Err  error
}

type ProfileMsg struct {
	Profile *api.Profile
	Err     error
}

type UsageMsg struct {
	Usage *api.Usage
	Err   error
}

type ProfileUpdatedMsg struct {
	Err error
}

type LoggedOutMsg struct{}

// Conversation history messages

type ConversationsListMsg struct {
	Conversations []api.Conversation
	Err           error
}

type ConversationLoadedMsg struct {
	Detail *api.ConversationDetail
	Err    error
}

type ConversationRenamedMsg struct {
	Err error
}

type ConversationDeletedMsg struct {
	ID  string
	Err error
}

type ModelsListMsg struct {
	Models       []api.ModelInfo
	Err          error
	ShowSelector bool
}

// Admin panel messages

type AdminUsersMsg struct {
	Users []api.AdminUser
	Err   error
}

type AdminActionMsg struct {
	Action string // "set_admin" or "delete"
	UserID int
	Err    error
}

// Vector index messages

type VectorStatsMsg struct {
	Stats *api.VectorStats
	Err   error
}

type VectorSearchMsg struct {
	Results []api.VectorSearchResult
	Err     error
}

type VectorActionMsg struct {
	Action  string // "build", "refresh", "delete" or "batch-update"
	Message string
	Err     error
}

// Feedback review messages

type FeedbackPendingMsg struct {
	Pending []api.PendingFeedback
	Err     error
}

type FeedbackHistoryMsg struct {
	Page *api.FeedbackHistoryPage
	Err  error
}

type FeedbackStatsMsg struct {
	Stats *api.FeedbackStats
	Err   error
}

type FeedbackActionMsg struct {
	ID      string
	Action  string // "approve", "reject" or "delete"
	Message string
	Err     error
}

// Local archive messages

type ArchiveRecordedMsg struct {
	Err error
}

type ArchiveSearchMsg struct {
	Matches []storage.ExchangeMatch
	Err     error
}
