package ui

import (
	"chemtui/model"
)

// Message type aliases - the payloads are defined in the model package
type exchangeStartedMsg = model.ExchangeStartedMsg
type streamEventMsg = model.StreamEventMsg
type streamEndMsg = model.StreamEndMsg
type streamFailedMsg = model.StreamFailedMsg
type revealTickMsg = model.RevealTickMsg
type markdownRenderedMsg = model.MarkdownRenderedMsg

type loginResultMsg = model.LoginResultMsg
type registerResultMsg = model.RegisterResultMsg
type currentUserMsg = model.CurrentUserMsg
type profileMsg = model.ProfileMsg
type usageMsg = model.UsageMsg
type profileUpdatedMsg = model.ProfileUpdatedMsg
type loggedOutMsg = model.LoggedOutMsg

type conversationsListMsg = model.ConversationsListMsg
type conversationLoadedMsg = model.ConversationLoadedMsg
type conversationRenamedMsg = model.ConversationRenamedMsg
type conversationDeletedMsg = model.ConversationDeletedMsg
type modelsListMsg = model.ModelsListMsg

type adminUsersMsg = model.AdminUsersMsg
type adminActionMsg = model.AdminActionMsg

type vectorStatsMsg = model.VectorStatsMsg
type vectorSearchMsg = model.VectorSearchMsg
type vectorActionMsg = model.VectorActionMsg

type feedbackPendingMsg = model.FeedbackPendingMsg
type feedbackHistoryMsg = model.FeedbackHistoryMsg
type feedbackStatsMsg = model.FeedbackStatsMsg
type feedbackActionMsg = model.FeedbackActionMsg

type archiveRecordedMsg = model.ArchiveRecordedMsg
type archiveSearchMsg = model.ArchiveSearchMsg

type SettingFieldType int

const (
	SettingTypeDataDir SettingFieldType = iota
	SettingTypeServerURL
	SettingTypeModel
	SettingTypeTemperature
	SettingTypeMaxIterations
	SettingTypeArchiveEnabled
)

type SettingField struct {
	Label        string
	Value        string
	DefaultValue string
	Type         SettingFieldType
	ErrorMsg     string
}
