package ui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"chemtui/api"
	"chemtui/chat"
	"chemtui/config"
	appmodel "chemtui/model"
)

// handleStreamMsg processes messages produced by a streamed exchange.
// The returned bool reports whether the message was consumed.
func (a AppView) handleStreamMsg(msg tea.Msg) (tea.Model, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case exchangeStartedMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] exchange request failed: %v", msg.Err)
			}
			a.dataModel.Streaming = false

			if errors.Is(msg.Err, api.ErrUnauthorized) {
				// Drop the pending exchange entries and force a re-login.
				if len(a.dataModel.Messages) >= 2 {
					a.dataModel.Messages = a.dataModel.Messages[:len(a.dataModel.Messages)-2]
				}
				a.openLoginModal("Your session expired. Log in again.")
				return a, nil, true
			}

			if last := a.lastAssistantMessage(); last != nil && !last.Finalized {
				last.FinalAnswer = fmt.Sprintf("❌ Request failed: %v", msg.Err)
				last.Content = last.FinalAnswer
				last.Failed = true
				last.Finalized = true
			}
			a.updateViewportContent(true)
			return a, nil, true
		}

		a.dataModel.StreamHandle = msg.Handle
		return a, nil, true

	case streamEventMsg:
		last := a.lastAssistantMessage()
		if last == nil {
			return a, a.dataModel.WaitForStreamEvent(), true
		}

		outcome := chat.Apply(last, msg.Event)
		switch outcome {
		case chat.OutcomeFinal:
			// Answer complete: reveal it rune by rune
			a.dataModel.Revealer = chat.NewTypewriter(last.FinalAnswer)
			a.updateViewportContent(true)
			return a, tea.Batch(appmodel.RevealTick(), a.dataModel.WaitForStreamEvent()), true

		case chat.OutcomeFailed:
			a.updateViewportContent(true)
			return a, tea.Batch(
				a.dataModel.ArchiveExchange(a.dataModel.LastQuestion(), last),
				a.dataModel.WaitForStreamEvent(),
			), true

		case chat.OutcomeUpdated:
			a.updateViewportContent(true)
		}
		return a, a.dataModel.WaitForStreamEvent(), true

	case streamEndMsg:
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] exchange ended")
		}
		a.dataModel.Streaming = false
		a.dataModel.StreamHandle = nil

		// A close without a transport error is a normal end of stream,
		// final event or not. Seal the message with whatever arrived;
		// the transcript stays exactly as delivered.
		if last := a.lastAssistantMessage(); last != nil && !last.Finalized {
			last.Thinking = ""
			last.Finalized = true
			a.updateViewportContent(true)
		}

		// The backend creates the conversation on first exchange;
		// refresh the list so the sidebar data stays current.
		return a, a.dataModel.FetchConversations(), true

	case streamFailedMsg:
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] exchange transport failure: %v", msg.Err)
		}
		a.dataModel.Streaming = false
		a.dataModel.StreamHandle = nil

		if errors.Is(msg.Err, api.ErrUnauthorized) {
			a.openLoginModal("Your session expired. Log in again.")
			return a, nil, true
		}

		if last := a.lastAssistantMessage(); last != nil && !last.Finalized {
			last.Thinking = ""
			last.FinalAnswer = fmt.Sprintf("❌ Connection lost: %v", msg.Err)
			last.Content = last.FinalAnswer
			last.Failed = true
			last.Finalized = true
		}
		a.updateViewportContent(true)
		return a, nil, true

	case revealTickMsg:
		revealer := a.dataModel.Revealer
		if revealer == nil {
			return a, nil, true
		}

		last := a.lastAssistantMessage()
		if last == nil {
			a.dataModel.Revealer = nil
			return a, nil, true
		}

		view, done := revealer.Tick()
		last.Content = view
		a.updateViewportContent(true)

		if !done {
			return a, appmodel.RevealTick(), true
		}

		// Reveal finished: render the full answer as markdown and
		// archive the exchange locally.
		a.dataModel.Revealer = nil
		idx := len(a.dataModel.Messages) - 1
		return a, tea.Batch(
			a.renderMarkdownAsync(idx, last.FinalAnswer),
			a.dataModel.ArchiveExchange(a.dataModel.LastQuestion(), last),
		), true

	case markdownRenderedMsg:
		if msg.MessageIndex >= 0 && msg.MessageIndex < len(a.dataModel.Messages) {
			a.dataModel.Messages[msg.MessageIndex].Rendered = msg.Rendered
			a.updateViewportContent(true)
		}
		return a, nil, true

	case archiveRecordedMsg:
		// Failures are already logged by the model layer.
		return a, nil, true
	}

	return a, nil, false
}
