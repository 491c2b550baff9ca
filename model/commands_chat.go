package model

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chemtui/api"
	"chemtui/chat"
	"chemtui/config"
	"chemtui/stream"
)

// ExchangeStartedMsg carries the cancel handle for an exchange that just
// went on the wire.
type ExchangeStartedMsg struct {
	Handle *chat.Handle
	Err    error
}

// StartExchange begins a streamed exchange for the typed prompt. The user
// and assistant transcript entries must already be appended. Stream
// events arrive as StreamEventMsg via WaitForStreamEvent; the terminal
// outcome is StreamEndMsg or StreamFailedMsg.
func (m *Model) StartExchange(prompt string) tea.Cmd {
	req := api.StreamChatRequest{
		Input:         prompt,
		Model:         m.SelectedModel,
		ToolsModel:    m.SelectedModel,
		Temperature:   m.Config.Temperature,
		MaxIterations: m.Config.MaxIterations,
		Streaming:     true,
		APIKeys:       map[string]string{},
	}
	if m.CurrentConversation != nil {
		req.ConversationID = m.CurrentConversation.ID
	}

	// Buffered so the pump goroutine never blocks behind a slow repaint.
	ch := make(chan tea.Msg, 64)
	m.streamCh = ch

	session := m.Session
	return func() tea.Msg {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[model] starting exchange (model=%s, conversation=%s)", req.Model, req.ConversationID)
		}

		handle, err := session.Send(context.Background(), req, chat.Callbacks{
			OnEvent: func(ev stream.Event) {
				ch <- StreamEventMsg{Event: ev}
			},
			OnEnd: func() {
				ch <- StreamEndMsg{}
			},
			OnError: func(err error) {
				ch <- StreamFailedMsg{Err: err}
			},
		})
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[model] exchange request failed: %v", err)
			}
			return ExchangeStartedMsg{Err: err}
		}
		return ExchangeStartedMsg{Handle: handle}
	}
}

// WaitForStreamEvent blocks for the next message from the stream pump.
func (m *Model) WaitForStreamEvent() tea.Cmd {
	ch := m.streamCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return <-ch
	}
}

// CancelExchange aborts the in-flight exchange, if any.
func (m *Model) CancelExchange() {
	if m.StreamHandle != nil {
		m.StreamHandle.Cancel()
	}
}

// RevealTick schedules the next typewriter advance.
func RevealTick() tea.Cmd {
	return tea.Tick(chat.RevealInterval, func(time.Time) tea.Msg {
		return RevealTickMsg{}
	})
}
