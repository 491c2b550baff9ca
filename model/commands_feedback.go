package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// FetchPendingFeedbacks lists requests awaiting expert review
func (m *Model) FetchPendingFeedbacks() tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		pending, err := client.PendingFeedbacks(ctx)
		return FeedbackPendingMsg{Pending: pending, Err: err}
	}
}

// FetchFeedbackHistory loads one page of past reviews
func (m *Model) FetchFeedbackHistory(limit, offset int) tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		page, err := client.FeedbackHistory(ctx, limit, offset)
		return FeedbackHistoryMsg{Page: page, Err: err}
	}
}

// FetchFeedbackStats loads review aggregates
func (m *Model) FetchFeedbackStats() tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		stats, err := client.FeedbackStats(ctx)
		return FeedbackStatsMsg{Stats: stats, Err: err}
	}
}

// ReviewFeedbackCmd approves or rejects a pending request on behalf of
// the named expert
func (m *Model) ReviewFeedbackCmd(id string, approve bool, expertName, message string) tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		action := "reject"
		var serverMsg string
		var err error
		if approve {
			action = "approve"
			serverMsg, err = client.ApproveFeedback(ctx, id, expertName, message)
		} else {
			serverMsg, err = client.RejectFeedback(ctx, id, expertName, message)
		}
		return FeedbackActionMsg{ID: id, Action: action, Message: serverMsg, Err: err}
	}
}

// DeleteFeedbackCmd removes one record from the review history
func (m *Model) DeleteFeedbackCmd(id string) tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.DeleteFeedback(ctx, id)
		return FeedbackActionMsg{ID: id, Action: "delete", Err: err}
	}
}
