package model

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Index maintenance runs asynchronously server-side, so this timeout
// only covers the acknowledgement.
const vectorActionTimeout = 30 * time.Second

// FetchVectorStats loads index-level counters for the vector panel
func (m *Model) FetchVectorStats() tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		stats, err := client.VectorStats(ctx)
		return VectorStatsMsg{Stats: stats, Err: err}
	}
}

// BuildVectorIndexCmd builds the index from scratch
func (m *Model) BuildVectorIndexCmd() tea.Cmd {
	return m.vectorAction("build", func(ctx context.Context) (string, error) {
		return m.Client.BuildVectorIndex(ctx)
	})
}

// RefreshVectorIndexCmd re-embeds changed conversations
func (m *Model) RefreshVectorIndexCmd() tea.Cmd {
	return m.vectorAction("refresh", func(ctx context.Context) (string, error) {
		return m.Client.RefreshVectorIndex(ctx)
	})
}

// DeleteVectorIndexCmd drops the index entirely
func (m *Model) DeleteVectorIndexCmd() tea.Cmd {
	return m.vectorAction("delete", func(ctx context.Context) (string, error) {
		return m.Client.DeleteVectorIndex(ctx)
	})
}

// BatchUpdateVectorsCmd backfills embeddings for unindexed conversations
func (m *Model) BatchUpdateVectorsCmd() tea.Cmd {
	return m.vectorAction("batch-update", func(ctx context.Context) (string, error) {
		return m.Client.BatchUpdateVectors(ctx)
	})
}

func (m *Model) vectorAction(action string, call func(context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), vectorActionTimeout)
		defer cancel()

		msg, err := call(ctx)
		return VectorActionMsg{Action: action, Message: msg, Err: err}
	}
}

// VectorSearchCmd runs a test similarity query against the index
func (m *Model) VectorSearchCmd(query string, topK int) tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		results, err := client.TestVectorSearch(ctx, query, topK)
		return VectorSearchMsg{Results: results, Err: err}
	}
}
