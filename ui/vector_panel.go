package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// vectorSearchTopK bounds test-search results shown in the panel.
const vectorSearchTopK = 5

func (a AppView) handleVectorPanelUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.dataModel.Config.Keybindings
	k := msg.String()

	if a.confirmDeleteIndex {
		switch k {
		case "y":
			a.confirmDeleteIndex = false
			a.vectorStatus = "Deleting index..."
			return a, a.dataModel.DeleteVectorIndexCmd()
		case "n", "esc":
			a.confirmDeleteIndex = false
		}
		return a, nil
	}

	if a.vectorSearchMode {
		switch k {
		case "esc":
			a.vectorSearchMode = false
			a.vectorSearchInput.Blur()
			a.vectorResults = nil
			return a, nil

		case "enter":
			query := strings.TrimSpace(a.vectorSearchInput.Value())
			if query == "" {
				return a, nil
			}
			a.vectorStatus = "Searching..."
			return a, a.dataModel.VectorSearchCmd(query, vectorSearchTopK)
		}

		var cmd tea.Cmd
		a.vectorSearchInput, cmd = a.vectorSearchInput.Update(msg)
		return a, cmd
	}

	switch k {
	case "esc":
		a.closeAllModals()
		return a, nil

	case kb.GetActionKey("vector_build"):
		a.vectorStatus = "Building index, this can take a while..."
		return a, a.dataModel.BuildVectorIndexCmd()

	case kb.GetActionKey("vector_refresh"):
		a.vectorStatus = "Refreshing index..."
		return a, a.dataModel.RefreshVectorIndexCmd()

	case kb.GetActionKey("vector_batch"):
		a.vectorStatus = "Backfilling embeddings..."
		return a, a.dataModel.BatchUpdateVectorsCmd()

	case kb.GetActionKey("vector_delete"):
		a.confirmDeleteIndex = true
		return a, nil

	case kb.GetActionKey("vector_search"):
		a.vectorSearchMode = true
		a.vectorSearchInput.SetValue("")
		a.vectorSearchInput.Focus()
		a.vectorResults = nil
		return a, textinput.Blink

	case "r":
		a.vectorStatus = "Reloading stats..."
		return a, a.dataModel.FetchVectorStats()
	}

	return a, nil
}

func (a AppView) renderVectorPanel() string {
	modalWidth := a.width - 10
	if modalWidth > 90 {
		modalWidth = 90
	}

	if a.confirmDeleteIndex {
		return RenderYesNoModal(
			"⚠️  Delete Index",
			"Delete the entire vector index?\nConversations stay; embeddings must be rebuilt.",
			a.width, a.height)
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("🧭 Vector Index")

	var header string
	switch {
	case a.vectorSearchMode:
		header = a.vectorSearchInput.View()
	case a.vectorStats != nil:
		engine := "in-memory"
		if a.vectorStats.UseFAISS {
			engine = "FAISS"
		}
		header = fmt.Sprintf("%d vectors  •  %s  •  %s", a.vectorStats.TotalVectors, engine, a.vectorStats.EmbeddingModel)
	default:
		header = "Loading index stats..."
	}

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	var rows []string

	if a.vectorSearchMode {
		if len(a.vectorResults) == 0 {
			rows = append(rows, lipgloss.NewStyle().
				Foreground(dimColor).
				Italic(true).
				Align(lipgloss.Center).
				Width(modalWidth).
				Render("Enter a query and press Enter"))
		} else {
			for _, res := range a.vectorResults {
				head := fmt.Sprintf("  %s  (similarity %.3f)",
					runewidth.Truncate(res.ConversationID, modalWidth-28, "..."), res.Similarity)
				detail := "    " + runewidth.Truncate(
					strings.Join(res.KeyEntities, ", ")+"  |  "+strings.Join(res.Topics, ", "),
					modalWidth-8, "...")
				rows = append(rows, lipgloss.NewStyle().Width(modalWidth).Foreground(accentColor).Render(head))
				rows = append(rows, lipgloss.NewStyle().Width(modalWidth).Foreground(dimColor).Render(detail))
			}
		}
	} else if a.vectorStats != nil {
		stats := a.vectorStats
		labelStyle := lipgloss.NewStyle().Foreground(dimColor)
		detail := func(label, value string) string {
			return lipgloss.NewStyle().Width(modalWidth).Render(
				fmt.Sprintf("  %s %s", labelStyle.Render(label), value))
		}
		rows = append(rows,
			detail("Embedding model: ", stats.EmbeddingModel),
			detail("Embeddings:      ", availabilityMark(stats.EmbeddingsAvailable)),
			detail("FAISS:           ", availabilityMark(stats.FAISSAvailable)),
			detail("Total vectors:   ", fmt.Sprintf("%d", stats.TotalVectors)),
		)
		if stats.Dimension > 0 {
			rows = append(rows, detail("Dimension:       ", fmt.Sprintf("%d", stats.Dimension)))
		}
		if stats.IndexType != "" {
			rows = append(rows, detail("Index type:      ", stats.IndexType))
		}
	} else {
		rows = append(rows, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render("No stats loaded"))
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	rows = append([]string{emptyLine}, rows...)
	rows = append(rows, emptyLine)

	if a.vectorStatus != "" {
		rows = append(rows, lipgloss.NewStyle().
			Width(modalWidth).
			Align(lipgloss.Center).
			Foreground(accentColor).
			Render(a.vectorStatus))
	}

	var footerText string
	if a.vectorSearchMode {
		footerText = FormatFooter("Enter", "Search", "Esc", "Back to stats")
	} else {
		footerText = FormatFooter("b", "Build", "f", "Refresh", "u", "Backfill", "d", "Delete index", "/", "Test search", "r", "Reload", "Esc", "Close")
	}
	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footerText)

	var sections []string
	sections = append(sections, titleSection)
	sections = append(sections, headerSection)
	sections = append(sections, rows...)
	sections = append(sections, footerSection)

	content := strings.Join(sections, "\n")

	modalStyle := lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Align(lipgloss.Center, lipgloss.Center)

	return modalStyle.Render(content)
}

func availabilityMark(ok bool) string {
	if ok {
		return "✓ available"
	}
	return "✗ unavailable"
}
