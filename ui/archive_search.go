package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func (a AppView) handleArchiveSearchUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closeAllModals()
		return a, nil

	case "alt+j", "alt+down":
		if a.selectedArchiveIdx < len(a.archiveResults)-1 {
			a.selectedArchiveIdx++
		}
		return a, nil

	case "alt+k", "alt+up":
		if a.selectedArchiveIdx > 0 {
			a.selectedArchiveIdx--
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.archiveSearchInput, cmd = a.archiveSearchInput.Update(msg)

	// Search as the query is typed. The archive is local, so this is cheap.
	query := a.archiveSearchInput.Value()
	a.selectedArchiveIdx = 0
	if strings.TrimSpace(query) == "" {
		a.archiveResults = nil
		return a, cmd
	}
	return a, tea.Batch(cmd, a.dataModel.SearchArchive(query))
}

func (a AppView) renderArchiveSearch() string {
	modalWidth := a.width - 10
	if modalWidth > 90 {
		modalWidth = 90
	}
	modalHeight := a.height - 6

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Search Local Archive")

	headerSection := lipgloss.NewStyle().
		Align(lipgloss.Left).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(a.archiveSearchInput.View())

	var rows []string
	maxLines := modalHeight - 8

	if len(a.archiveResults) == 0 {
		emptyMsg := "Type to search archived exchanges"
		if strings.TrimSpace(a.archiveSearchInput.Value()) != "" {
			emptyMsg = "No matches found"
		}
		rows = append(rows, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	} else {
		// Each result takes two lines, question and preview.
		maxResults := maxLines / 2
		startIdx := 0
		endIdx := len(a.archiveResults)
		if len(a.archiveResults) > maxResults {
			if a.selectedArchiveIdx < maxResults/2 {
				endIdx = maxResults
			} else if a.selectedArchiveIdx >= len(a.archiveResults)-maxResults/2 {
				startIdx = len(a.archiveResults) - maxResults
			} else {
				startIdx = a.selectedArchiveIdx - maxResults/2
				endIdx = startIdx + maxResults
			}
		}

		for i := startIdx; i < endIdx && i < len(a.archiveResults); i++ {
			hit := a.archiveResults[i]

			indicator := "  "
			if i == a.selectedArchiveIdx {
				indicator = "▶ "
			}

			failedMarker := ""
			if hit.Failed {
				failedMarker = " [failed]"
			}

			date := hit.CreatedAt.Format("2006-01-02 15:04")
			question := runewidth.Truncate(hit.Question, modalWidth-len(indicator)-len(failedMarker)-len(date)-6, "...")

			spacing := modalWidth - len(indicator) - runewidth.StringWidth(question) - len(failedMarker) - len(date) - 4
			if spacing < 1 {
				spacing = 1
			}

			headLine := indicator + question + failedMarker + strings.Repeat(" ", spacing) + date
			headStyle := lipgloss.NewStyle()
			if i == a.selectedArchiveIdx {
				headStyle = headStyle.Foreground(successColor).Bold(true)
			} else if hit.Failed {
				headStyle = headStyle.Foreground(dangerColor)
			}

			preview := "    " + runewidth.Truncate(hit.Preview, modalWidth-8, "...")

			rows = append(rows, lipgloss.NewStyle().Width(modalWidth).Render(headStyle.Render(headLine)))
			rows = append(rows, lipgloss.NewStyle().Width(modalWidth).Foreground(dimColor).Render(preview))
		}
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	rows = append([]string{emptyLine}, rows...)
	rows = append(rows, emptyLine)

	countLine := lipgloss.NewStyle().
		Foreground(dimColor).
		Width(modalWidth).
		Align(lipgloss.Center).
		Render(fmt.Sprintf("%d matches", len(a.archiveResults)))
	rows = append(rows, countLine)

	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(FormatFooter("Type", "to search", "Alt+J/K", "Navigate", "Esc", "Close"))

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
