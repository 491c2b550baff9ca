package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"chemtui/api"
)

// conversationTitles adapts the conversation list to fuzzy.Source.
type conversationTitles []api.Conversation

func (c conversationTitles) String(i int) string { return c[i].Title }
func (c conversationTitles) Len() int            { return len(c) }

func (a AppView) handleConversationManagerUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()

	// Delete confirmation takes priority
	if a.confirmDeleteConv != nil {
		switch k {
		case "y":
			conv := a.confirmDeleteConv
			a.confirmDeleteConv = nil
			return a, a.dataModel.DeleteConversationCmd(conv.ID)
		case "n", "esc":
			a.confirmDeleteConv = nil
		}
		return a, nil
	}

	if a.convRenameMode {
		switch k {
		case "esc":
			a.convRenameMode = false
			a.convRenameInput.Blur()
			return a, nil

		case "enter":
			title := strings.TrimSpace(a.convRenameInput.Value())
			list := a.getConversationList()
			if title == "" || a.selectedConversationIdx >= len(list) {
				return a, nil
			}
			conv := list[a.selectedConversationIdx]
			a.convRenameMode = false
			a.convRenameInput.Blur()
			if a.dataModel.CurrentConversation != nil && a.dataModel.CurrentConversation.ID == conv.ID {
				a.dataModel.CurrentConversation.Title = title
			}
			return a, a.dataModel.RenameConversationCmd(conv.ID, title)
		}

		var cmd tea.Cmd
		a.convRenameInput, cmd = a.convRenameInput.Update(msg)
		return a, cmd
	}

	if a.convFilterMode {
		switch k {
		case "esc":
			a.convFilterMode = false
			a.convFilterInput.Blur()
			a.filteredConversations = nil
			a.selectedConversationIdx = 0
			return a, nil

		case "enter":
			return a.openSelectedConversation()

		case "alt+j", "alt+down":
			if a.selectedConversationIdx < len(a.getConversationList())-1 {
				a.selectedConversationIdx++
			}
			return a, nil

		case "alt+k", "alt+up":
			if a.selectedConversationIdx > 0 {
				a.selectedConversationIdx--
			}
			return a, nil
		}

		var cmd tea.Cmd
		a.convFilterInput, cmd = a.convFilterInput.Update(msg)

		query := a.convFilterInput.Value()
		if query == "" {
			a.filteredConversations = nil
		} else {
			matches := fuzzy.FindFrom(query, conversationTitles(a.dataModel.Conversations))
			filtered := make([]api.Conversation, 0, len(matches))
			for _, match := range matches {
				filtered = append(filtered, a.dataModel.Conversations[match.Index])
			}
			a.filteredConversations = filtered
		}
		a.selectedConversationIdx = 0
		return a, cmd
	}

	switch k {
	case "esc":
		a.closeAllModals()
		return a, nil

	case "j", "down":
		if a.selectedConversationIdx < len(a.getConversationList())-1 {
			a.selectedConversationIdx++
		}
		return a, nil

	case "k", "up":
		if a.selectedConversationIdx > 0 {
			a.selectedConversationIdx--
		}
		return a, nil

	case "enter":
		return a.openSelectedConversation()

	case "e":
		list := a.getConversationList()
		if a.selectedConversationIdx < len(list) {
			a.convRenameMode = true
			a.convRenameInput.SetValue(list[a.selectedConversationIdx].Title)
			a.convRenameInput.Focus()
			return a, textinput.Blink
		}
		return a, nil

	case "d":
		list := a.getConversationList()
		if a.selectedConversationIdx < len(list) {
			conv := list[a.selectedConversationIdx]
			a.confirmDeleteConv = &conv
		}
		return a, nil

	case "/":
		a.convFilterMode = true
		a.convFilterInput.SetValue("")
		a.convFilterInput.Focus()
		a.filteredConversations = nil
		a.selectedConversationIdx = 0
		return a, textinput.Blink

	case "r":
		return a, a.dataModel.FetchConversations()
	}

	return a, nil
}

func (a AppView) openSelectedConversation() (tea.Model, tea.Cmd) {
	list := a.getConversationList()
	if a.selectedConversationIdx < 0 || a.selectedConversationIdx >= len(list) {
		return a, nil
	}
	conv := list[a.selectedConversationIdx]
	a.conversationLoading = true
	return a, a.dataModel.LoadConversation(conv.ID)
}

func (a AppView) renderConversationManager() string {
	modalWidth := a.width - 10
	if modalWidth > 90 {
		modalWidth = 90
	}
	modalHeight := a.height - 6

	if a.confirmDeleteConv != nil {
		return RenderYesNoModal(
			"⚠️  Delete Conversation",
			fmt.Sprintf("Delete \"%s\" and its %d messages?\nLocal archive entries are removed too.",
				a.confirmDeleteConv.Title, a.confirmDeleteConv.MessageCount),
			a.width, a.height)
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Conversation History")

	// Header: filter input, rename input or count
	var header string
	switch {
	case a.convRenameMode:
		header = a.convRenameInput.View()
	case a.convFilterMode:
		header = a.convFilterInput.View()
	default:
		header = fmt.Sprintf("%d conversations", len(a.dataModel.Conversations))
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

	displayList := a.getConversationList()

	var rows []string
	maxLines := modalHeight - 8

	if len(displayList) == 0 {
		emptyMsg := "No conversations yet"
		if a.convFilterMode {
			emptyMsg = "No matches found"
		}
		rows = append(rows, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	} else {
		startIdx := 0
		endIdx := len(displayList)
		if len(displayList) > maxLines {
			if a.selectedConversationIdx < maxLines/2 {
				endIdx = maxLines
			} else if a.selectedConversationIdx >= len(displayList)-maxLines/2 {
				startIdx = len(displayList) - maxLines
			} else {
				startIdx = a.selectedConversationIdx - maxLines/2
				endIdx = startIdx + maxLines
			}
		}

		currentID := ""
		if a.dataModel.CurrentConversation != nil {
			currentID = a.dataModel.CurrentConversation.ID
		}

		for i := startIdx; i < endIdx && i < len(displayList); i++ {
			conv := displayList[i]

			indicator := "  "
			if i == a.selectedConversationIdx {
				indicator = "▶ "
			}

			currentMarker := ""
			if conv.ID == currentID {
				currentMarker = " (open)"
			}

			meta := fmt.Sprintf("%3d msgs  %s", conv.MessageCount, formatConversationDate(conv.UpdatedAt))

			title := conv.Title
			if title == "" {
				title = "(untitled)"
			}
			maxTitleWidth := modalWidth - len(indicator) - len(currentMarker) - len(meta) - 6
			title = runewidth.Truncate(title, maxTitleWidth, "...")

			spacing := modalWidth - len(indicator) - runewidth.StringWidth(title) - len(currentMarker) - len(meta) - 4
			if spacing < 1 {
				spacing = 1
			}

			line := indicator + title + currentMarker + strings.Repeat(" ", spacing) + meta

			lineStyle := lipgloss.NewStyle()
			if i == a.selectedConversationIdx {
				lineStyle = lineStyle.Foreground(successColor).Bold(true)
			} else if conv.ID == currentID {
				lineStyle = lineStyle.Foreground(accentColor).Bold(true)
			}

			rows = append(rows, lipgloss.NewStyle().
				Width(modalWidth).
				Render(lineStyle.Render(line)))
		}
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	rows = append([]string{emptyLine}, rows...)
	rows = append(rows, emptyLine)

	var footerText string
	switch {
	case a.convRenameMode:
		footerText = FormatFooter("Enter", "Save title", "Esc", "Cancel")
	case a.convFilterMode:
		footerText = FormatFooter("Type", "to filter", "Alt+J/K", "Navigate", "Enter", "Open", "Esc", "Cancel")
	default:
		footerText = FormatFooter("j/k", "Navigate", "Enter", "Open", "e", "Rename", "d", "Delete", "/", "Filter", "r", "Refresh", "Esc", "Close")
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

// formatConversationDate shortens a backend timestamp for list rows.
func formatConversationDate(ts string) string {
	parsed := parseTimestamp(ts)
	return parsed.Format("2006-01-02 15:04")
}
