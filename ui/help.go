package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpEntry struct {
	key  string
	desc string
}

func (a AppView) renderHelpModal(width, height int) string {
	kb := a.dataModel.Config.Keybindings

	conversationKeys := []helpEntry{
		{"Enter", "Send question"},
		{"Alt+Enter", "Newline in input"},
		{kb.DisplayActionKey("new_conversation"), "New conversation"},
		{kb.DisplayActionKey("conversation_manager"), "Conversation history"},
		{kb.DisplayActionKey("rename_conversation"), "Rename conversation"},
		{kb.DisplayActionKey("model_selector"), "Select model"},
		{kb.DisplayActionKey("archive_search"), "Search local archive"},
		{"Esc", "Cancel exchange / skip reveal"},
		{kb.DisplayActionKey("clear_input"), "Clear input"},
	}

	answerKeys := []helpEntry{
		{kb.DisplayActionKey("yank_last_answer"), "Copy last answer"},
		{kb.DisplayActionKey("yank_conversation"), "Copy conversation"},
		{kb.DisplayActionKey("clear_chat"), "Clear chat view"},
	}

	scrollKeys := []helpEntry{
		{kb.DisplayActionKey("scroll_down") + "/" + kb.DisplayActionKey("scroll_up"), "Scroll line"},
		{kb.DisplayActionKey("half_page_down") + "/" + kb.DisplayActionKey("half_page_up"), "Scroll half page"},
		{kb.DisplayActionKey("page_down") + "/" + kb.DisplayActionKey("page_up"), "Scroll page"},
		{kb.DisplayActionKey("scroll_to_top") + "/" + kb.DisplayActionKey("scroll_to_bottom"), "Top / bottom"},
	}

	accountKeys := []helpEntry{
		{kb.DisplayActionKey("profile"), "Profile and usage"},
		{kb.DisplayActionKey("settings"), "Settings"},
		{kb.DisplayActionKey("about"), "About"},
		{kb.DisplayActionKey("help"), "This help"},
		{kb.DisplayActionKey("quit"), "Quit"},
	}

	adminKeys := []helpEntry{
		{kb.DisplayActionKey("admin_panel"), "User administration"},
		{kb.DisplayActionKey("vector_panel"), "Vector index"},
		{kb.DisplayActionKey("feedback_panel"), "Expert review"},
	}

	keyStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(warningColor).Bold(true)

	renderSection := func(title string, entries []helpEntry) string {
		var b strings.Builder
		b.WriteString(sectionStyle.Render(title) + "\n")
		for _, e := range entries {
			b.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(fmt.Sprintf("%-14s", e.key)), e.desc))
		}
		return b.String()
	}

	leftColumn := renderSection("Conversation", conversationKeys) + "\n" +
		renderSection("Answers", answerKeys)

	rightColumn := renderSection("Scrolling", scrollKeys) + "\n" +
		renderSection("Account", accountKeys)

	if a.dataModel.IsAdmin() {
		rightColumn += "\n" + renderSection("Admin", adminKeys)
	}

	columnWidth := 38
	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(columnWidth).Render(leftColumn),
		lipgloss.NewStyle().Width(columnWidth).Render(rightColumn),
	)

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor).
		Width(columnWidth * 2).
		Align(lipgloss.Center).
		Render("ChemTUI Keybindings")

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Width(columnWidth * 2).
		Align(lipgloss.Center).
		Render("Press " + kb.DisplayActionKey("help") + " or Esc to close")

	content := title + "\n\n" + columns + "\n" + footer

	boxed := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, boxed)
}
