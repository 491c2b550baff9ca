package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const chemtuiASCIIArt = `
   ________                   __________  ______
  / ____/ /_  ___  ____ ___  /_  __/ / / /  _/
 / /   / __ \/ _ \/ __ '__ \  / / / / / // /
/ /___/ / / /  __/ / / / / / / / / /_/ // /
\____/_/ /_/\___/_/ /_/ /_/ /_/  \____/___/
`

var chemtuiFeatures = []string{
	"• Streaming answers with visible reasoning steps",
	"• Conversation history synced with the ChemAgent backend",
	"• Local SQLite archive with full-text search",
	"• Expert review of pending agent requests",
	"• Vector index administration",
}

func renderAboutModal(a AppView, width, height int, version string) string {
	kb := a.dataModel.Config.Keybindings

	artStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(dimColor)

	var b strings.Builder
	b.WriteString(artStyle.Render(strings.TrimPrefix(chemtuiASCIIArt, "\n")))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("A terminal client for the ChemAgent chemistry assistant"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Version: ") + version)
	b.WriteString("\n\n")
	for _, feature := range chemtuiFeatures {
		b.WriteString(feature + "\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Server: " + a.dataModel.Config.ServerURL))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Press " + kb.DisplayActionKey("close_about") + " or Esc to close"))

	boxed := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, boxed)
}
