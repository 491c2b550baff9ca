package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func (a AppView) handleAdminPanelUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.dataModel.Config.Keybindings
	k := msg.String()

	if a.confirmDeleteUser != nil {
		switch k {
		case "y":
			user := a.confirmDeleteUser
			a.confirmDeleteUser = nil
			a.adminStatus = fmt.Sprintf("Deleting %s...", user.Username)
			return a, a.dataModel.DeleteUserCmd(user.ID)
		case "n", "esc":
			a.confirmDeleteUser = nil
		}
		return a, nil
	}

	switch k {
	case "esc":
		a.closeAllModals()
		return a, nil

	case kb.GetActionKey("admin_down"), kb.GetActionKey("admin_down_arrow"):
		if a.selectedAdminIdx < len(a.adminUsers)-1 {
			a.selectedAdminIdx++
		}
		return a, nil

	case kb.GetActionKey("admin_up"), kb.GetActionKey("admin_up_arrow"):
		if a.selectedAdminIdx > 0 {
			a.selectedAdminIdx--
		}
		return a, nil

	case kb.GetActionKey("admin_toggle"):
		if a.selectedAdminIdx < len(a.adminUsers) {
			user := a.adminUsers[a.selectedAdminIdx]
			if a.isSelf(user.ID) {
				a.adminStatus = "⚠ You cannot change your own admin role"
				return a, nil
			}
			verb := "Granting admin to"
			if user.IsAdmin {
				verb = "Revoking admin from"
			}
			a.adminStatus = fmt.Sprintf("%s %s...", verb, user.Username)
			return a, a.dataModel.SetAdminCmd(user.ID, !user.IsAdmin)
		}
		return a, nil

	case kb.GetActionKey("admin_delete"):
		if a.selectedAdminIdx < len(a.adminUsers) {
			user := a.adminUsers[a.selectedAdminIdx]
			if a.isSelf(user.ID) {
				a.adminStatus = "⚠ You cannot delete your own account"
				return a, nil
			}
			a.confirmDeleteUser = &user
		}
		return a, nil

	case kb.GetActionKey("admin_refresh"):
		a.adminStatus = "Refreshing..."
		return a, a.dataModel.FetchAdminUsers()
	}

	return a, nil
}

// isSelf guards the admin panel against self-targeting actions.
func (a AppView) isSelf(userID int) bool {
	return a.dataModel.CurrentUser != nil && a.dataModel.CurrentUser.ID == userID
}

func (a AppView) renderAdminPanel() string {
	modalWidth := a.width - 10
	if modalWidth > 90 {
		modalWidth = 90
	}
	modalHeight := a.height - 6

	if a.confirmDeleteUser != nil {
		return RenderYesNoModal(
			"⚠️  Delete User",
			fmt.Sprintf("Delete account \"%s\"?\nAll of their conversations are removed.",
				a.confirmDeleteUser.Username),
			a.width, a.height)
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("👥 User Administration")

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(fmt.Sprintf("%d accounts", len(a.adminUsers)))

	var rows []string
	maxLines := modalHeight - 9

	if len(a.adminUsers) == 0 {
		rows = append(rows, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render("No users loaded"))
	} else {
		startIdx := 0
		endIdx := len(a.adminUsers)
		if len(a.adminUsers) > maxLines {
			if a.selectedAdminIdx < maxLines/2 {
				endIdx = maxLines
			} else if a.selectedAdminIdx >= len(a.adminUsers)-maxLines/2 {
				startIdx = len(a.adminUsers) - maxLines
			} else {
				startIdx = a.selectedAdminIdx - maxLines/2
				endIdx = startIdx + maxLines
			}
		}

		for i := startIdx; i < endIdx && i < len(a.adminUsers); i++ {
			user := a.adminUsers[i]

			indicator := "  "
			if i == a.selectedAdminIdx {
				indicator = "▶ "
			}

			role := "user"
			if user.IsAdmin {
				role = "admin ★"
			}

			selfMarker := ""
			if a.isSelf(user.ID) {
				selfMarker = " (you)"
			}

			username := runewidth.Truncate(user.Username, 28, "...")

			line := fmt.Sprintf("%s#%-6d  %-28s  %-9s%s",
				indicator, user.ID, username, role, selfMarker)

			lineStyle := lipgloss.NewStyle()
			if i == a.selectedAdminIdx {
				lineStyle = lineStyle.Foreground(successColor).Bold(true)
			} else if user.IsAdmin {
				lineStyle = lineStyle.Foreground(accentColor)
			}

			rows = append(rows, lipgloss.NewStyle().
				Width(modalWidth).
				Render(lineStyle.Render(line)))
		}
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	rows = append([]string{emptyLine}, rows...)
	rows = append(rows, emptyLine)

	if a.adminStatus != "" {
		statusStyle := lipgloss.NewStyle().Foreground(accentColor)
		if strings.HasPrefix(a.adminStatus, "⚠") || strings.HasPrefix(a.adminStatus, "❌") {
			statusStyle = statusStyle.Foreground(warningColor)
		}
		rows = append(rows, lipgloss.NewStyle().
			Width(modalWidth).
			Align(lipgloss.Center).
			Render(statusStyle.Render(a.adminStatus)))
	}

	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(FormatFooter("j/k", "Navigate", "t", "Toggle admin", "d", "Delete", "Alt+R", "Refresh", "Esc", "Close"))

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
