package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (a AppView) handleProfileUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.profileEmailEditMode {
		switch msg.String() {
		case "esc":
			a.profileEmailEditMode = false
			a.profileEmailInput.Blur()
			return a, nil

		case "enter":
			email := strings.TrimSpace(a.profileEmailInput.Value())
			if email == "" || !strings.Contains(email, "@") {
				a.profileStatus = "⚠ Enter a valid email address"
				return a, nil
			}
			a.profileEmailEditMode = false
			a.profileEmailInput.Blur()
			a.profileStatus = "Saving..."
			return a, a.dataModel.UpdateEmailCmd(email)
		}

		var cmd tea.Cmd
		a.profileEmailInput, cmd = a.profileEmailInput.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "esc":
		a.closeAllModals()
		return a, nil

	case "e":
		if a.profile != nil {
			a.profileEmailEditMode = true
			a.profileEmailInput.SetValue(a.profile.Email)
			a.profileEmailInput.Focus()
			return a, textinput.Blink
		}
		return a, nil

	case "ctrl+l":
		a.closeAllModals()
		return a, a.dataModel.Logout()
	}

	return a, nil
}

func (a AppView) renderProfileModal() string {
	modalWidth := 64
	if a.width < modalWidth+10 {
		modalWidth = a.width - 10
	}

	leftAligned := lipgloss.NewStyle().Width(modalWidth).Align(lipgloss.Left)
	label := lipgloss.NewStyle().Foreground(dimColor)

	var lines []string

	if a.profile == nil {
		lines = append(lines, leftAligned.Render(a.loadingSpinner.View()+" Loading profile..."))
	} else {
		role := a.profile.Role
		if role == "admin" {
			role += " ★"
		}

		lines = append(lines, leftAligned.Render(label.Render("Username:  ")+a.profile.Username))
		if a.profileEmailEditMode {
			lines = append(lines, leftAligned.Render(label.Render("Email:     ")+a.profileEmailInput.View()))
		} else {
			lines = append(lines, leftAligned.Render(label.Render("Email:     ")+a.profile.Email))
		}
		lines = append(lines, leftAligned.Render(label.Render("Role:      ")+role))
		lines = append(lines, leftAligned.Render(label.Render("Member since: ")+formatConversationDate(a.profile.CreatedAt)))
	}

	lines = append(lines, strings.Repeat(" ", modalWidth))

	if a.usage != nil {
		lines = append(lines, leftAligned.Bold(true).Render("Usage"))
		lines = append(lines, leftAligned.Render(label.Render("Requests:  ")+
			fmt.Sprintf("%d total, %d today", a.usage.TotalRequests, a.usage.RequestsToday)))
		lines = append(lines, leftAligned.Render(label.Render("Messages:  ")+
			fmt.Sprintf("%d total, %d today", a.usage.TotalMessages, a.usage.MessagesToday)))
		lines = append(lines, leftAligned.Render(label.Render("Sessions:  ")+
			fmt.Sprintf("%d active", a.usage.ActiveSessions)))
	}

	if a.profileStatus != "" {
		statusStyle := lipgloss.NewStyle().Foreground(accentColor)
		if strings.HasPrefix(a.profileStatus, "⚠") {
			statusStyle = statusStyle.Foreground(warningColor)
		}
		lines = append(lines, strings.Repeat(" ", modalWidth))
		lines = append(lines, leftAligned.Render(statusStyle.Render(a.profileStatus)))
	}

	var footer string
	if a.profileEmailEditMode {
		footer = FormatFooter("Enter", "Save email", "Esc", "Cancel")
	} else {
		footer = FormatFooter("e", "Edit email", "Ctrl+L", "Log out", "Esc", "Close")
	}

	return RenderThreeSectionModal("👤 Profile", lines, footer, ModalTypeInfo, modalWidth, a.width, a.height)
}
