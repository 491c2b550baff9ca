package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// feedbackPageSize matches the history page the web client requests.
const feedbackPageSize = 20

func (a AppView) handleFeedbackPanelUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.dataModel.Config.Keybindings
	k := msg.String()

	if a.confirmDeleteFeedback != nil {
		switch k {
		case "y":
			rec := a.confirmDeleteFeedback
			a.confirmDeleteFeedback = nil
			a.feedbackStatus = "Deleting record..."
			return a, a.dataModel.DeleteFeedbackCmd(rec.FeedbackID)
		case "n", "esc":
			a.confirmDeleteFeedback = nil
		}
		return a, nil
	}

	if a.feedbackReviewMode {
		switch k {
		case "esc":
			a.feedbackReviewMode = false
			a.feedbackResponseInput.Blur()
			return a, nil

		case "enter":
			if a.selectedFeedbackIdx >= len(a.feedbackPending) {
				a.feedbackReviewMode = false
				return a, nil
			}
			pending := a.feedbackPending[a.selectedFeedbackIdx]
			response := strings.TrimSpace(a.feedbackResponseInput.Value())
			expert := ""
			if a.dataModel.CurrentUser != nil {
				expert = a.dataModel.CurrentUser.Username
			}
			a.feedbackReviewMode = false
			a.feedbackResponseInput.Blur()
			a.feedbackStatus = "Submitting review..."
			return a, a.dataModel.ReviewFeedbackCmd(pending.FeedbackID, a.feedbackReviewApprove, expert, response)
		}

		var cmd tea.Cmd
		a.feedbackResponseInput, cmd = a.feedbackResponseInput.Update(msg)
		return a, cmd
	}

	switch k {
	case "esc":
		a.closeAllModals()
		return a, nil

	case kb.GetActionKey("feedback_tab"):
		switch a.feedbackTab {
		case "pending":
			a.feedbackTab = "history"
		case "history":
			a.feedbackTab = "stats"
		default:
			a.feedbackTab = "pending"
		}
		a.selectedFeedbackIdx = 0
		return a, a.fetchFeedbackTab(0)

	case kb.GetActionKey("feedback_down"), kb.GetActionKey("feedback_down_arrow"):
		if a.selectedFeedbackIdx < a.feedbackListLen()-1 {
			a.selectedFeedbackIdx++
		}
		return a, nil

	case kb.GetActionKey("feedback_up"), kb.GetActionKey("feedback_up_arrow"):
		if a.selectedFeedbackIdx > 0 {
			a.selectedFeedbackIdx--
		}
		return a, nil

	case kb.GetActionKey("feedback_approve"):
		if a.feedbackTab == "pending" && a.selectedFeedbackIdx < len(a.feedbackPending) {
			return a.openReviewInput(true)
		}
		return a, nil

	case kb.GetActionKey("feedback_reject"):
		if a.feedbackTab == "pending" && a.selectedFeedbackIdx < len(a.feedbackPending) {
			return a.openReviewInput(false)
		}
		return a, nil

	case kb.GetActionKey("feedback_delete"):
		if a.feedbackTab == "history" && a.feedbackHistory != nil && a.selectedFeedbackIdx < len(a.feedbackHistory.Feedbacks) {
			rec := a.feedbackHistory.Feedbacks[a.selectedFeedbackIdx]
			a.confirmDeleteFeedback = &rec
		}
		return a, nil

	case "n":
		if a.feedbackTab == "history" && a.feedbackHistory != nil &&
			a.feedbackHistory.Offset+feedbackPageSize < a.feedbackHistory.Total {
			a.selectedFeedbackIdx = 0
			return a, a.dataModel.FetchFeedbackHistory(feedbackPageSize, a.feedbackHistory.Offset+feedbackPageSize)
		}
		return a, nil

	case "p":
		if a.feedbackTab == "history" && a.feedbackHistory != nil && a.feedbackHistory.Offset > 0 {
			offset := a.feedbackHistory.Offset - feedbackPageSize
			if offset < 0 {
				offset = 0
			}
			a.selectedFeedbackIdx = 0
			return a, a.dataModel.FetchFeedbackHistory(feedbackPageSize, offset)
		}
		return a, nil

	case "r":
		a.feedbackStatus = "Refreshing..."
		return a, a.fetchFeedbackTab(a.currentHistoryOffset())
	}

	return a, nil
}

func (a AppView) openReviewInput(approve bool) (tea.Model, tea.Cmd) {
	a.feedbackReviewMode = true
	a.feedbackReviewApprove = approve
	a.feedbackResponseInput.SetValue("")
	a.feedbackResponseInput.Focus()
	return a, textinput.Blink
}

func (a AppView) fetchFeedbackTab(historyOffset int) tea.Cmd {
	switch a.feedbackTab {
	case "history":
		return a.dataModel.FetchFeedbackHistory(feedbackPageSize, historyOffset)
	case "stats":
		return a.dataModel.FetchFeedbackStats()
	default:
		return a.dataModel.FetchPendingFeedbacks()
	}
}

func (a AppView) feedbackListLen() int {
	switch a.feedbackTab {
	case "history":
		if a.feedbackHistory == nil {
			return 0
		}
		return len(a.feedbackHistory.Feedbacks)
	case "stats":
		return 0
	default:
		return len(a.feedbackPending)
	}
}

func (a AppView) currentHistoryOffset() int {
	if a.feedbackHistory == nil {
		return 0
	}
	return a.feedbackHistory.Offset
}

func feedbackStatusMark(status string) string {
	switch status {
	case "approved":
		return "✅ approved"
	case "rejected":
		return "❌ rejected"
	default:
		return "⏳ pending"
	}
}

func (a AppView) renderFeedbackPanel() string {
	modalWidth := a.width - 10
	if modalWidth > 100 {
		modalWidth = 100
	}
	modalHeight := a.height - 6

	if a.confirmDeleteFeedback != nil {
		return RenderYesNoModal(
			"⚠️  Delete Record",
			fmt.Sprintf("Delete review record %s?\nThis cannot be undone.",
				a.confirmDeleteFeedback.FeedbackID),
			a.width, a.height)
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("🧑‍🔬 Expert Review")

	tabs := []string{"pending", "history", "stats"}
	var tabParts []string
	for _, tab := range tabs {
		style := lipgloss.NewStyle().Foreground(dimColor)
		if tab == a.feedbackTab {
			style = lipgloss.NewStyle().Foreground(successColor).Bold(true)
		}
		tabParts = append(tabParts, style.Render(tab))
	}
	header := strings.Join(tabParts, "  |  ")
	if a.feedbackReviewMode {
		verb := "Approve"
		if !a.feedbackReviewApprove {
			verb = "Reject"
		}
		header = verb + " — " + a.feedbackResponseInput.View()
	}

	headerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	var rows []string
	maxEntries := (modalHeight - 9) / 2

	switch a.feedbackTab {
	case "stats":
		rows = a.renderFeedbackStats(modalWidth)
	case "history":
		rows = a.renderFeedbackHistory(modalWidth, maxEntries)
	default:
		rows = a.renderFeedbackPending(modalWidth, maxEntries)
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	rows = append([]string{emptyLine}, rows...)
	rows = append(rows, emptyLine)

	if a.feedbackStatus != "" {
		statusStyle := lipgloss.NewStyle().Foreground(accentColor)
		if strings.HasPrefix(a.feedbackStatus, "⚠") || strings.HasPrefix(a.feedbackStatus, "❌") {
			statusStyle = statusStyle.Foreground(warningColor)
		}
		rows = append(rows, lipgloss.NewStyle().
			Width(modalWidth).
			Align(lipgloss.Center).
			Render(statusStyle.Render(a.feedbackStatus)))
	}

	var footerText string
	switch {
	case a.feedbackReviewMode:
		footerText = FormatFooter("Enter", "Submit", "Esc", "Cancel")
	case a.feedbackTab == "history":
		footerText = FormatFooter("j/k", "Navigate", "n/p", "Page", "d", "Delete", "Tab", "Next tab", "r", "Refresh", "Esc", "Close")
	case a.feedbackTab == "stats":
		footerText = FormatFooter("Tab", "Next tab", "r", "Refresh", "Esc", "Close")
	default:
		footerText = FormatFooter("j/k", "Navigate", "a", "Approve", "x", "Reject", "Tab", "Next tab", "r", "Refresh", "Esc", "Close")
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

func (a AppView) renderFeedbackPending(modalWidth, maxEntries int) []string {
	if len(a.feedbackPending) == 0 {
		return []string{lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render("Nothing waiting for review")}
	}

	startIdx, endIdx := scrollWindow(len(a.feedbackPending), a.selectedFeedbackIdx, maxEntries)

	var rows []string
	for i := startIdx; i < endIdx && i < len(a.feedbackPending); i++ {
		pending := a.feedbackPending[i]

		indicator := "  "
		if i == a.selectedFeedbackIdx {
			indicator = "▶ "
		}

		meta := fmt.Sprintf("%-12s  %s", pending.Type, formatFeedbackDate(pending.CreatedAt))
		task := runewidth.Truncate(pending.TaskDescription, modalWidth-len(indicator)-runewidth.StringWidth(meta)-6, "...")

		spacing := modalWidth - len(indicator) - runewidth.StringWidth(task) - runewidth.StringWidth(meta) - 4
		if spacing < 1 {
			spacing = 1
		}

		headLine := indicator + task + strings.Repeat(" ", spacing) + meta
		headStyle := lipgloss.NewStyle()
		if i == a.selectedFeedbackIdx {
			headStyle = headStyle.Foreground(successColor).Bold(true)
		}
		rows = append(rows, lipgloss.NewStyle().Width(modalWidth).Render(headStyle.Render(headLine)))

		detail := pending.RiskAssessment
		if len(pending.Questions) > 0 {
			detail = pending.Questions[0]
			if len(pending.Questions) > 1 {
				detail += fmt.Sprintf(" (+%d more)", len(pending.Questions)-1)
			}
		}
		if detail == "" {
			detail = "(no details)"
		}
		detailLine := "    " + runewidth.Truncate(strings.ReplaceAll(detail, "\n", " "), modalWidth-8, "...")
		rows = append(rows, lipgloss.NewStyle().Width(modalWidth).Foreground(dimColor).Render(detailLine))
	}
	return rows
}

func (a AppView) renderFeedbackHistory(modalWidth, maxEntries int) []string {
	if a.feedbackHistory == nil || len(a.feedbackHistory.Feedbacks) == 0 {
		return []string{lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render("No review history")}
	}

	page := a.feedbackHistory
	startIdx, endIdx := scrollWindow(len(page.Feedbacks), a.selectedFeedbackIdx, maxEntries)

	var rows []string
	for i := startIdx; i < endIdx && i < len(page.Feedbacks); i++ {
		rec := page.Feedbacks[i]

		indicator := "  "
		if i == a.selectedFeedbackIdx {
			indicator = "▶ "
		}

		meta := fmt.Sprintf("%-12s  %s", feedbackStatusMark(rec.Status), formatFeedbackDate(rec.UpdatedAt))
		task := runewidth.Truncate(rec.TaskDescription, modalWidth-len(indicator)-runewidth.StringWidth(meta)-6, "...")

		spacing := modalWidth - len(indicator) - runewidth.StringWidth(task) - runewidth.StringWidth(meta) - 4
		if spacing < 1 {
			spacing = 1
		}

		headLine := indicator + task + strings.Repeat(" ", spacing) + meta
		headStyle := lipgloss.NewStyle()
		if i == a.selectedFeedbackIdx {
			headStyle = headStyle.Foreground(successColor).Bold(true)
		} else if rec.Status != "pending" {
			headStyle = headStyle.Foreground(dimColor)
		}
		rows = append(rows, lipgloss.NewStyle().Width(modalWidth).Render(headStyle.Render(headLine)))

		response := rec.ResponseMessage
		if response == "" {
			response = "(no response)"
		}
		if rec.ExpertName != "" {
			response = rec.ExpertName + ": " + response
		}
		responseLine := "    " + runewidth.Truncate(strings.ReplaceAll(response, "\n", " "), modalWidth-8, "...")
		rows = append(rows, lipgloss.NewStyle().Width(modalWidth).Foreground(dimColor).Render(responseLine))
	}

	pageInfo := fmt.Sprintf("showing %d-%d of %d", page.Offset+1, page.Offset+len(page.Feedbacks), page.Total)
	rows = append(rows, lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Center).
		Foreground(dimColor).
		Render(pageInfo))
	return rows
}

func (a AppView) renderFeedbackStats(modalWidth int) []string {
	if a.feedbackStats == nil {
		return []string{lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render("Loading stats...")}
	}

	stats := a.feedbackStats
	labelStyle := lipgloss.NewStyle().Foreground(dimColor)
	detail := func(label, value string) string {
		return lipgloss.NewStyle().Width(modalWidth).Render(
			fmt.Sprintf("  %s %s", labelStyle.Render(label), value))
	}

	rows := []string{
		detail("Total reviews:  ", fmt.Sprintf("%d", stats.Total)),
		detail("Last 7 days:    ", fmt.Sprintf("%d", stats.Recent7Days)),
	}
	for _, status := range []string{"pending", "approved", "rejected"} {
		if n, ok := stats.StatusDistribution[status]; ok {
			rows = append(rows, detail(fmt.Sprintf("%-16s", status+":"), fmt.Sprintf("%d", n)))
		}
	}
	for typ, n := range stats.TypeDistribution {
		rows = append(rows, detail(fmt.Sprintf("%-16s", typ+":"), fmt.Sprintf("%d", n)))
	}
	return rows
}

// scrollWindow centers the selection inside a list window of max lines.
func scrollWindow(total, selected, max int) (int, int) {
	if total <= max || max <= 0 {
		return 0, total
	}
	switch {
	case selected < max/2:
		return 0, max
	case selected >= total-max/2:
		return total - max, total
	default:
		start := selected - max/2
		return start, start + max
	}
}

func formatFeedbackDate(ts string) string {
	if ts == "" {
		return ""
	}
	return parseTimestamp(ts).Format("2006-01-02 15:04")
}
