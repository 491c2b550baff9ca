package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ModalType determines the color and styling of a modal
type ModalType int

const (
	ModalTypeInfo ModalType = iota
	ModalTypeWarning
	ModalTypeError
)

type ConfirmationState struct {
	Active  bool
	Title   string
	Message string
}

func RenderConfirmationModal(state ConfirmationState, width, height int) string {
	modalWidth := 60
	if width < modalWidth+10 {
		modalWidth = width - 10
	}

	// Title section (no borders)
	titleSection := lipgloss.NewStyle().
		Bold(true).
		Foreground(warningColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render(state.Title)

	// Message section (with top border)
	var messageLines []string
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth)) // Top padding

	messageStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Center)

	for _, line := range strings.Split(state.Message, "\n") {
		messageLines = append(messageLines, messageStyle.Render(line))
	}

	messageLines = append(messageLines, strings.Repeat(" ", modalWidth)) // Bottom padding

	messageSection := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Width(modalWidth).
		Render(strings.Join(messageLines, "\n"))

	// Footer section (with top border)
	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render("Press any key to dismiss")

	sections := []string{titleSection, messageSection, footerSection}
	content := strings.Join(sections, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// RenderYesNoModal renders a confirmation that expects a y/n answer.
func RenderYesNoModal(title, message string, width, height int) string {
	modalWidth := 60
	if width < modalWidth+10 {
		modalWidth = width - 10
	}

	messageStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Center)

	var lines []string
	for _, line := range strings.Split(message, "\n") {
		lines = append(lines, messageStyle.Render(line))
	}

	footer := FormatFooter("y", "Yes", "n", "No")
	return RenderThreeSectionModal(title, lines, footer, ModalTypeWarning, modalWidth, width, height)
}

// RenderThreeSectionModal renders a borderless modal with title, message, and footer sections
// This is the standard modal pattern: Title (no border) → Message (BorderTop) → Footer (BorderTop)
// messageLines should be pre-formatted content lines (without padding - padding is added automatically)
// footer should be pre-formatted using FormatFooter() or a simple string
// desiredWidth: preferred modal width (0 = default 60)
func RenderThreeSectionModal(title string, messageLines []string, footer string, modalType ModalType, desiredWidth, width, height int) string {
	modalWidth := desiredWidth
	if modalWidth == 0 {
		modalWidth = 60
	}
	if width < modalWidth+10 {
		modalWidth = width - 10
	}

	// Determine title color based on modal type
	var titleColor lipgloss.Color
	switch modalType {
	case ModalTypeInfo:
		titleColor = accentColor
	case ModalTypeWarning:
		titleColor = warningColor
	case ModalTypeError:
		titleColor = dangerColor
	}

	// Title section - manually centered using runewidth for accurate emoji handling
	titleVisualWidth := runewidth.StringWidth(title)
	leftPad := (modalWidth-titleVisualWidth)/2 - 2
	if leftPad < 0 {
		leftPad = 0
	}
	rightPad := modalWidth - titleVisualWidth - leftPad
	if rightPad < 0 {
		rightPad = 0
	}
	centeredTitle := strings.Repeat(" ", leftPad) + title + strings.Repeat(" ", rightPad)

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Foreground(titleColor).
		Render(centeredTitle)

	// Message section (with top border and padding)
	var contentLines []string
	contentLines = append(contentLines, strings.Repeat(" ", modalWidth)) // Top padding
	contentLines = append(contentLines, messageLines...)
	contentLines = append(contentLines, strings.Repeat(" ", modalWidth)) // Bottom padding

	messageSection := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Width(modalWidth).
		Render(strings.Join(contentLines, "\n"))

	// Footer section (with top border only)
	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footer)

	sections := []string{titleSection, messageSection, footerSection}
	content := strings.Join(sections, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// wordWrap wraps text to fit within the specified width while preserving newlines
// Shared helper function for all modals that need text wrapping
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	paragraphs := strings.Split(text, "\n")

	for i, paragraph := range paragraphs {
		if paragraph == "" {
			if i > 0 {
				result.WriteString("\n")
			}
			continue
		}

		words := strings.Fields(paragraph)
		if len(words) == 0 {
			continue
		}

		currentLine := words[0]
		for _, word := range words[1:] {
			if len(currentLine)+1+len(word) <= width {
				currentLine += " " + word
			} else {
				result.WriteString(currentLine + "\n")
				currentLine = word
			}
		}
		result.WriteString(currentLine)

		if i < len(paragraphs)-1 {
			result.WriteString("\n")
		}
	}

	return result.String()
}
