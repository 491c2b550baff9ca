package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"chemtui/api"
)

// modelNames adapts the model list to fuzzy.Source.
type modelNames []api.ModelInfo

func (m modelNames) String(i int) string { return m[i].ID + " " + m[i].Name }
func (m modelNames) Len() int            { return len(m) }

func (a AppView) handleModelSelectorUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.dataModel.Config.Keybindings
	k := msg.String()

	if a.modelFilterMode {
		switch k {
		case "esc":
			a.modelFilterMode = false
			a.modelFilterInput.Blur()
			a.filteredModelList = nil
			a.selectedModelIdx = 0
			return a, nil

		case "enter":
			return a.selectModel()

		case kb.GetActionKey("model_selector_down_filtered"), kb.GetActionKey("model_selector_down_arrow_filtered"):
			if a.selectedModelIdx < len(a.getModelList())-1 {
				a.selectedModelIdx++
			}
			return a, nil

		case kb.GetActionKey("model_selector_up_filtered"), kb.GetActionKey("model_selector_up_arrow_filtered"):
			if a.selectedModelIdx > 0 {
				a.selectedModelIdx--
			}
			return a, nil
		}

		var cmd tea.Cmd
		a.modelFilterInput, cmd = a.modelFilterInput.Update(msg)

		query := a.modelFilterInput.Value()
		if query == "" {
			a.filteredModelList = nil
		} else {
			matches := fuzzy.FindFrom(query, modelNames(a.dataModel.AvailableModels))
			filtered := make([]api.ModelInfo, 0, len(matches))
			for _, match := range matches {
				filtered = append(filtered, a.dataModel.AvailableModels[match.Index])
			}
			a.filteredModelList = filtered
		}
		a.selectedModelIdx = 0
		return a, cmd
	}

	switch k {
	case "esc", kb.GetActionKey("close_model_selector"):
		a.closeAllModals()
		return a, nil

	case "/":
		a.modelFilterMode = true
		a.modelFilterInput.SetValue("")
		a.modelFilterInput.Focus()
		a.filteredModelList = nil
		a.selectedModelIdx = 0
		return a, textinput.Blink

	case "enter":
		return a.selectModel()

	case kb.GetActionKey("model_selector_down"), kb.GetActionKey("model_selector_down_arrow"):
		if a.selectedModelIdx < len(a.getModelList())-1 {
			a.selectedModelIdx++
		}
		return a, nil

	case kb.GetActionKey("model_selector_up"), kb.GetActionKey("model_selector_up_arrow"):
		if a.selectedModelIdx > 0 {
			a.selectedModelIdx--
		}
		return a, nil

	case kb.GetActionKey("model_selector_refresh"):
		return a, a.dataModel.FetchModelList(true)
	}

	return a, nil
}

func (a AppView) selectModel() (tea.Model, tea.Cmd) {
	list := a.getModelList()
	if a.selectedModelIdx < 0 || a.selectedModelIdx >= len(list) {
		return a, nil
	}
	picked := list[a.selectedModelIdx]
	a.dataModel.SelectedModel = picked.ID
	a.closeAllModals()
	return a, nil
}

func renderModelSelector(models []api.ModelInfo, selectedIdx int, currentModel string, filterMode bool, filterInput textinput.Model, filteredModels []api.ModelInfo, width, height int) string {
	// Modal dimensions
	modalWidth := width - 10
	if modalWidth > 80 {
		modalWidth = 80
	}
	modalHeight := height - 6

	// Title section (no borders)
	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Select Model")

	// Header: show filter input or count
	var header string
	if filterMode {
		header = filterInput.View()
	} else {
		displayList := models
		if len(filteredModels) > 0 {
			displayList = filteredModels
		}
		if len(models) == len(displayList) {
			header = fmt.Sprintf("%d models", len(models))
		} else {
			header = fmt.Sprintf("%d of %d models", len(displayList), len(models))
		}
	}

	// Header section (with top and bottom borders)
	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	// Determine which list to display
	displayList := models
	if filterMode && len(filteredModels) > 0 {
		displayList = filteredModels
	}

	// Model list
	var modelLines []string
	maxLines := modalHeight - 8 // Reserve space for title, borders, header, footer

	if len(displayList) == 0 {
		emptyMsg := "No models available"
		if filterMode {
			emptyMsg = "No matches found"
		}
		emptyMsgStyled := lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg)
		modelLines = append(modelLines, emptyMsgStyled)
	} else {
		startIdx := 0
		endIdx := len(displayList)

		// Scroll if needed
		if len(displayList) > maxLines {
			if selectedIdx < maxLines/2 {
				endIdx = maxLines
			} else if selectedIdx >= len(displayList)-maxLines/2 {
				startIdx = len(displayList) - maxLines
			} else {
				startIdx = selectedIdx - maxLines/2
				endIdx = startIdx + maxLines
			}
		}

		for i := startIdx; i < endIdx && i < len(displayList); i++ {
			model := displayList[i]

			indicator := "  "
			if i == selectedIdx {
				indicator = "▶ "
			}

			currentMarker := ""
			if model.ID == currentModel {
				currentMarker = " (current)"
			}

			descSuffix := ""
			if model.Description != "" {
				descSuffix = fmt.Sprintf("  %s", model.Description)
			}

			name := model.ID
			maxNameWidth := modalWidth - 24
			if len(name) > maxNameWidth {
				name = name[:maxNameWidth-3] + "..."
			}
			maxDescWidth := modalWidth - len(indicator) - len(name) - len(currentMarker) - 6
			if len(descSuffix) > maxDescWidth {
				if maxDescWidth > 3 {
					descSuffix = descSuffix[:maxDescWidth-3] + "..."
				} else {
					descSuffix = ""
				}
			}

			spacing := modalWidth - len(indicator) - len(name) - len(descSuffix) - len(currentMarker) - 4
			if spacing < 1 {
				spacing = 1
			}

			line := fmt.Sprintf("%s%s%s%s%s",
				indicator,
				name,
				descSuffix,
				currentMarker,
				strings.Repeat(" ", spacing),
			)

			// Style the line
			lineStyle := lipgloss.NewStyle()
			if i == selectedIdx {
				lineStyle = lineStyle.Foreground(successColor).Bold(true)
			} else if model.ID == currentModel {
				lineStyle = lineStyle.Foreground(accentColor).Bold(true)
			}

			paddedLine := lipgloss.NewStyle().
				Width(modalWidth).
				Render(lineStyle.Render(line))

			modelLines = append(modelLines, paddedLine)
		}
	}

	// Add empty line before and after list
	emptyLine := strings.Repeat(" ", modalWidth)
	modelLines = append([]string{emptyLine}, modelLines...)
	modelLines = append(modelLines, emptyLine)

	// Footer
	var footerText string
	if filterMode {
		footerText = FormatFooter("Type", "to filter", "Alt+J/K", "Navigate", "Enter", "Select", "Esc", "Cancel")
	} else {
		footerText = FormatFooter("/", "Filter", "j/k", "Navigate", "Enter", "Select", "Alt+R", "Refresh", "Esc", "Exit")
	}
	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footerText)

	// Combine all sections
	var sections []string
	sections = append(sections, titleSection)
	sections = append(sections, headerSection)
	sections = append(sections, modelLines...)
	sections = append(sections, footerSection)

	content := strings.Join(sections, "\n")

	modalStyle := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	return modalStyle.Render(content)
}
