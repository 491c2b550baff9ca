package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chemtui/config"
)

// initSettings snapshots the live config into editable fields.
func (a *AppView) initSettings() {
	cfg := a.dataModel.Config
	a.settingsFields = []SettingField{
		{Label: "Data Directory", Value: cfg.DataDirectory, DefaultValue: "~/.local/share/chemtui", Type: SettingTypeDataDir},
		{Label: "Server URL", Value: cfg.ServerURL, DefaultValue: "http://localhost:8000", Type: SettingTypeServerURL},
		{Label: "Default Model", Value: cfg.DefaultModel, DefaultValue: "deepseek-chat", Type: SettingTypeModel},
		{Label: "Temperature", Value: strconv.FormatFloat(cfg.Temperature, 'f', -1, 64), DefaultValue: "0.1", Type: SettingTypeTemperature},
		{Label: "Max Iterations", Value: strconv.Itoa(cfg.MaxIterations), DefaultValue: "8", Type: SettingTypeMaxIterations},
		{Label: "Archive Enabled", Value: strconv.FormatBool(cfg.ArchiveEnabled), DefaultValue: "true", Type: SettingTypeArchiveEnabled},
	}
	a.selectedSettingIdx = 0
	a.settingsEditMode = false
	a.settingsHasChanges = false
	a.settingsConfirmExit = false
	a.settingsSaveError = ""
}

func (a AppView) handleSettingsUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.dataModel.Config.Keybindings
	k := msg.String()

	if a.settingsConfirmExit {
		switch k {
		case "y":
			a.closeAllModals()
		case "n", "esc":
			a.settingsConfirmExit = false
		}
		return a, nil
	}

	if a.settingsEditMode {
		switch k {
		case "esc":
			a.settingsEditMode = false
			a.settingsEditInput.Blur()
			return a, nil

		case "enter":
			field := &a.settingsFields[a.selectedSettingIdx]
			value := strings.TrimSpace(a.settingsEditInput.Value())
			if err := validateSettingValue(field.Type, value); err != nil {
				field.ErrorMsg = err.Error()
				return a, nil
			}
			field.ErrorMsg = ""
			if field.Value != value {
				field.Value = value
				a.settingsHasChanges = true
			}
			a.settingsEditMode = false
			a.settingsEditInput.Blur()
			return a, nil
		}

		var cmd tea.Cmd
		a.settingsEditInput, cmd = a.settingsEditInput.Update(msg)
		return a, cmd
	}

	switch k {
	case "esc":
		if a.settingsHasChanges {
			a.settingsConfirmExit = true
			return a, nil
		}
		a.closeAllModals()
		return a, nil

	case kb.GetActionKey("settings_down"), kb.GetActionKey("settings_down_arrow"):
		if a.selectedSettingIdx < len(a.settingsFields)-1 {
			a.selectedSettingIdx++
		}
		return a, nil

	case kb.GetActionKey("settings_up"), kb.GetActionKey("settings_up_arrow"):
		if a.selectedSettingIdx > 0 {
			a.selectedSettingIdx--
		}
		return a, nil

	case "enter":
		field := &a.settingsFields[a.selectedSettingIdx]
		if field.Type == SettingTypeArchiveEnabled {
			// Booleans toggle in place instead of opening an editor
			if field.Value == "true" {
				field.Value = "false"
			} else {
				field.Value = "true"
			}
			a.settingsHasChanges = true
			return a, nil
		}
		a.settingsEditMode = true
		a.settingsEditInput.SetValue(field.Value)
		a.settingsEditInput.CursorEnd()
		a.settingsEditInput.Focus()
		return a, textinput.Blink

	case "d":
		field := &a.settingsFields[a.selectedSettingIdx]
		if field.Value != field.DefaultValue {
			field.Value = field.DefaultValue
			field.ErrorMsg = ""
			a.settingsHasChanges = true
		}
		return a, nil

	case "ctrl+s":
		if !a.settingsHasChanges {
			a.closeAllModals()
			return a, nil
		}
		if err := a.saveSettings(); err != nil {
			a.settingsSaveError = err.Error()
			return a, nil
		}
		a.closeAllModals()
		a.infoModalTitle = "✓ Settings Saved"
		a.infoModalMsg = "Some changes take effect on the next exchange.\nThe data directory applies after a restart."
		a.showInfoModal = true
		return a, nil
	}

	return a, nil
}

func validateSettingValue(fieldType SettingFieldType, value string) error {
	switch fieldType {
	case SettingTypeDataDir:
		if value == "" {
			return fmt.Errorf("data directory cannot be empty")
		}
	case SettingTypeServerURL:
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("URL must start with http:// or https://")
		}
	case SettingTypeModel:
		if value == "" {
			return fmt.Errorf("model cannot be empty")
		}
	case SettingTypeTemperature:
		t, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number")
		}
		if t < 0 || t > 2 {
			return fmt.Errorf("temperature must be between 0 and 2")
		}
	case SettingTypeMaxIterations:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max iterations must be an integer")
		}
		if n < 1 || n > 50 {
			return fmt.Errorf("max iterations must be between 1 and 50")
		}
	}
	return nil
}

// saveSettings writes both config files and updates the live config so
// the changes apply without a restart where possible.
func (a *AppView) saveSettings() error {
	cfg := a.dataModel.Config

	var dataDir string
	userCfg := &config.UserConfig{}
	for _, field := range a.settingsFields {
		switch field.Type {
		case SettingTypeDataDir:
			dataDir = field.Value
		case SettingTypeServerURL:
			userCfg.Server.URL = field.Value
		case SettingTypeModel:
			userCfg.Server.DefaultModel = field.Value
		case SettingTypeTemperature:
			userCfg.Agent.Temperature, _ = strconv.ParseFloat(field.Value, 64)
		case SettingTypeMaxIterations:
			userCfg.Agent.MaxIterations, _ = strconv.Atoi(field.Value)
		case SettingTypeArchiveEnabled:
			userCfg.ArchiveEnabled = field.Value == "true"
		}
	}

	if dataDir != cfg.DataDirectory {
		if err := config.SaveSystemConfig(&config.SystemConfig{DataDirectory: dataDir}); err != nil {
			return fmt.Errorf("saving system config: %w", err)
		}
	}
	if err := config.SaveUserConfig(userCfg, cfg.DataDir()); err != nil {
		return fmt.Errorf("saving user config: %w", err)
	}

	cfg.DataDirectory = dataDir
	cfg.ServerURL = userCfg.Server.URL
	cfg.DefaultModel = userCfg.Server.DefaultModel
	cfg.Temperature = userCfg.Agent.Temperature
	cfg.MaxIterations = userCfg.Agent.MaxIterations
	cfg.ArchiveEnabled = userCfg.ArchiveEnabled
	a.settingsHasChanges = false
	return nil
}

func renderSettings(fields []SettingField, selectedIdx int, editMode bool, editInput textinput.Model, hasChanges, confirmExit bool, saveError string, width, height int) string {
	if confirmExit {
		return RenderYesNoModal(
			"⚠️  Unsaved Changes",
			"Discard your changes?",
			width, height)
	}

	modalWidth := width - 10
	if modalWidth > 80 {
		modalWidth = 80
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("⚙ Settings")

	header := "Enter edits, d resets to default"
	if hasChanges {
		header = "● Unsaved changes"
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
	rows = append(rows, strings.Repeat(" ", modalWidth))

	for i, field := range fields {
		indicator := "  "
		if i == selectedIdx {
			indicator = "▶ "
		}

		var valueDisplay string
		if editMode && i == selectedIdx {
			valueDisplay = editInput.View()
		} else {
			valueDisplay = field.Value
			if field.Value != field.DefaultValue {
				valueDisplay += lipgloss.NewStyle().Foreground(dimColor).Render("  (default: " + field.DefaultValue + ")")
			}
		}

		line := fmt.Sprintf("%s%-18s %s", indicator, field.Label, valueDisplay)

		lineStyle := lipgloss.NewStyle()
		if i == selectedIdx && !editMode {
			lineStyle = lineStyle.Foreground(successColor).Bold(true)
		}

		rows = append(rows, lipgloss.NewStyle().
			Width(modalWidth).
			Render(lineStyle.Render(line)))

		if field.ErrorMsg != "" {
			rows = append(rows, lipgloss.NewStyle().
				Width(modalWidth).
				Foreground(dangerColor).
				Render("    "+field.ErrorMsg))
		}
	}

	rows = append(rows, strings.Repeat(" ", modalWidth))

	if saveError != "" {
		rows = append(rows, lipgloss.NewStyle().
			Width(modalWidth).
			Align(lipgloss.Center).
			Foreground(dangerColor).
			Render("❌ "+saveError))
	}

	var footerText string
	if editMode {
		footerText = FormatFooter("Enter", "Apply", "Esc", "Cancel edit")
	} else {
		footerText = FormatFooter("j/k", "Navigate", "Enter", "Edit/Toggle", "d", "Default", "Ctrl+S", "Save", "Esc", "Close")
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
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	return modalStyle.Render(content)
}
