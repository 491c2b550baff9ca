package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// loginFieldCount is 2 for login (username, password) and 3 for
// register (username, email, password).
func (a *AppView) loginFieldCount() int {
	if a.loginRegisterMode {
		return 3
	}
	return 2
}

func (a *AppView) loginInputs() []*textinput.Model {
	if a.loginRegisterMode {
		return []*textinput.Model{&a.loginUsernameInput, &a.loginEmailInput, &a.loginPasswordInput}
	}
	return []*textinput.Model{&a.loginUsernameInput, &a.loginPasswordInput}
}

func (a *AppView) focusLoginField(idx int) {
	inputs := a.loginInputs()
	if idx < 0 {
		idx = len(inputs) - 1
	}
	if idx >= len(inputs) {
		idx = 0
	}
	a.loginFocusedField = idx
	for i, in := range inputs {
		if i == idx {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (a AppView) handleLoginUpdate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.loginBusy {
		// No edits while a request is in flight
		return a, nil
	}

	switch msg.String() {
	case "tab", "down":
		a.focusLoginField(a.loginFocusedField + 1)
		return a, textinput.Blink

	case "shift+tab", "up":
		a.focusLoginField(a.loginFocusedField - 1)
		return a, textinput.Blink

	case "ctrl+r":
		// Toggle between login and register
		a.loginRegisterMode = !a.loginRegisterMode
		a.loginError = ""
		a.loginNotice = ""
		a.focusLoginField(0)
		return a, textinput.Blink

	case "enter":
		username := strings.TrimSpace(a.loginUsernameInput.Value())
		password := a.loginPasswordInput.Value()

		if a.loginRegisterMode {
			email := strings.TrimSpace(a.loginEmailInput.Value())
			if username == "" || email == "" || password == "" {
				a.loginError = "All fields are required"
				return a, nil
			}
			a.loginBusy = true
			a.loginError = ""
			return a, a.dataModel.RegisterCmd(username, email, password)
		}

		if username == "" || password == "" {
			a.loginError = "Username and password are required"
			return a, nil
		}
		a.loginBusy = true
		a.loginError = ""
		return a, a.dataModel.LoginCmd(username, password)
	}

	// Forward everything else to the focused input
	var cmd tea.Cmd
	inputs := a.loginInputs()
	if a.loginFocusedField < len(inputs) {
		*inputs[a.loginFocusedField], cmd = inputs[a.loginFocusedField].Update(msg)
	}
	return a, cmd
}

func (a AppView) renderLoginModal() string {
	modalWidth := 56
	if a.width < modalWidth+10 {
		modalWidth = a.width - 10
	}

	title := "🧪 ChemTUI Login"
	if a.loginRegisterMode {
		title = "🧪 Create Account"
	}

	leftAligned := lipgloss.NewStyle().Width(modalWidth).Align(lipgloss.Left)

	var lines []string
	if a.loginNotice != "" {
		lines = append(lines, leftAligned.Foreground(accentColor).Render(a.loginNotice))
		lines = append(lines, strings.Repeat(" ", modalWidth))
	}

	lines = append(lines, leftAligned.Render(a.loginUsernameInput.View()))
	if a.loginRegisterMode {
		lines = append(lines, leftAligned.Render(a.loginEmailInput.View()))
	}
	lines = append(lines, leftAligned.Render(a.loginPasswordInput.View()))

	if a.loginBusy {
		lines = append(lines, strings.Repeat(" ", modalWidth))
		lines = append(lines, leftAligned.Render(a.loadingSpinner.View()+" Contacting server..."))
	}

	if a.loginError != "" {
		lines = append(lines, strings.Repeat(" ", modalWidth))
		lines = append(lines, leftAligned.Foreground(dangerColor).Render(a.loginError))
	}

	lines = append(lines, strings.Repeat(" ", modalWidth))
	lines = append(lines, leftAligned.Foreground(dimColor).Render("Server: "+a.dataModel.Config.ServerURL))

	var footer string
	if a.loginRegisterMode {
		footer = FormatFooter("Enter", "Register", "Ctrl+R", "Back to login", "Tab", "Next field")
	} else {
		footer = FormatFooter("Enter", "Log in", "Ctrl+R", "Register", "Tab", "Next field")
	}

	return RenderThreeSectionModal(title, lines, footer, ModalTypeInfo, modalWidth, a.width, a.height)
}
