package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"chemtui/config"
)

// LoginCmd exchanges credentials for a token and persists the session
func (m *Model) LoginCmd(username, password string) tea.Cmd {
	client := m.Client
	creds := m.Credentials
	dataDir := m.Config.DataDir()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		token, err := client.Login(ctx, username, password)
		if err != nil {
			return LoginResultMsg{Username: username, Err: err}
		}

		if creds != nil {
			creds.SetSession(username, token)
			if err := creds.Save(dataDir); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[model] failed to persist session: %v", err)
			}
		}
		return LoginResultMsg{Username: username, Token: token}
	}
}

// RegisterCmd creates a new account
func (m *Model) RegisterCmd(username, email, password string) tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.Register(ctx, username, email, password)
		return RegisterResultMsg{Username: username, Err: err}
	}
}

// FetchCurrentUser loads the account behind the active token
func (m *Model) FetchCurrentUser() tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		user, err := client.Me(ctx)
		return CurrentUserMsg{User: user, Err: err}
	}
}

// FetchProfile loads the full profile with preferences
func (m *Model) FetchProfile() tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		profile, err := client.GetProfile(ctx)
		return ProfileMsg{Profile: profile, Err: err}
	}
}

// FetchUsage loads request accounting for the profile view
func (m *Model) FetchUsage() tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		usage, err := client.GetUsage(ctx)
		return UsageMsg{Usage: usage, Err: err}
	}
}

// UpdateEmailCmd changes the account email address
func (m *Model) UpdateEmailCmd(email string) tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return ProfileUpdatedMsg{Err: client.UpdateEmail(ctx, email)}
	}
}

// Logout clears the token locally. The backend keeps no session state
// beyond token expiry, so there is nothing to call server-side.
func (m *Model) Logout() tea.Cmd {
	creds := m.Credentials
	dataDir := m.Config.DataDir()
	m.Client.SetToken("")
	m.CurrentUser = nil
	return func() tea.Msg {
		if creds != nil {
			creds.ClearSession()
			if err := creds.Save(dataDir); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[model] failed to clear session: %v", err)
			}
		}
		return LoggedOutMsg{}
	}
}
