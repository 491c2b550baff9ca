package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// FetchAdminUsers lists all accounts for the admin panel
func (m *Model) FetchAdminUsers() tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		users, err := client.AdminUsers(ctx)
		return AdminUsersMsg{Users: users, Err: err}
	}
}

// SetAdminCmd grants or revokes the admin role on an account
func (m *Model) SetAdminCmd(userID int, isAdmin bool) tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.SetAdmin(ctx, userID, isAdmin)
		return AdminActionMsg{Action: "set_admin", UserID: userID, Err: err}
	}
}

// DeleteUserCmd removes an account and all of its data
func (m *Model) DeleteUserCmd(userID int) tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.DeleteUser(ctx, userID)
		return AdminActionMsg{Action: "delete", UserID: userID, Err: err}
	}
}
