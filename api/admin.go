package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// AdminUser is an account row as seen by an administrator.
type AdminUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// AdminUsers lists all accounts. Requires the admin role; non-admins get
// a 403 which surfaces as *StatusError.
func (c *Client) AdminUsers(ctx context.Context) ([]AdminUser, error) {
	var users []AdminUser
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetAdmin grants or revokes the admin role on an account.
func (c *Client) SetAdmin(ctx context.Context, userID int, isAdmin bool) error {
	q := url.Values{}
	q.Set("is_admin", strconv.FormatBool(isAdmin))
	path := fmt.Sprintf("/api/admin/user/%d/set_admin", userID)
	return c.doJSON(ctx, http.MethodPost, path, q, nil, nil)
}

// DeleteUser removes an account and all of its data.
func (c *Client) DeleteUser(ctx context.Context, userID int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/user/%d", userID), nil, nil, nil)
}
