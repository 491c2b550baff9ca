package api

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"
)

// User is the authenticated account as reported by /api/auth/me.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// Profile extends User with usage preferences.
type Profile struct {
	User
	Preferences map[string]any `json:"preferences"`
}

// Usage is the per-account request accounting from /api/auth/usage.
type Usage struct {
	TotalRequests  int `json:"total_requests"`
	TotalMessages  int `json:"total_messages"`
	RequestsToday  int `json:"requests_today"`
	MessagesToday  int `json:"messages_today"`
	ActiveSessions int `json:"active_sessions"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token and installs it on the
// client. The endpoint takes an OAuth2 password form, so the body is
// multipart rather than JSON.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var body strings.Builder
	w := multipart.NewWriter(&body)
	w.WriteField("username", username)
	w.WriteField("password", password)
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", strings.NewReader(body.String()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var tok tokenResponse
	if err := decodeJSON(resp, &tok); err != nil {
		return "", err
	}
	c.token = tok.AccessToken
	return tok.AccessToken, nil
}

// Register creates a new account. The caller still has to Login
// afterwards; registration does not issue a token.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/register", nil, body, nil)
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetProfile returns the full profile with preferences.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/profile", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateEmail changes the account email address.
func (c *Client) UpdateEmail(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.doJSON(ctx, http.MethodPut, "/api/auth/profile/email", nil, body, nil)
}

// UpdatePreferences replaces the stored preference map.
func (c *Client) UpdatePreferences(ctx context.Context, prefs map[string]any) error {
	return c.doJSON(ctx, http.MethodPut, "/api/auth/profile/preferences", nil, prefs, nil)
}

// GetUsage returns request accounting for the current account.
func (c *Client) GetUsage(ctx context.Context) (*Usage, error) {
	var u Usage
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/usage", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
