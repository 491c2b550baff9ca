// Package api is the HTTP client for the ChemAgent backend. Every call
// except Login and Register sends the bearer token; non-2xx responses
// surface as *StatusError and a 401 always maps to ErrUnauthorized so the
// UI can force a re-login in one place.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnauthorized is returned for any 401 response. The session token is
// expired or invalid; the caller should clear it and re-authenticate.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is a non-2xx response on a plain (non-streaming) request.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the given server base URL, e.g.
// "http://localhost:8000".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			// Covers plain requests only; streamed requests use a
			// client without a deadline since a chat exchange can
			// legitimately run for minutes.
			Timeout: 60 * time.Second,
		},
	}
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token ("" when logged out).
func (c *Client) Token() string {
	return c.token
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doJSON performs a plain JSON request. body may be nil; out may be nil
// when the response body is irrelevant.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeJSON(resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		return ErrUnauthorized
	}
	// Truncate: error bodies are for log lines, not payload transport.
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
}

// apiResponse is the {success, message, data} envelope the vector and
// feedback endpoints wrap their payloads in.
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// doWrapped performs a JSON request against an endpoint using the
// {success, data} envelope and decodes data into out when non-nil.
func (c *Client) doWrapped(ctx context.Context, method, path string, query url.Values, body, out any) (string, error) {
	var env apiResponse
	if err := c.doJSON(ctx, method, path, query, body, &env); err != nil {
		return "", err
	}
	if !env.Success && env.Message != "" {
		return env.Message, fmt.Errorf("%s", env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env.Message, fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return env.Message, nil
}
