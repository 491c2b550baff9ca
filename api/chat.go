package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
)

// Conversation is one chat history entry.
type Conversation struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ModelUsed    string `json:"model_used"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	MessageCount int    `json:"message_count"`
}

// StoredMessage is one persisted exchange message inside a conversation.
type StoredMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	ModelUsed string `json:"model_used,omitempty"`
}

// ConversationDetail is a conversation with its full message history.
type ConversationDetail struct {
	Conversation
	Messages []StoredMessage `json:"messages"`
}

// ModelInfo describes one model the backend can route to.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StreamChatRequest is the body of a streamed chat call. Streaming is
// always sent true; the non-streaming variant of the endpoint is not
// used by this client. APIKeys carries optional per-provider keys the
// backend forwards to its model providers; an empty map means the
// server's own keys apply.
type StreamChatRequest struct {
	Input          string            `json:"input"`
	ConversationID string            `json:"conversation_id,omitempty"`
	Model          string            `json:"model,omitempty"`
	ToolsModel     string            `json:"tools_model,omitempty"`
	Temperature    float64           `json:"temperature,omitempty"`
	MaxIterations  int               `json:"max_iterations,omitempty"`
	Streaming      bool              `json:"streaming"`
	LocalRxn       bool              `json:"local_rxn"`
	APIKeys        map[string]string `json:"api_keys"`
}

// Conversations lists a page of the account's chat history, newest
// first. The backend's ordering is not trusted; entries are re-sorted
// by updated_at before returning.
func (c *Client) Conversations(ctx context.Context, skip, limit int) ([]Conversation, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	var resp struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/chemagent/conversations", q, nil, &resp); err != nil {
		return nil, err
	}
	list := resp.Conversations
	// ISO-8601 timestamps order lexicographically.
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UpdatedAt > list[j].UpdatedAt
	})
	return list, nil
}

// Conversation fetches one conversation with its messages.
func (c *Client) Conversation(ctx context.Context, id string) (*ConversationDetail, error) {
	var detail ConversationDetail
	if err := c.doJSON(ctx, http.MethodGet, "/api/chemagent/conversations/"+id, nil, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// RenameConversation sets a new title.
func (c *Client) RenameConversation(ctx context.Context, id, title string) error {
	body := map[string]string{"title": title}
	return c.doJSON(ctx, http.MethodPut, "/api/chemagent/conversations/"+id+"/title", nil, body, nil)
}

// DeleteConversation removes a conversation and its messages.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/chemagent/conversations/"+id, nil, nil, nil)
}

// Models lists the models available for new exchanges.
func (c *Client) Models(ctx context.Context) ([]ModelInfo, error) {
	var resp struct {
		Models []ModelInfo `json:"models"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/chemagent/models", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

// StreamChat opens a streamed exchange and returns the raw response body.
// The caller feeds it to stream.New and owns closing it; cancelling ctx
// aborts the exchange mid-stream.
func (c *Client) StreamChat(ctx context.Context, reqBody StreamChatRequest) (io.ReadCloser, error) {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chemagent/stream_chat", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	c.authorize(req)

	// No client timeout here: an exchange streams for as long as the
	// agent reasons. Lifetime is bounded by ctx alone.
	streamClient := &http.Client{Transport: c.http.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, err
	}

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}
