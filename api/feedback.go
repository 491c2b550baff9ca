package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// PendingFeedback is one agent request awaiting expert review.
type PendingFeedback struct {
	FeedbackID      string   `json:"feedback_id"`
	Type            string   `json:"type"`
	TaskDescription string   `json:"task_description"`
	RiskAssessment  string   `json:"risk_assessment"`
	Questions       []string `json:"questions"`
	CreatedAt       string   `json:"created_at"`
}

// FeedbackRecord is one reviewed (or still pending) request in the
// history listing. Questions arrive joined into a single string here.
type FeedbackRecord struct {
	FeedbackID      string `json:"feedback_id"`
	Type            string `json:"type"`
	TaskDescription string `json:"task_description"`
	RiskAssessment  string `json:"risk_assessment"`
	Questions       string `json:"questions"`
	Status          string `json:"status"`
	ResponseMessage string `json:"response_message"`
	ExpertName      string `json:"expert_name"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// FeedbackHistoryPage is one page of the review history.
type FeedbackHistoryPage struct {
	Feedbacks []FeedbackRecord `json:"feedbacks"`
	Total     int              `json:"total"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
}

// FeedbackStats aggregates review activity.
type FeedbackStats struct {
	StatusDistribution map[string]int `json:"status_distribution"`
	TypeDistribution   map[string]int `json:"type_distribution"`
	Recent7Days        int            `json:"recent_7_days"`
	Total              int            `json:"total"`
}

// PendingFeedbacks lists requests awaiting review.
func (c *Client) PendingFeedbacks(ctx context.Context) ([]PendingFeedback, error) {
	var pending []PendingFeedback
	if _, err := c.doWrapped(ctx, http.MethodGet, "/api/feedback/pending", nil, nil, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// ApproveFeedback approves a pending request on behalf of the named
// expert. Returns the server's status message.
func (c *Client) ApproveFeedback(ctx context.Context, id, expertName, message string) (string, error) {
	body := map[string]string{"expert_name": expertName, "message": message}
	return c.doWrapped(ctx, http.MethodPost, "/api/feedback/"+id+"/approve", nil, body, nil)
}

// RejectFeedback rejects a pending request on behalf of the named
// expert. Returns the server's status message.
func (c *Client) RejectFeedback(ctx context.Context, id, expertName, message string) (string, error) {
	body := map[string]string{"expert_name": expertName, "message": message}
	return c.doWrapped(ctx, http.MethodPost, "/api/feedback/"+id+"/reject", nil, body, nil)
}

// FeedbackHistory returns one page of past reviews, newest first.
func (c *Client) FeedbackHistory(ctx context.Context, limit, offset int) (*FeedbackHistoryPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	var page FeedbackHistoryPage
	if _, err := c.doWrapped(ctx, http.MethodGet, "/api/feedback/history", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FeedbackStats returns review aggregates.
func (c *Client) FeedbackStats(ctx context.Context) (*FeedbackStats, error) {
	var stats FeedbackStats
	if _, err := c.doWrapped(ctx, http.MethodGet, "/api/feedback/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// DeleteFeedback removes one record from the review history.
func (c *Client) DeleteFeedback(ctx context.Context, id string) error {
	_, err := c.doWrapped(ctx, http.MethodDelete, "/api/feedback/"+id, nil, nil, nil)
	return err
}
