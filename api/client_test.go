package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginSendsMultipartForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("form body is not multipart: %v", err)
		}
		if got := r.FormValue("username"); got != "alice" {
			t.Errorf("username = %q", got)
		}
		if got := r.FormValue("password"); got != "secret" {
			t.Errorf("password = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "tok-123",
			"token_type":   "bearer",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	tok, err := c.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok != "tok-123" || c.Token() != "tok-123" {
		t.Errorf("token = %q, client token = %q", tok, c.Token())
	}
}

func TestLoginBadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Login error = %v, want ErrUnauthorized", err)
	}
	if c.Token() != "" {
		t.Errorf("failed login left token %q", c.Token())
	}
}

func TestBearerTokenAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(User{ID: 1, Username: "alice", Role: "user"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok-123")
	u, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("Username = %q", u.Username)
	}
}

func TestExpiredTokenMapsToErrUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"token expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("stale")
	if _, err := c.Conversations(context.Background(), 0, 50); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestStatusErrorCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "admin role required", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.AdminUsers(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if se.Status != http.StatusForbidden || se.Body != "admin role required" {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestConversationCRUD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /api/chemagent/conversations":
			q := r.URL.Query()
			if q.Get("skip") != "0" || q.Get("limit") != "50" {
				t.Errorf("paging query = %v", q)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"conversations": []Conversation{
					{ID: "c1", Title: "苯的分子量", UpdatedAt: "2026-08-27T10:00:00", MessageCount: 4},
					{ID: "c2", Title: "Untitled", UpdatedAt: "2026-08-26T09:00:00", MessageCount: 0},
				},
			})
		case "GET /api/chemagent/conversations/c1":
			json.NewEncoder(w).Encode(ConversationDetail{
				Conversation: Conversation{ID: "c1", Title: "苯的分子量", ModelUsed: "deepseek-chat"},
				Messages: []StoredMessage{
					{Role: "user", Content: "计算苯的分子量", CreatedAt: "2026-08-27T09:59:00"},
					{Role: "assistant", Content: "78.11 g/mol", CreatedAt: "2026-08-27T10:00:00", ModelUsed: "deepseek-chat"},
				},
			})
		case "PUT /api/chemagent/conversations/c1/title":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["title"] != "Benzene" {
				t.Errorf("rename title = %q", body["title"])
			}
		case "DELETE /api/chemagent/conversations/c2":
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok")
	ctx := context.Background()

	list, err := c.Conversations(ctx, 0, 50)
	if err != nil || len(list) != 2 {
		t.Fatalf("Conversations = %v, %v", list, err)
	}
	detail, err := c.Conversation(ctx, "c1")
	if err != nil || len(detail.Messages) != 2 {
		t.Fatalf("Conversation = %v, %v", detail, err)
	}
	if detail.Messages[1].ModelUsed != "deepseek-chat" {
		t.Errorf("stored message model = %q", detail.Messages[1].ModelUsed)
	}
	if err := c.RenameConversation(ctx, "c1", "Benzene"); err != nil {
		t.Fatalf("RenameConversation: %v", err)
	}
	if err := c.DeleteConversation(ctx, "c2"); err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}
}

func TestConversationsSortedNewestFirst(t *testing.T) {
	// The backend's ordering is not part of the contract; the client
	// re-sorts by updated_at descending.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"conversations": []Conversation{
				{ID: "old", UpdatedAt: "2026-08-01T08:00:00"},
				{ID: "new", UpdatedAt: "2026-08-27T18:30:00"},
				{ID: "mid", UpdatedAt: "2026-08-15T12:00:00"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	list, err := c.Conversations(context.Background(), 0, 50)
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	var got []string
	for _, conv := range list {
		got = append(got, conv.ID)
	}
	want := []string{"new", "mid", "old"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestStreamChatRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chemagent/stream_chat" {
			t.Errorf("path = %q, want /api/chemagent/stream_chat", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("Accept = %q", got)
		}
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if raw["input"] != "计算苯的分子量" {
			t.Errorf("input = %v", raw["input"])
		}
		if raw["model"] != "deepseek-chat" || raw["tools_model"] != "deepseek-chat" {
			t.Errorf("models = %v / %v", raw["model"], raw["tools_model"])
		}
		if raw["streaming"] != true {
			t.Errorf("streaming = %v, want true", raw["streaming"])
		}
		if raw["local_rxn"] != false {
			t.Errorf("local_rxn = %v, want false", raw["local_rxn"])
		}
		if _, ok := raw["api_keys"]; !ok {
			t.Error("api_keys missing from request body")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"final\",\"output\":\"78.11\"}\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok")
	body, err := c.StreamChat(context.Background(), StreamChatRequest{
		Input:      "计算苯的分子量",
		Model:      "deepseek-chat",
		ToolsModel: "deepseek-chat",
		Streaming:  true,
		APIKeys:    map[string]string{},
	})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer body.Close()
	raw, _ := io.ReadAll(body)
	if len(raw) == 0 {
		t.Error("stream body is empty")
	}
}

func TestAdminUserManagement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /api/admin/users":
			json.NewEncoder(w).Encode([]AdminUser{
				{ID: 1, Username: "alice", IsAdmin: true},
				{ID: 2, Username: "bob", IsAdmin: false},
			})
		case "POST /api/admin/user/2/set_admin":
			if got := r.URL.Query().Get("is_admin"); got != "true" {
				t.Errorf("is_admin = %q, want true", got)
			}
		case "DELETE /api/admin/user/2":
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok")
	ctx := context.Background()

	users, err := c.AdminUsers(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("AdminUsers = %v, %v", users, err)
	}
	if !users[0].IsAdmin || users[1].IsAdmin {
		t.Errorf("admin flags = %v / %v", users[0].IsAdmin, users[1].IsAdmin)
	}
	if err := c.SetAdmin(ctx, 2, true); err != nil {
		t.Fatalf("SetAdmin: %v", err)
	}
	if err := c.DeleteUser(ctx, 2); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
}

func TestVectorEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /api/vector/stats":
			// Stats ride inside the data envelope.
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data": VectorStats{
					UseFAISS:            true,
					EmbeddingModel:      "text-embedding-3-small",
					EmbeddingsAvailable: true,
					FAISSAvailable:      true,
					TotalVectors:        240,
					Dimension:           1536,
					IndexType:           "IndexFlatIP",
				},
			})
		case "POST /api/vector/build":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "index built"})
		case "POST /api/vector/refresh":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "index refreshed"})
		case "DELETE /api/vector/index":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "index deleted"})
		case "POST /api/vector/batch-update":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "backfill queued"})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok")
	ctx := context.Background()

	stats, err := c.VectorStats(ctx)
	if err != nil {
		t.Fatalf("VectorStats: %v", err)
	}
	if !stats.UseFAISS || stats.TotalVectors != 240 || stats.Dimension != 1536 {
		t.Errorf("stats = %+v", stats)
	}

	for _, tc := range []struct {
		name string
		call func() (string, error)
		want string
	}{
		{"build", func() (string, error) { return c.BuildVectorIndex(ctx) }, "index built"},
		{"refresh", func() (string, error) { return c.RefreshVectorIndex(ctx) }, "index refreshed"},
		{"delete", func() (string, error) { return c.DeleteVectorIndex(ctx) }, "index deleted"},
		{"batch-update", func() (string, error) { return c.BatchUpdateVectors(ctx) }, "backfill queued"},
	} {
		msg, err := tc.call()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if msg != tc.want {
			t.Errorf("%s message = %q, want %q", tc.name, msg, tc.want)
		}
	}
}

func TestVectorTestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/vector/test-search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("query") != "benzene ring" || q.Get("top_k") != "5" {
			t.Errorf("query = %v", q)
		}
		// Results arrive at the top level, not inside the data envelope.
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"query":   "benzene ring",
			"results": []VectorSearchResult{
				{ConversationID: "c1", Similarity: 0.92, KeyEntities: []string{"C6H6"}, Topics: []string{"aromatics"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	results, err := c.TestVectorSearch(context.Background(), "benzene ring", 5)
	if err != nil || len(results) != 1 {
		t.Fatalf("TestVectorSearch = %v, %v", results, err)
	}
	if results[0].ConversationID != "c1" || results[0].Similarity != 0.92 {
		t.Errorf("result = %+v", results[0])
	}
}

func TestFeedbackReviewFlow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /api/feedback/pending":
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data": []PendingFeedback{
					{FeedbackID: "fb-1", Type: "synthesis", TaskDescription: "Aspirin route", Questions: []string{"Proceed with acetylation?"}},
				},
			})
		case "POST /api/feedback/fb-1/approve":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["expert_name"] != "alice" || body["message"] != "Safe to proceed" {
				t.Errorf("approve body = %v", body)
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "approved"})
		case "POST /api/feedback/fb-2/reject":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["expert_name"] != "alice" {
				t.Errorf("reject body = %v", body)
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "rejected"})
		case "GET /api/feedback/history":
			q := r.URL.Query()
			if q.Get("limit") != "20" || q.Get("offset") != "40" {
				t.Errorf("paging query = %v", q)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data": FeedbackHistoryPage{
					Feedbacks: []FeedbackRecord{{FeedbackID: "fb-0", Status: "approved", ExpertName: "alice"}},
					Total:     41,
					Limit:     20,
					Offset:    40,
				},
			})
		case "GET /api/feedback/stats":
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data": FeedbackStats{
					StatusDistribution: map[string]int{"approved": 30, "rejected": 5, "pending": 6},
					Recent7Days:        4,
					Total:              41,
				},
			})
		case "DELETE /api/feedback/fb-0":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "deleted"})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok")
	ctx := context.Background()

	pending, err := c.PendingFeedbacks(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("PendingFeedbacks = %v, %v", pending, err)
	}
	if pending[0].FeedbackID != "fb-1" || len(pending[0].Questions) != 1 {
		t.Errorf("pending = %+v", pending[0])
	}

	if msg, err := c.ApproveFeedback(ctx, "fb-1", "alice", "Safe to proceed"); err != nil || msg != "approved" {
		t.Fatalf("ApproveFeedback = %q, %v", msg, err)
	}
	if msg, err := c.RejectFeedback(ctx, "fb-2", "alice", "Too hazardous"); err != nil || msg != "rejected" {
		t.Fatalf("RejectFeedback = %q, %v", msg, err)
	}

	page, err := c.FeedbackHistory(ctx, 20, 40)
	if err != nil {
		t.Fatalf("FeedbackHistory: %v", err)
	}
	if page.Total != 41 || len(page.Feedbacks) != 1 || page.Feedbacks[0].Status != "approved" {
		t.Errorf("page = %+v", page)
	}

	stats, err := c.FeedbackStats(ctx)
	if err != nil {
		t.Fatalf("FeedbackStats: %v", err)
	}
	if stats.Total != 41 || stats.StatusDistribution["approved"] != 30 {
		t.Errorf("stats = %+v", stats)
	}

	if err := c.DeleteFeedback(ctx, "fb-0"); err != nil {
		t.Fatalf("DeleteFeedback: %v", err)
	}
}

func TestWrappedEnvelopeFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "feedback store unavailable",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.FeedbackStats(context.Background()); err == nil {
		t.Error("success=false envelope did not surface an error")
	}
}

func TestModelsList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chemagent/models" {
			t.Errorf("path = %q, want /api/chemagent/models", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"models": []ModelInfo{
				{ID: "deepseek-chat", Name: "DeepSeek Chat", Description: "general reasoning"},
				{ID: "gpt-4o", Name: "GPT-4o"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	models, err := c.Models(context.Background())
	if err != nil || len(models) != 2 {
		t.Fatalf("Models = %v, %v", models, err)
	}
	if models[0].ID != "deepseek-chat" || models[0].Description != "general reasoning" {
		t.Errorf("model = %+v", models[0])
	}
}
