package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// VectorStats summarizes the conversation vector index.
type VectorStats struct {
	UseFAISS            bool   `json:"use_faiss"`
	EmbeddingModel      string `json:"embedding_model"`
	EmbeddingsAvailable bool   `json:"embeddings_available"`
	FAISSAvailable      bool   `json:"faiss_available"`
	TotalVectors        int    `json:"total_vectors"`
	Dimension           int    `json:"dimension"`
	IndexType           string `json:"index_type"`
}

// VectorSearchResult is one similarity hit from a test search.
type VectorSearchResult struct {
	ConversationID string   `json:"conversation_id"`
	Similarity     float64  `json:"similarity"`
	KeyEntities    []string `json:"key_entities"`
	Topics         []string `json:"topics"`
}

// VectorStats returns index-level counters. The stats endpoint wraps
// its payload in a {success, data} envelope which is unwrapped here.
func (c *Client) VectorStats(ctx context.Context) (*VectorStats, error) {
	var stats VectorStats
	if _, err := c.doWrapped(ctx, http.MethodGet, "/api/vector/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// BuildVectorIndex builds the index from scratch over all stored
// conversations. Returns the server's status message.
func (c *Client) BuildVectorIndex(ctx context.Context) (string, error) {
	return c.doWrapped(ctx, http.MethodPost, "/api/vector/build", nil, nil, nil)
}

// RefreshVectorIndex re-embeds conversations changed since the last
// build. Returns the server's status message.
func (c *Client) RefreshVectorIndex(ctx context.Context) (string, error) {
	return c.doWrapped(ctx, http.MethodPost, "/api/vector/refresh", nil, nil, nil)
}

// DeleteVectorIndex drops the index entirely. Returns the server's
// status message.
func (c *Client) DeleteVectorIndex(ctx context.Context) (string, error) {
	return c.doWrapped(ctx, http.MethodDelete, "/api/vector/index", nil, nil, nil)
}

// BatchUpdateVectors backfills embeddings for conversations the index
// has not seen. Returns the server's status message.
func (c *Client) BatchUpdateVectors(ctx context.Context) (string, error) {
	return c.doWrapped(ctx, http.MethodPost, "/api/vector/batch-update", nil, nil, nil)
}

// TestVectorSearch runs a similarity query against the index. Unlike
// the other vector endpoints the results arrive at the top level, not
// inside the data envelope.
func (c *Client) TestVectorSearch(ctx context.Context, query string, topK int) ([]VectorSearchResult, error) {
	q := url.Values{}
	q.Set("query", query)
	if topK > 0 {
		q.Set("top_k", strconv.Itoa(topK))
	}
	var resp struct {
		Success bool                 `json:"success"`
		Query   string               `json:"query"`
		Results []VectorSearchResult `json:"results"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/vector/test-search", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
