package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCohereRerank(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/rerank", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what about inference costs?", req.Query)
		assert.Len(t, req.Documents, 3)
		assert.Equal(t, 2, req.TopN)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"index": 2, "relevance_score": 0.91},
				{"index": 0, "relevance_score": 0.40},
			},
		})
	}))
	defer server.Close()

	c := NewCohere("test-key")
	c.baseURL = server.URL

	results, err := c.Rerank(context.Background(), "what about inference costs?",
		[]string{"doc a", "doc b", "doc c"}, 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, Result{Index: 2, Score: 0.91}, results[0])
	assert.Equal(t, Result{Index: 0, Score: 0.40}, results[1])
}

func TestCohereRerankServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewCohere("test-key")
	c.baseURL = server.URL

	_, err := c.Rerank(context.Background(), "q", []string{"doc"}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
