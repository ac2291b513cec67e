package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Result points back into the candidate document slice, ordered by
// descending relevance.
type Result struct {
	Index int
	Score float64
}

// Reranker reorders candidate documents by relevance to the query and keeps
// the topN best.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]Result, error)
}

const defaultBaseURL = "https://api.cohere.com"

// Cohere calls the Cohere v2 rerank endpoint. One request per call, no
// retries.
type Cohere struct {
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
}

var _ Reranker = (*Cohere)(nil)

// NewCohere creates a reranker using the given API key.
func NewCohere(apiKey string) *Cohere {
	return &Cohere{
		client:  &http.Client{Timeout: 30 * time.Second},
		apiKey:  apiKey,
		model:   "rerank-v3.5",
		baseURL: defaultBaseURL,
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank submits the documents and returns the topN most relevant.
func (c *Cohere) Rerank(ctx context.Context, query string, documents []string, topN int) ([]Result, error) {
	body, err := json.Marshal(rerankRequest{
		Model:     c.model,
		Query:     query,
		Documents: documents,
		TopN:      topN,
	})
	if err != nil {
		return nil, fmt.Errorf("encode rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rerank request: status %d: %s", resp.StatusCode, msg)
	}

	var decoded rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}

	results := make([]Result, len(decoded.Results))
	for i, r := range decoded.Results {
		results[i] = Result{Index: r.Index, Score: r.RelevanceScore}
	}
	return results, nil
}
