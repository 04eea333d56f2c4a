package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Config struct {
	BaseURL string
	APIKey  string
	Enabled bool
}

type Result struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Client talks to the external memory API. A disabled client (no key or
// enabled=false) is still safe to call: stores become no-ops and searches
// return nothing.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Enabled && c.cfg.APIKey != ""
}

// Add stores one snippet under the given container tag.
func (c *Client) Add(ctx context.Context, content, containerTag string) error {
	if !c.Enabled() {
		return nil
	}

	reqBody := map[string]interface{}{
		"content":      content,
		"containerTag": containerTag,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal memory add request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v3/documents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build memory add request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("memory add request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("memory add status %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

// Search runs the API's relevance search inside one container tag. Ranking
// and length budgets are whatever the upstream service applies.
func (c *Client) Search(ctx context.Context, query, containerTag string, limit int) ([]Result, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	reqBody := map[string]interface{}{
		"q":            query,
		"containerTag": containerTag,
		"limit":        limit,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal memory search request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v3/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build memory search request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("memory search request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read memory search response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("memory search status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Results []Result `json:"results"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse memory search json failed: %w", err)
	}
	return parsed.Results, nil
}
