package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sales-ai-brain/internal/conversation"
)

// Client posts messages to a remote monitor's ingestion endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type ingestResponse struct {
	Success bool                 `json:"success"`
	Error   string               `json:"error"`
	Data    conversation.Message `json:"data"`
}

func (c *Client) Ingest(ctx context.Context, req Request) (conversation.Message, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return conversation.Message{}, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/telegram/message", bytes.NewReader(body))
	if err != nil {
		return conversation.Message{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return conversation.Message{}, fmt.Errorf("post message: %w", err)
	}
	defer func(b io.ReadCloser) {
		_ = b.Close()
	}(resp.Body)

	var out ingestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return conversation.Message{}, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if !out.Success {
		return conversation.Message{}, fmt.Errorf("monitor rejected message (status %d): %s", resp.StatusCode, out.Error)
	}
	return out.Data, nil
}
