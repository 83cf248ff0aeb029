package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIClient_SendsSettingsAndParsesReply(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","model":"deepseek-chat",
			"choices":[{"index":0,"message":{"role":"assistant","content":"2-3 gün"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":10,"completion_tokens":3,"total_tokens":13}}`))
	}))
	defer srv.Close()

	c := NewOpenAI("key", srv.URL, "deepseek-chat", 0.7, 300)
	resp, err := c.Generate(context.Background(), []Message{{Role: "system", Content: "s"}, {Role: "user", Content: "q"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "2-3 gün" || resp.TotalTokens != 13 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if got["model"] != "deepseek-chat" || got["max_tokens"] != float64(300) {
		t.Fatalf("request body: %+v", got)
	}
}

func TestOpenAIClient_RemoteErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	c := NewOpenAI("key", srv.URL, "deepseek-chat", 0.7, 300)
	_, err := c.Generate(context.Background(), []Message{{Role: "user", Content: "q"}})
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("want *RemoteError, got %T %v", err, err)
	}
	if re.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status: %d", re.StatusCode)
	}
}
