package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompleteParsesChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("auth = %q", got)
		}

		var req struct {
			Model    string        `json:"model"`
			Messages []ChatMessage `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", req.Messages)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "hello back"}},
			},
		})
	}))
	defer server.Close()

	client := NewOpenAICompatibleClient(ChatConfig{BaseURL: server.URL, APIKey: "key", Model: "test-model"})
	reply, err := client.Complete(context.Background(), []ChatMessage{
		{Role: "system", Content: "You are helpful."},
		{Role: "user", Content: "hello"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "hello back" {
		t.Errorf("reply = %q", reply)
	}
}

func TestCompleteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenAICompatibleClient(ChatConfig{BaseURL: server.URL, APIKey: "key", Model: "m"})
	if _, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client := NewOpenAICompatibleClient(ChatConfig{BaseURL: server.URL, APIKey: "key", Model: "m"})
	if _, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}); err == nil {
		t.Fatal("expected error on empty choices")
	}
}
