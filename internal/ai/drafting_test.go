package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/pkg/logger"
)

var testNow = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func TestParseDraftJSON(t *testing.T) {
	raw := "```json\n" + `{
  "title": "Best Wireless Earbuds",
  "description": "Our picks",
  "tags": ["audio", "earbuds"],
  "content": "## Introduction\n\nHello",
  "products": [{"name": "Pods", "asin": "B0ABC"}, {"name": "Buds", "asin": null}]
}` + "\n```"

	draft := ParseDraft(raw, "Wireless Earbuds", testNow)
	if draft.Fallback {
		t.Fatal("Expected parsed draft, got fallback")
	}
	if draft.Title != "Best Wireless Earbuds" {
		t.Errorf("Title = %q", draft.Title)
	}
	if len(draft.Products) != 2 || draft.Products[0].ASIN != "B0ABC" || draft.Products[1].ASIN != "" {
		t.Errorf("Products = %+v", draft.Products)
	}
	if draft.Content != "## Introduction\n\nHello" {
		t.Errorf("Content = %q", draft.Content)
	}
}

func TestParseDraftFallback(t *testing.T) {
	raw := "Here is an article about earbuds, not JSON at all."

	draft := ParseDraft(raw, "Wireless Earbuds", testNow)
	if !draft.Fallback {
		t.Fatal("Expected fallback draft")
	}
	if draft.Content != raw {
		t.Errorf("Content = %q, want raw text %q", draft.Content, raw)
	}
	if len(draft.Tags) != 2 || draft.Tags[0] != "wireless-earbuds" || draft.Tags[1] != "guide" {
		t.Errorf("Tags = %v, want [wireless-earbuds guide]", draft.Tags)
	}
	if draft.Title != "Complete Guide to Wireless Earbuds in 2025" {
		t.Errorf("Title = %q", draft.Title)
	}
	if len(draft.Products) != 0 {
		t.Errorf("Products = %v", draft.Products)
	}
}

func TestParseDraftFillsMissingFields(t *testing.T) {
	draft := ParseDraft(`{"content": "Body only"}`, "GPUs", testNow)
	if draft.Fallback {
		t.Fatal("Expected parsed draft")
	}
	if draft.Title != "Complete Guide to GPUs in 2025" {
		t.Errorf("Title = %q", draft.Title)
	}
	if len(draft.Tags) != 2 || draft.Tags[0] != "gpus" {
		t.Errorf("Tags = %v", draft.Tags)
	}
}

func TestStripMarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"Sure!\n```json\n{\"a\":1}\n```\nDone", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripMarkdownCodeBlock(tt.in); got != tt.want {
			t.Errorf("stripMarkdownCodeBlock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// fakeMessages serves the Messages API with a canned text reply
func fakeMessages(t *testing.T, text string, captured *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if captured != nil {
			json.Unmarshal(body, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "msg_test",
			"type":          "message",
			"role":          "assistant",
			"model":         "claude-test",
			"stop_reason":   "end_turn",
			"stop_sequence": nil,
			"content":       []map[string]interface{}{{"type": "text", "text": text}},
			"usage":         map[string]interface{}{"input_tokens": 12, "output_tokens": 30},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(baseURL string) *Client {
	return NewClient(config.AnthropicConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Model:       "claude-default",
		MaxTokens:   1024,
		Temperature: 0.2,
	}, nil, logger.Nop())
}

func TestDraftPostUsesModelAndLimits(t *testing.T) {
	var req map[string]interface{}
	srv := fakeMessages(t, "not json", &req)

	draft, err := newTestClient(srv.URL).DraftPost(context.Background(), "Wireless Earbuds", "claude-override")
	if err != nil {
		t.Fatalf("DraftPost() error = %v", err)
	}
	if !draft.Fallback || draft.Content != "not json" {
		t.Errorf("unexpected draft %+v", draft)
	}
	if req["model"] != "claude-override" {
		t.Errorf("model = %v", req["model"])
	}
	if req["max_tokens"] != float64(3000) {
		t.Errorf("max_tokens = %v", req["max_tokens"])
	}
	if req["temperature"] != 0.7 {
		t.Errorf("temperature = %v", req["temperature"])
	}
}

func TestAssist(t *testing.T) {
	var req map[string]interface{}
	srv := fakeMessages(t, "  Try a listicle.  ", &req)

	res, err := newTestClient(srv.URL).Assist(context.Background(), "Give me a title idea", 0)
	if err != nil {
		t.Fatalf("Assist() error = %v", err)
	}
	if res.Response != "Try a listicle." {
		t.Errorf("Response = %q", res.Response)
	}
	if res.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42", res.TokensUsed)
	}
	if req["max_tokens"] != float64(DefaultAssistTokens) {
		t.Errorf("max_tokens = %v", req["max_tokens"])
	}
	if req["model"] != "claude-default" {
		t.Errorf("model = %v", req["model"])
	}
}

func TestCompleteWithoutKey(t *testing.T) {
	c := NewClient(config.AnthropicConfig{}, nil, logger.Nop())
	_, err := c.Complete(context.Background(), "sys", "hi")

	var missing *config.MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingError, got %v", err)
	}
	if c.Configured() {
		t.Error("Configured() should be false without a key")
	}
}
