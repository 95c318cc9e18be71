package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testConfig(endpoint string) Config {
	return Config{
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		Endpoint:    endpoint,
		APIKey:      "test-key",
		MaxRetries:  2,
		TimeoutSecs: 5,
	}
}

func chatReply(content string) string {
	return `{"choices": [{"message": {"role": "assistant", "content": ` + mustJSON(content) + `}}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		in           string
		wantProvider string
		wantModel    string
		wantErr      bool
	}{
		{"openai/gpt-4o-mini", "openai", "gpt-4o-mini", false},
		{"openrouter/google/gemini-2.0-flash", "openrouter", "google/gemini-2.0-flash", false},
		{"ollama/llama3.2", "ollama", "llama3.2", false},
		{"", "openai", "gpt-4o-mini", false},
		{"gpt-4o-mini", "", "", true},
		{"banana/model", "", "", true},
		{"openai/", "", "", true},
	}

	for _, tt := range tests {
		cfg, err := ParseFlag(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFlag(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFlag(%q): %v", tt.in, err)
			continue
		}
		if cfg.Provider != tt.wantProvider || cfg.Model != tt.wantModel {
			t.Errorf("ParseFlag(%q) = %s/%s, want %s/%s", tt.in, cfg.Provider, cfg.Model, tt.wantProvider, tt.wantModel)
		}
	}
}

func TestClient_Complete(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Write([]byte(chatReply(`{"ok": true}`)))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	got, err := client.Complete(context.Background(), "hello", CompletionOpts{
		System:      "be terse",
		Format:      "json",
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"ok": true}` {
		t.Errorf("unexpected response %q", got)
	}

	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("expected system+user messages, got %+v", gotReq.Messages)
	}
	if gotReq.ResponseFormat == nil || gotReq.ResponseFormat.Type != "json_object" {
		t.Error("expected json_object response format")
	}
}

func TestClient_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(chatReply("second time lucky")))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	got, err := client.Complete(context.Background(), "hi", CompletionOpts{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "second time lucky" {
		t.Errorf("unexpected response %q", got)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestClient_ExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 0
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Complete(context.Background(), "hi", CompletionOpts{}); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = client.Complete(ctx, "hi", CompletionOpts{})
	if err == nil {
		t.Fatal("expected error")
	}
	// Must give up during backoff, not sleep the full schedule.
	if time.Since(start) > 2*time.Second {
		t.Error("cancellation did not interrupt backoff")
	}
}

func TestClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 0
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Complete(context.Background(), "hi", CompletionOpts{}); err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Errorf("expected no-choices error, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Provider: "openai", Model: "gpt-4o-mini", Endpoint: "https://x", APIKey: "k"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	noKey := cfg
	noKey.APIKey = ""
	if err := noKey.Validate(); err == nil {
		t.Error("missing key should fail for openai")
	}

	ollama := Config{Provider: "ollama", Model: "llama3.2", Endpoint: "http://localhost:11434"}
	if err := ollama.Validate(); err != nil {
		t.Errorf("ollama without key should validate: %v", err)
	}
}

func TestDecodeJSON_StripsFences(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}

	if err := DecodeJSON("```json\n{\"a\": 3}\n```", &v); err != nil {
		t.Fatalf("fenced JSON: %v", err)
	}
	if v.A != 3 {
		t.Errorf("got %d, want 3", v.A)
	}

	if err := DecodeJSON(`{"a": 7}`, &v); err != nil {
		t.Fatalf("bare JSON: %v", err)
	}
	if v.A != 7 {
		t.Errorf("got %d, want 7", v.A)
	}

	if err := DecodeJSON("not json at all", &v); err == nil {
		t.Error("expected error for garbage input")
	}
}
