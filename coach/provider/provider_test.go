package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGemini_Call(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	var gotBody geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": `{"ok":1}`}}}},
			},
		})
	}))
	defer srv.Close()

	g := NewGemini("be helpful")
	g.BaseURL = srv.URL
	got, err := g.Call(context.Background(), "the prompt", "secret-key", "")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != `{"ok":1}` {
		t.Fatalf("got %q", got)
	}
	if gotKey != "secret-key" {
		t.Fatalf("key=%q, want it in the URL query", gotKey)
	}
	if !strings.Contains(gotPath, "gemini-2.0-flash-exp:generateContent") {
		t.Fatalf("path=%q", gotPath)
	}
	if gotBody.SystemInstruction == nil || gotBody.SystemInstruction.Parts[0].Text != "be helpful" {
		t.Fatalf("systemInstruction=%+v", gotBody.SystemInstruction)
	}
	if gotBody.GenerationConfig.ResponseMimeType != "application/json" {
		t.Fatalf("responseMimeType=%q", gotBody.GenerationConfig.ResponseMimeType)
	}
	if gotBody.Contents[0].Parts[0].Text != "the prompt" {
		t.Fatalf("prompt=%q", gotBody.Contents[0].Parts[0].Text)
	}
}

func TestGemini_EmptyCompletion(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	g := NewGemini("x")
	g.BaseURL = srv.URL
	_, err := g.Call(context.Background(), "p", "k", "")
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("err=%v, want *Error", err)
	}
	if perr.Message != "empty completion" {
		t.Fatalf("Message=%q", perr.Message)
	}
}

func TestAnthropic_Call(t *testing.T) {
	t.Parallel()

	var gotKey, gotVersion string
	var gotBody anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []any{map[string]any{"text": "claude says hi"}},
		})
	}))
	defer srv.Close()

	a := NewAnthropic("system text")
	a.BaseURL = srv.URL
	got, err := a.Call(context.Background(), "user text", "sk-ant", "claude-3-opus")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != "claude says hi" {
		t.Fatalf("got %q", got)
	}
	if gotKey != "sk-ant" || gotVersion != anthropicVersion {
		t.Fatalf("headers key=%q version=%q", gotKey, gotVersion)
	}
	if gotBody.Model != "claude-3-opus" || gotBody.System != "system text" {
		t.Fatalf("body=%+v", gotBody)
	}
	if gotBody.Messages[0].Role != "user" || gotBody.Messages[0].Content != "user text" {
		t.Fatalf("messages=%+v", gotBody.Messages)
	}
}

func TestOpenRouter_Call(t *testing.T) {
	t.Parallel()

	var gotAuth, gotReferer, gotTitle string
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "routed"}}},
		})
	}))
	defer srv.Close()

	o := NewOpenRouter("sys")
	o.BaseURL = srv.URL
	got, err := o.Call(context.Background(), "p", "or-key", "")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != "routed" {
		t.Fatalf("got %q", got)
	}
	if gotAuth != "Bearer or-key" {
		t.Fatalf("Authorization=%q", gotAuth)
	}
	if gotReferer != openRouterReferer || gotTitle != openRouterTitle {
		t.Fatalf("attribution headers=%q/%q", gotReferer, gotTitle)
	}
	if gotBody.Model != openRouterDefaultModel {
		t.Fatalf("Model=%q", gotBody.Model)
	}
	if gotBody.ResponseFormat["type"] != "json_object" {
		t.Fatalf("ResponseFormat=%v", gotBody.ResponseFormat)
	}
	if gotBody.Messages[0].Role != "system" || gotBody.Messages[0].Content != "sys" {
		t.Fatalf("messages=%+v", gotBody.Messages)
	}
}

func TestHuggingFace_Call(t *testing.T) {
	t.Parallel()

	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "hf reply"}}},
		})
	}))
	defer srv.Close()

	h := NewHuggingFace("sys")
	h.BaseURL = srv.URL
	got, err := h.Call(context.Background(), "p", "hf-token", "")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != "hf reply" {
		t.Fatalf("got %q", got)
	}
	if gotAuth != "Bearer hf-token" {
		t.Fatalf("Authorization=%q", gotAuth)
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("path=%q", gotPath)
	}
}

func TestPostJSON_ErrorExtraction(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"nested message", 401, `{"error":{"message":"invalid api key"}}`, "HTTP 401: invalid api key"},
		{"string error", 429, `{"error":"quota exceeded"}`, "HTTP 429: quota exceeded"},
		{"top-level message", 400, `{"message":"bad request"}`, "HTTP 400: bad request"},
		{"opaque body", 500, `<html>oops</html>`, "HTTP 500"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			var out struct{}
			err := postJSON(context.Background(), newHTTPClient(), "testbackend", srv.URL, nil, map[string]any{}, &out)
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("err=%v, want *Error", err)
			}
			if perr.Backend != "testbackend" {
				t.Fatalf("Backend=%q", perr.Backend)
			}
			if perr.Message != tc.want {
				t.Fatalf("Message=%q, want %q", perr.Message, tc.want)
			}
		})
	}
}

func TestPostJSON_NetworkError(t *testing.T) {
	t.Parallel()

	var out struct{}
	err := postJSON(context.Background(), newHTTPClient(), "testbackend", "http://127.0.0.1:1", nil, map[string]any{}, &out)
	if err == nil {
		t.Fatalf("expected network error")
	}
	if !strings.Contains(err.Error(), "network error") {
		t.Fatalf("err=%v", err)
	}
}

func TestChatResponse_Empty(t *testing.T) {
	t.Parallel()

	var r chatResponse
	if _, err := r.text("x"); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}
