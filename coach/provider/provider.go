// Package provider contains one adapter per supported LLM backend. Every
// adapter speaks its backend's native wire format and hands back the raw
// completion text; interpreting that text is the caller's job.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Caller is the single behavior all adapters share: send one prompt, return
// the raw completion text. model may be "" to use the backend's default.
type Caller interface {
	Call(ctx context.Context, prompt, credential, model string) (string, error)
}

// Error is a failure reported by a specific backend. The message is the
// upstream error body where one was available, so substring classification
// upstream sees the original wording.
type Error struct {
	Backend string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Backend, e.Message)
}

const defaultHTTPTimeout = 60 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// postJSON marshals payload, POSTs it with the given headers, and decodes a
// JSON response into out. Non-2xx statuses become *Error with the body's
// error message when one can be extracted.
func postJSON(ctx context.Context, client *http.Client, backend, url string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", backend, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", backend, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s network error: %w", backend, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", backend, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Backend: backend, Message: apiErrorMessage(data, resp.StatusCode)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", backend, err)
	}
	return nil
}

// apiErrorMessage digs the human-readable message out of an error body. The
// backends mostly agree on {"error": {"message": ...}}, with string and
// top-level variants.
func apiErrorMessage(body []byte, status int) string {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if len(envelope.Error) > 0 {
			var nested struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(envelope.Error, &nested); err == nil && nested.Message != "" {
				return fmt.Sprintf("HTTP %d: %s", status, nested.Message)
			}
			var plain string
			if err := json.Unmarshal(envelope.Error, &plain); err == nil && plain != "" {
				return fmt.Sprintf("HTTP %d: %s", status, plain)
			}
		}
		if envelope.Message != "" {
			return fmt.Sprintf("HTTP %d: %s", status, envelope.Message)
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

// chatMessage and chatRequest cover the OpenAI-compatible chat completion
// shape shared by OpenRouter and Hugging Face.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (r chatResponse) text(backend string) (string, error) {
	if len(r.Choices) == 0 || r.Choices[0].Message.Content == "" {
		return "", &Error{Backend: backend, Message: "empty completion"}
	}
	return r.Choices[0].Message.Content, nil
}
