package provider

import (
	"context"
	"net/http"
)

const (
	anthropicBaseURL      = "https://api.anthropic.com/v1"
	anthropicDefaultModel = "claude-3-sonnet"
	anthropicVersion      = "2023-06-01"
)

// Anthropic calls the Messages API. Authentication uses the x-api-key header
// together with a pinned anthropic-version.
type Anthropic struct {
	BaseURL      string
	Instructions string
	client       *http.Client
}

func NewAnthropic(instructions string) *Anthropic {
	return &Anthropic{
		BaseURL:      anthropicBaseURL,
		Instructions: instructions,
		client:       newHTTPClient(),
	}
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (a *Anthropic) Call(ctx context.Context, prompt, credential, model string) (string, error) {
	if model == "" {
		model = anthropicDefaultModel
	}
	payload := anthropicRequest{
		Model:     model,
		MaxTokens: 2000,
		System:    a.Instructions,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         credential,
		"anthropic-version": anthropicVersion,
	}

	var out anthropicResponse
	if err := postJSON(ctx, a.client, "claude", a.BaseURL+"/messages", headers, payload, &out); err != nil {
		return "", err
	}
	if len(out.Content) == 0 || out.Content[0].Text == "" {
		return "", &Error{Backend: "claude", Message: "empty completion"}
	}
	return out.Content[0].Text, nil
}
