package provider

import (
	"context"
	"net/http"
)

const (
	openRouterBaseURL      = "https://openrouter.ai/api/v1"
	openRouterDefaultModel = "openai/gpt-4-turbo"
	openRouterReferer      = "https://threadly.app"
	openRouterTitle        = "Threadly - AI Conversation Strategist"
)

// OpenRouter speaks the OpenAI-compatible chat completions dialect, plus the
// attribution headers OpenRouter uses for app rankings.
type OpenRouter struct {
	BaseURL      string
	Instructions string
	client       *http.Client
}

func NewOpenRouter(instructions string) *OpenRouter {
	return &OpenRouter{
		BaseURL:      openRouterBaseURL,
		Instructions: instructions,
		client:       newHTTPClient(),
	}
}

func (o *OpenRouter) Call(ctx context.Context, prompt, credential, model string) (string, error) {
	if model == "" {
		model = openRouterDefaultModel
	}
	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: o.Instructions},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.7,
		MaxTokens:      2000,
		ResponseFormat: map[string]any{"type": "json_object"},
	}
	headers := map[string]string{
		"Authorization": "Bearer " + credential,
		"HTTP-Referer":  openRouterReferer,
		"X-Title":       openRouterTitle,
	}

	var out chatResponse
	if err := postJSON(ctx, o.client, "openrouter", o.BaseURL+"/chat/completions", headers, payload, &out); err != nil {
		return "", err
	}
	return out.text("openrouter")
}
