package provider

import (
	"context"
	"net/http"
)

const (
	huggingFaceBaseURL      = "https://router.huggingface.co/v1"
	huggingFaceDefaultModel = "Qwen/Qwen2.5-7B-Instruct:featherless-ai"
)

// HuggingFace talks to the HF inference router, which exposes the
// OpenAI-compatible chat completions surface.
type HuggingFace struct {
	BaseURL      string
	Instructions string
	client       *http.Client
}

func NewHuggingFace(instructions string) *HuggingFace {
	return &HuggingFace{
		BaseURL:      huggingFaceBaseURL,
		Instructions: instructions,
		client:       newHTTPClient(),
	}
}

func (h *HuggingFace) Call(ctx context.Context, prompt, credential, model string) (string, error) {
	if model == "" {
		model = huggingFaceDefaultModel
	}
	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: h.Instructions},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	}
	headers := map[string]string{"Authorization": "Bearer " + credential}

	var out chatResponse
	if err := postJSON(ctx, h.client, "huggingface", h.BaseURL+"/chat/completions", headers, payload, &out); err != nil {
		return "", err
	}
	return out.text("huggingface")
}
