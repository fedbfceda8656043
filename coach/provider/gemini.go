package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const (
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta/models"
	geminiDefaultModel = "gemini-2.0-flash-exp"
)

// Gemini calls Google's generateContent endpoint. The API key travels as a
// URL query parameter, not a header.
type Gemini struct {
	BaseURL      string
	Instructions string
	client       *http.Client
}

func NewGemini(instructions string) *Gemini {
	return &Gemini{
		BaseURL:      geminiBaseURL,
		Instructions: instructions,
		client:       newHTTPClient(),
	}
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  geminiGeneration `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGeneration struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) Call(ctx context.Context, prompt, credential, model string) (string, error) {
	if model == "" {
		model = geminiDefaultModel
	}
	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", g.BaseURL, model, url.QueryEscape(credential))

	payload := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: g.Instructions}}},
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGeneration{
			Temperature:      0.7,
			MaxOutputTokens:  2000,
			ResponseMimeType: "application/json",
		},
	}

	var out geminiResponse
	if err := postJSON(ctx, g.client, "gemini", endpoint, nil, payload, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 || out.Candidates[0].Content.Parts[0].Text == "" {
		return "", &Error{Backend: "gemini", Message: "empty completion"}
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
