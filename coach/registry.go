package coach

import "fmt"

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderGemini      Provider = "gemini"
	ProviderOpenAI      Provider = "openai"
	ProviderClaude      Provider = "claude"
	ProviderOpenRouter  Provider = "openrouter"
	ProviderHuggingFace Provider = "huggingface"
)

// DefaultProvider is used when the caller does not select one.
const DefaultProvider = ProviderGemini

// ProviderEndpoint describes one backend: where it lives and which models it serves.
// The table is defined once at startup and never mutated.
type ProviderEndpoint struct {
	Name         Provider
	BaseURL      string
	Models       []string
	DefaultModel string
}

var providerEndpoints = map[Provider]ProviderEndpoint{
	ProviderGemini: {
		Name:         ProviderGemini,
		BaseURL:      "https://generativelanguage.googleapis.com/v1beta/models",
		Models:       []string{"gemini-2.0-flash-exp", "gemini-1.5-pro", "gemini-1.5-flash"},
		DefaultModel: "gemini-2.0-flash-exp",
	},
	ProviderOpenAI: {
		Name:         ProviderOpenAI,
		BaseURL:      "https://api.openai.com/v1",
		Models:       []string{"gpt-4-turbo", "gpt-4", "gpt-3.5-turbo"},
		DefaultModel: "gpt-4-turbo",
	},
	ProviderClaude: {
		Name:         ProviderClaude,
		BaseURL:      "https://api.anthropic.com/v1",
		Models:       []string{"claude-3-opus", "claude-3-sonnet", "claude-3-haiku"},
		DefaultModel: "claude-3-sonnet",
	},
	ProviderOpenRouter: {
		Name:    ProviderOpenRouter,
		BaseURL: "https://openrouter.ai/api/v1",
		Models: []string{
			"openai/gpt-4-turbo", "openai/gpt-4", "anthropic/claude-3-sonnet",
			"meta-llama/llama-2-70b-chat", "mistralai/mistral-7b-instruct",
		},
		DefaultModel: "openai/gpt-4-turbo",
	},
	ProviderHuggingFace: {
		Name:         ProviderHuggingFace,
		BaseURL:      "https://router.huggingface.co/v1",
		Models:       []string{"Qwen/Qwen2.5-7B-Instruct:featherless-ai", "meta-llama/Llama-3.1-8B-Instruct"},
		DefaultModel: "Qwen/Qwen2.5-7B-Instruct:featherless-ai",
	},
}

// Endpoint returns the static endpoint record for a provider. An unknown
// provider is a programming error at the call site, not user input.
func Endpoint(p Provider) (ProviderEndpoint, error) {
	ep, ok := providerEndpoints[p]
	if !ok {
		return ProviderEndpoint{}, fmt.Errorf("unknown provider: %s", p)
	}
	return ep, nil
}

// Providers lists every registered provider tag.
func Providers() []Provider {
	return []Provider{ProviderGemini, ProviderOpenAI, ProviderClaude, ProviderOpenRouter, ProviderHuggingFace}
}

// Models lists the supported model identifiers for a provider. Unknown
// providers yield nil.
func Models(p Provider) []string {
	ep, ok := providerEndpoints[p]
	if !ok {
		return nil
	}
	return append([]string(nil), ep.Models...)
}
