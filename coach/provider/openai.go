package provider

import (
	"context"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const openAIDefaultModel = "gpt-4-turbo"

var threadlyResponseSchema = generateSchema[threadlySchema]()

// OpenAI calls the Responses API through the official SDK, with structured
// output pinned to the response schema so well-formed JSON comes back without
// fence stripping. Clients are cached per credential since each carries its
// key in construction options.
type OpenAI struct {
	BaseURL      string
	Instructions string

	mu      sync.Mutex
	clients map[string]*openai.Client
}

func NewOpenAI(instructions string) *OpenAI {
	return &OpenAI{
		Instructions: instructions,
		clients:      make(map[string]*openai.Client),
	}
}

func (o *OpenAI) clientFor(credential string) *openai.Client {
	o.mu.Lock()
	defer o.mu.Unlock()
	if c, ok := o.clients[credential]; ok {
		return c
	}
	opts := []option.RequestOption{option.WithAPIKey(credential)}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	client := openai.NewClient(opts...)
	o.clients[credential] = &client
	return &client
}

func (o *OpenAI) Call(ctx context.Context, prompt, credential, model string) (string, error) {
	if model == "" {
		model = openAIDefaultModel
	}
	client := o.clientFor(credential)

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "ThreadlyResponse",
			Schema:      threadlyResponseSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Conversation analysis JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           model,
		MaxOutputTokens: openai.Int(2000),
		Instructions:    openai.String(o.Instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := client.Responses.New(ctx, params)
	if err != nil {
		return "", &Error{Backend: "openai", Message: err.Error()}
	}
	text := resp.OutputText()
	if text == "" {
		return "", &Error{Backend: "openai", Message: "empty completion"}
	}
	return text, nil
}
