package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const defaultModel = "o3-mini"

// OpenAIConfig defines the setup for the OpenAI-backed client.
type OpenAIConfig struct {
	// APIKey falls back to the OPENAI_API_KEY environment variable.
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, e.g. for a proxy or test server.
	BaseURL string
}

// OpenAI implements Client using the official openai-go SDK (chat completions).
type OpenAI struct {
	model  string
	client openai.Client
}

var _ Client = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI chat-completion client.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("llm: openai api key missing")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{model: cfg.Model, client: openai.NewClient(opts...)}, nil
}

// Complete requests free-text output from the model.
func (o *OpenAI) Complete(ctx context.Context, p Prompt) (string, error) {
	return o.complete(ctx, p, false)
}

// CompleteJSON requests JSON-formatted output from the model.
func (o *OpenAI) CompleteJSON(ctx context.Context, p Prompt) (string, error) {
	return o.complete(ctx, p, true)
}

func (o *OpenAI) complete(ctx context.Context, p Prompt, jsonMode bool) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(p.User),
		},
	}
	if jsonMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llm: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
