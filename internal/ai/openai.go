package ai

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Client wraps the official OpenAI SDK client and exposes the minimal
// helpers used by the pipeline.
type Client struct {
	apiKey  string
	baseURL string
	sdk     openai.Client
}

// NewClient constructs a new OpenAI client. The apiKey is required.
// baseURL is optional (empty string uses the default API endpoint).
func NewClient(apiKey, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	sdk := openai.NewClient(opts...)
	return &Client{apiKey: apiKey, baseURL: baseURL, sdk: sdk}, nil
}

func (c *Client) APIKey() string  { return c.apiKey }
func (c *Client) BaseURL() string { return c.baseURL }

// GenerateText issues one chat-completion request carrying the prompt as the
// sole user message and returns the single textual reply.
func (c *Client) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	res, err := c.sdk.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("completion response carried no choices")
	}
	return res.Choices[0].Message.Content, nil
}

// ListModels returns the identifiers of the models available to the account.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	page, err := c.sdk.Models.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
