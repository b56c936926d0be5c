package completion

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/iksnae/persona-chat/internal"
)

const (
	// DefaultBaseURL is Gemini's OpenAI-compatible endpoint
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

	// DefaultModel is the model asked for when none is configured
	DefaultModel = "gemini-2.5-pro"
)

// DirectConfig configures a DirectClient
type DirectConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// DirectClient builds the persona prompt itself and sends it straight to an
// OpenAI-compatible chat completions endpoint.
type DirectClient struct {
	client *openai.Client
	model  string
}

// NewDirectClient creates a DirectClient. A client without an API key is
// returned as-is and fails every call with ErrNotConfigured.
func NewDirectClient(cfg DirectConfig) *DirectClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	c := &DirectClient{model: cfg.Model}
	if strings.TrimSpace(cfg.APIKey) != "" {
		oc := openai.DefaultConfig(cfg.APIKey)
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		c.client = openai.NewClientWithConfig(oc)
	}
	return c
}

// Configured reports whether the client has a credential
func (c *DirectClient) Configured() bool {
	return c.client != nil
}

// Model returns the model name requests are sent with
func (c *DirectClient) Model() string {
	return c.model
}

// Complete sends one prompt and returns the first choice's text
func (c *DirectClient) Complete(ctx context.Context, persona, userText string) (string, error) {
	if c.client == nil {
		return "", &CompletionError{Backend: "direct", Err: ErrNotConfigured}
	}

	prompt := BuildPrompt(persona, userText)
	internal.LogDebug("Sending %d-char prompt to %s", len(prompt), c.model)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &CompletionError{Backend: "direct", Err: translateError(err)}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &CompletionError{Backend: "direct", Err: ErrEmptyReply}
	}
	return resp.Choices[0].Message.Content, nil
}

func translateError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{Status: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return err
}
