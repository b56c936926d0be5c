package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/iksnae/persona-chat/internal"
)

// MaxResponseSize caps how much of a response body is read
const MaxResponseSize = 10 * 1024 * 1024

// ChatRequest is the body POSTed to a chat route
type ChatRequest struct {
	Message string `json:"message"`
	Persona string `json:"persona"`
}

// ChatResponse is the body a chat route answers with
type ChatResponse struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// RouteClient talks to a chat route that builds the prompt server-side
type RouteClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewRouteClient creates a RouteClient for endpoint. A nil httpClient uses
// http.DefaultClient; deadlines come from the caller's context.
func NewRouteClient(endpoint string, httpClient *http.Client) *RouteClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RouteClient{endpoint: strings.TrimSpace(endpoint), httpClient: httpClient}
}

// Complete POSTs the message and persona and returns the reply
func (c *RouteClient) Complete(ctx context.Context, persona, userText string) (string, error) {
	reply, err := c.complete(ctx, persona, userText)
	if err != nil {
		return "", &CompletionError{Backend: "route", Err: err}
	}
	return reply, nil
}

func (c *RouteClient) complete(ctx context.Context, persona, userText string) (string, error) {
	if c.endpoint == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(ChatRequest{Message: userText, Persona: persona})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	internal.LogDebug("POST %s (request %s)", c.endpoint, requestID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > MaxResponseSize {
		return "", fmt.Errorf("response exceeds %d bytes", MaxResponseSize)
	}

	var decoded ChatResponse
	decodeErr := json.Unmarshal(data, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := decoded.Error
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &APIError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("malformed response body: %w", decodeErr)
	}
	if decoded.Reply == "" {
		return "", ErrEmptyReply
	}
	return decoded.Reply, nil
}
