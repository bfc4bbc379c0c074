// Package ollama implements the HTTP client for a locally hosted Ollama
// generate endpoint.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/maxbolgarin/cliex"

	"github.com/worksonmyai/autocommit/internal/debug"
)

// ErrTimeout reports that the model did not answer within the configured
// deadline. Callers treat it as a reported, non-fatal failure.
var ErrTimeout = errors.New("model request timed out")

// Generator produces a free-text completion for a prompt. Implemented by
// Client; tests substitute a mock.
type Generator interface {
	// Generate sends the prompt to the model and returns the raw completion
	// text. When structured is true the model is asked for a JSON object.
	Generate(ctx context.Context, prompt string, structured bool) (string, error)
}

// Client talks to an Ollama /api/generate endpoint.
type Client struct {
	cli      *cliex.HTTP
	endpoint string
	model    string
}

// generateRequest is the wire format of the generate call.
type generateRequest struct {
	Model          string          `json:"model"`
	Prompt         string          `json:"prompt"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// generateResponse is the transport envelope returned by Ollama.
type generateResponse struct {
	Response string `json:"response"`
}

// New creates a Client for the given endpoint and model. The timeout bounds
// every request; there is no retry.
func New(endpoint, model string, timeout time.Duration) (*Client, error) {
	cli, err := cliex.NewWithConfig(cliex.Config{
		UserAgent:      "autocommit",
		RequestTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create HTTP client: %w", err)
	}
	return &Client{cli: cli, endpoint: endpoint, model: model}, nil
}

// Generate implements Generator.
func (c *Client) Generate(ctx context.Context, prompt string, structured bool) (string, error) {
	req := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	}
	if structured {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	if debug.Enabled() {
		if b, err := json.Marshal(req); err == nil {
			debug.DumpJSON("ollama request", b)
		}
	}

	var resp generateResponse
	if _, err := c.cli.Post(ctx, c.endpoint, req, &resp); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || os.IsTimeout(err) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("ollama request: %w", err)
	}

	debug.Logf("raw model response: %s", resp.Response)
	return resp.Response, nil
}
