// Package ollama implements the gateway to the generative LLM and the
// embedding model. Both endpoints share one retry-with-backoff policy;
// transport failures are retried, malformed responses are not.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/globonews/newsmapper/internal/pipeline"
)

// Config captures the gateway connection parameters.
type Config struct {
	BaseURL        string
	Model          string
	EmbeddingModel string
	Timeout        time.Duration
}

// Client is a synchronous request/response wrapper around the LLM service.
type Client struct {
	cfg    Config
	http   *http.Client
	retry  pipeline.RetryPolicy
	logger *zap.Logger
}

// New builds a Client. The retry policy is shared by Generate and Embed so
// the backoff contract is implemented once.
func New(cfg Config, retry pipeline.RetryPolicy, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, &pipeline.ConfigurationError{Reason: "ollama base URL is required"}
	}
	if cfg.Model == "" {
		return nil, &pipeline.ConfigurationError{Reason: "ollama model is required"}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		retry:  retry,
		logger: logger,
	}, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends a prompt to the generative model and returns the raw
// response text. When jsonFormat is set the service is asked to constrain
// output to JSON; callers still parse the result defensively.
func (c *Client) Generate(ctx context.Context, prompt string, jsonFormat bool) (string, error) {
	return c.GenerateWithModel(ctx, c.cfg.Model, prompt, jsonFormat)
}

// GenerateWithModel is Generate with an explicit model override, used by the
// review pass which runs a larger model than the main pipeline.
func (c *Client) GenerateWithModel(ctx context.Context, model, prompt string, jsonFormat bool) (string, error) {
	req := generateRequest{Model: model, Prompt: prompt, Stream: false}
	if jsonFormat {
		req.Format = "json"
	}

	var out generateResponse
	err := c.retry.Do(ctx, func() error {
		return c.post(ctx, "/api/generate", req, &out)
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return out.Response, nil
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed converts text into an embedding vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	req := embedRequest{Model: c.cfg.EmbeddingModel, Prompt: text}

	var out embedResponse
	err := c.retry.Do(ctx, func() error {
		return c.post(ctx, "/api/embeddings", req, &out)
	})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, &pipeline.ParseError{Op: "embed", Err: fmt.Errorf("response carries no embedding")}
	}
	return out.Embedding, nil
}

// post performs one attempt against the given endpoint. Connection and
// status failures come back as TransportError so the retry policy can act on
// them; body decode failures come back as ParseError and propagate.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &pipeline.TransportError{Op: path, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused across retries.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &pipeline.TransportError{Op: path, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &pipeline.ParseError{Op: path, Err: err}
	}
	return nil
}
