package imageapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

const (
	defaultTimeout = 60 * time.Second
	retryBackoff   = 500 * time.Millisecond
	maxBodyBytes   = 1 << 20
)

// Config holds the generation API settings.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Client calls an OpenAI-style images/generations endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
	log        zerolog.Logger
}

// NewClient builds a Client with an explicit request timeout.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		backoff:    retryBackoff,
		log:        log,
	}
}

type generateRequest struct {
	Model  domain.ModelID `json:"model"`
	Prompt string         `json:"prompt"`
}

type generateResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Message string `json:"message"`
	Error   any    `json:"error"`
}

// Generate implements ports.ImageGenerator. A transport failure is retried once.
func (c *Client) Generate(ctx context.Context, model domain.ModelID, prompt string) (string, error) {
	url, err := c.generate(ctx, model, prompt)
	if err == nil || !errors.Is(err, domain.ErrNetwork) || ctx.Err() != nil {
		return url, err
	}

	c.log.Warn().Err(err).Str("model", string(model)).Msg("generation request failed, retrying")
	select {
	case <-ctx.Done():
		return "", errors.Join(err, ctx.Err())
	case <-time.After(c.backoff):
	}
	return c.generate(ctx, model, prompt)
}

func (c *Client) generate(ctx context.Context, model domain.ModelID, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", domain.ErrNetwork, err)
	}

	var out generateResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil {
			if m := out.message(); m != "" {
				msg = m
			}
		}
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%w: malformed response: %w", domain.ErrUpstream, decodeErr)
	}
	if len(out.Data) == 0 || out.Data[0].URL == "" {
		return "", fmt.Errorf("%w: response has no image url", domain.ErrUpstream)
	}
	return out.Data[0].URL, nil
}

// message extracts an error message from either {"message": "..."},
// {"error": "..."} or {"error": {"message": "..."}}.
func (r generateResponse) message() string {
	if r.Message != "" {
		return r.Message
	}
	switch e := r.Error.(type) {
	case string:
		return e
	case map[string]any:
		if m, ok := e["message"].(string); ok {
			return m
		}
	}
	return ""
}
