package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cropweather-ai/cropweather/internal/config"
	"github.com/cropweather-ai/cropweather/internal/metrics"
)

var (
	// ErrRateLimited marks an HTTP 429 from the completion endpoint. It is
	// retried internally and only escapes wrapped in ErrRetriesExhausted.
	ErrRateLimited = errors.New("completion rate limited")

	// ErrRetriesExhausted is returned after the retry budget is spent while
	// still rate limited.
	ErrRetriesExhausted = errors.New("completion retries exhausted")

	// ErrUpstream marks any other non-2xx or transport failure. Not retried.
	ErrUpstream = errors.New("completion upstream failure")
)

// maxAttempts is the total attempt budget per Complete call, rate-limited
// attempts included.
const maxAttempts = 3

// Completer is the interface the orchestrators consume; satisfied by Client
// and by test stubs.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Client calls an OpenAI-compatible chat completion endpoint (OpenRouter by
// default) with exponential backoff on rate limiting.
type Client struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg config.LLMConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		client:      &http.Client{Timeout: timeout},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Complete sends the message list and returns the assistant reply. Rate
// limits are retried up to maxAttempts total attempts with 2^n-second
// backoff (1s, 2s); any other failure returns immediately.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			slog.Warn("completion rate limited, backing off",
				"attempt", attempt+1, "backoff", backoff)
			metrics.LLMRetriesTotal.Inc()
			if err := c.sleep(ctx, backoff); err != nil {
				return "", err
			}
		}

		reply, err := c.call(ctx, messages)
		if err == nil {
			metrics.LLMRequestsTotal.WithLabelValues("success").Inc()
			return reply, nil
		}
		if !errors.Is(err, ErrRateLimited) {
			metrics.LLMRequestsTotal.WithLabelValues("error").Inc()
			return "", err
		}
	}

	metrics.LLMRequestsTotal.WithLabelValues("exhausted").Inc()
	return "", ErrRetriesExhausted
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *Client) call(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}

	// Status is checked before any parsing so a 429 is always recognized as
	// retryable, regardless of the response body.
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: HTTP %d: %s", ErrUpstream, resp.StatusCode, body)
	}

	var result completionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: parsing response: %v", ErrUpstream, err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrUpstream)
	}
	return result.Choices[0].Message.Content, nil
}
