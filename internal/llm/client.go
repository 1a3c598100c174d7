// Package llm wraps the external generation service behind a narrow
// Generate primitive with classified errors, bounded retry, and a
// connectivity probe. Nothing above this package sees provider error types.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"readapt/internal/apierr"
)

// Client configuration defaults.
const (
	defaultModel = "gpt-4o-mini"

	// Retry configuration: per-attempt timeout stays shorter than any
	// caller deadline so a hung call never eats the whole budget.
	defaultMaxRetries     = 3
	defaultBaseDelay      = 1 * time.Second
	defaultMaxDelay       = 30 * time.Second
	defaultAttemptTimeout = 15 * time.Second
	defaultRateLimitDelay = 5 * time.Second

	// Deterministic output for reproducibility.
	defaultTemperature = 0.3
)

// chatCompleter is an internal interface for chat completion.
// *openai.Client implements this implicitly.
// This allows injecting mocks in tests.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client calls the generation service with automatic retries and
// exponential backoff for transient errors. Rate-limited attempts wait a
// fixed cooldown instead of the exponential schedule.
type Client struct {
	client         chatCompleter
	model          string
	maxRetries     int
	baseDelay      time.Duration
	maxDelay       time.Duration
	attemptTimeout time.Duration
	rateLimitDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the generation model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) Option {
	return func(c *Client) {
		if base > 0 {
			c.baseDelay = base
		}
		if max > 0 {
			c.maxDelay = max
		}
	}
}

// WithAttemptTimeout sets the per-attempt timeout for a single API call.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.attemptTimeout = d
		}
	}
}

// WithRateLimitDelay sets the fixed cooldown applied after a rate-limited attempt.
func WithRateLimitDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.rateLimitDelay = d
		}
	}
}

// withChatCompleter sets a custom chat completer (for testing).
func withChatCompleter(cc chatCompleter) Option {
	return func(c *Client) {
		c.client = cc
	}
}

// NewClient creates a new generation-service client.
// Returns ErrEmptyAPIKey if apiKey is empty.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	c := &Client{
		model:          defaultModel,
		maxRetries:     defaultMaxRetries,
		baseDelay:      defaultBaseDelay,
		maxDelay:       defaultMaxDelay,
		attemptTimeout: defaultAttemptTimeout,
		rateLimitDelay: defaultRateLimitDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = openai.NewClient(apiKey)
	}
	return c, nil
}

// Generate sends one prompt to the generation service and returns the
// completion text. Transient failures (timeouts, rate limits, 5xx) are
// retried; exhausting retries surfaces the last classified error.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: defaultTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	cfg := apierr.RetryConfig{
		MaxRetries:     c.maxRetries,
		BaseDelay:      c.baseDelay,
		MaxDelay:       c.maxDelay,
		RateLimitDelay: c.rateLimitDelay,
	}

	return apierr.RetryWithBackoff(ctx, cfg, func() (string, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(attemptCtx, req)
		if err != nil {
			return "", classifyError(err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}
		return resp.Choices[0].Message.Content, nil
	}, isRetryableError)
}

// classifyError maps provider errors to apierr sentinel errors.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	// Check for typed API errors first (most reliable).
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			// Distinguish between temporary rate limit and quota exceeded (billing issue).
			if strings.Contains(apiErr.Message, "quota") ||
				strings.Contains(apiErr.Message, "billing") {
				return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrQuotaExceeded)
			}
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrRateLimit)
		case http.StatusPaymentRequired:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrQuotaExceeded)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrAuthFailed)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrTimeout)
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrTimeout) // Retryable server error
		case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrBadRequest)
		}
	}

	// Check for context timeout/deadline exceeded.
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	// Fallback: classify by message keyword for untyped transport errors.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return fmt.Errorf("%s: %w", err.Error(), apierr.ErrTimeout)
	case strings.Contains(msg, "unauthorized"), strings.Contains(msg, "authentication"):
		return fmt.Errorf("%s: %w", err.Error(), apierr.ErrAuthFailed)
	case strings.Contains(msg, "rate limit"):
		return fmt.Errorf("%s: %w", err.Error(), apierr.ErrRateLimit)
	}

	return err
}

// isRetryableError determines if a classified error is transient and should be retried.
func isRetryableError(err error) bool {
	// Rate limits are retryable (with cooldown).
	if errors.Is(err, apierr.ErrRateLimit) {
		return true
	}

	// Timeouts and server errors are retryable.
	if errors.Is(err, apierr.ErrTimeout) {
		return true
	}

	// Context cancellation is not retryable.
	if errors.Is(err, context.Canceled) {
		return false
	}

	// Auth, quota, and malformed-request errors are not retryable.
	return false
}
