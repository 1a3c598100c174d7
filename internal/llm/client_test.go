package llm_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"readapt/internal/apierr"
	"readapt/internal/llm"
)

// mockCompleter is a scripted chat completer. Each call consumes the next
// step; the last step repeats once the script is exhausted.
type mockCompleter struct {
	steps []mockStep
	calls int
}

type mockStep struct {
	content string
	err     error
}

func (m *mockCompleter) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := m.calls
	if i >= len(m.steps) {
		i = len(m.steps) - 1
	}
	m.calls++

	step := m.steps[i]
	if step.err != nil {
		return openai.ChatCompletionResponse{}, step.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: step.content}},
		},
	}, nil
}

func newTestClient(t *testing.T, mock *mockCompleter, opts ...llm.Option) *llm.Client {
	t.Helper()

	opts = append([]llm.Option{
		llm.WithChatCompleter(mock),
		llm.WithRetryDelays(time.Millisecond, time.Millisecond),
		llm.WithRateLimitDelay(time.Millisecond),
	}, opts...)

	c, err := llm.NewClient("test-key", opts...)
	if err != nil {
		t.Fatalf("NewClient() unexpected error: %v", err)
	}
	return c
}

func apiError(status int, msg string) *openai.APIError {
	return &openai.APIError{HTTPStatusCode: status, Message: msg}
}

// ---------------------------------------------------------------------------
// TestNewClient
// ---------------------------------------------------------------------------

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("empty API key is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := llm.NewClient("")
		if !errors.Is(err, llm.ErrEmptyAPIKey) {
			t.Errorf("error = %v, want ErrEmptyAPIKey", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestGenerate - retry and classification behavior
// ---------------------------------------------------------------------------

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("returns completion text on success", func(t *testing.T) {
		t.Parallel()

		mock := &mockCompleter{steps: []mockStep{{content: "adapted text"}}}
		c := newTestClient(t, mock)

		got, err := c.Generate(context.Background(), "prompt", 100)
		if err != nil {
			t.Fatalf("Generate() unexpected error: %v", err)
		}
		if got != "adapted text" {
			t.Errorf("got %q, want %q", got, "adapted text")
		}
		if mock.calls != 1 {
			t.Errorf("calls = %d, want 1", mock.calls)
		}
	})

	t.Run("retries rate limit then succeeds", func(t *testing.T) {
		t.Parallel()

		mock := &mockCompleter{steps: []mockStep{
			{err: apiError(http.StatusTooManyRequests, "slow down")},
			{content: "after cooldown"},
		}}
		c := newTestClient(t, mock)

		got, err := c.Generate(context.Background(), "prompt", 100)
		if err != nil {
			t.Fatalf("Generate() unexpected error: %v", err)
		}
		if got != "after cooldown" {
			t.Errorf("got %q, want %q", got, "after cooldown")
		}
		if mock.calls != 2 {
			t.Errorf("calls = %d, want 2", mock.calls)
		}
	})

	t.Run("retries server errors", func(t *testing.T) {
		t.Parallel()

		mock := &mockCompleter{steps: []mockStep{
			{err: apiError(http.StatusServiceUnavailable, "overloaded")},
			{err: apiError(http.StatusBadGateway, "bad gateway")},
			{content: "recovered"},
		}}
		c := newTestClient(t, mock)

		got, err := c.Generate(context.Background(), "prompt", 100)
		if err != nil {
			t.Fatalf("Generate() unexpected error: %v", err)
		}
		if got != "recovered" {
			t.Errorf("got %q, want %q", got, "recovered")
		}
		if mock.calls != 3 {
			t.Errorf("calls = %d, want 3", mock.calls)
		}
	})

	t.Run("auth failure is not retried", func(t *testing.T) {
		t.Parallel()

		mock := &mockCompleter{steps: []mockStep{
			{err: apiError(http.StatusUnauthorized, "invalid key")},
		}}
		c := newTestClient(t, mock)

		_, err := c.Generate(context.Background(), "prompt", 100)
		if !errors.Is(err, apierr.ErrAuthFailed) {
			t.Errorf("error = %v, want ErrAuthFailed", err)
		}
		if mock.calls != 1 {
			t.Errorf("calls = %d, want 1 (no retry)", mock.calls)
		}
	})

	t.Run("quota exceeded is not retried", func(t *testing.T) {
		t.Parallel()

		mock := &mockCompleter{steps: []mockStep{
			{err: apiError(http.StatusTooManyRequests, "you have exceeded your quota")},
		}}
		c := newTestClient(t, mock)

		_, err := c.Generate(context.Background(), "prompt", 100)
		if !errors.Is(err, apierr.ErrQuotaExceeded) {
			t.Errorf("error = %v, want ErrQuotaExceeded", err)
		}
		if mock.calls != 1 {
			t.Errorf("calls = %d, want 1 (no retry)", mock.calls)
		}
	})

	t.Run("exhausted retries surface last classified error", func(t *testing.T) {
		t.Parallel()

		mock := &mockCompleter{steps: []mockStep{
			{err: apiError(http.StatusGatewayTimeout, "upstream timeout")},
		}}
		c := newTestClient(t, mock, llm.WithMaxRetries(2))

		_, err := c.Generate(context.Background(), "prompt", 100)
		if !errors.Is(err, apierr.ErrTimeout) {
			t.Errorf("error = %v, want wrapped ErrTimeout", err)
		}
		if mock.calls != 3 {
			t.Errorf("calls = %d, want 3 (initial + 2 retries)", mock.calls)
		}
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		t.Parallel()

		empty := &emptyCompleter{}
		c, err := llm.NewClient("test-key",
			llm.WithChatCompleter(empty),
			llm.WithMaxRetries(0),
		)
		if err != nil {
			t.Fatalf("NewClient() unexpected error: %v", err)
		}

		_, err = c.Generate(context.Background(), "prompt", 100)
		if !errors.Is(err, llm.ErrEmptyResponse) {
			t.Errorf("error = %v, want ErrEmptyResponse", err)
		}
	})

	t.Run("untyped timeout message is classified retryable", func(t *testing.T) {
		t.Parallel()

		mock := &mockCompleter{steps: []mockStep{
			{err: errors.New("dial tcp: i/o timeout")},
			{content: "reachable again"},
		}}
		c := newTestClient(t, mock)

		got, err := c.Generate(context.Background(), "prompt", 100)
		if err != nil {
			t.Fatalf("Generate() unexpected error: %v", err)
		}
		if got != "reachable again" {
			t.Errorf("got %q, want %q", got, "reachable again")
		}
	})
}

// emptyCompleter returns a response with no choices.
type emptyCompleter struct{}

func (emptyCompleter) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, nil
}
