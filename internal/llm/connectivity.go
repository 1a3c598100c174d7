package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"readapt/internal/apierr"
)

// Connectivity probe configuration.
const (
	probePrompt    = "Respond with 'OK' if you can read this message."
	probeMaxTokens = 10
	probeTimeout   = 15 * time.Second
)

// State classifies the outcome of a connectivity probe.
type State string

// Probe outcome states.
const (
	StateConnected   State = "connected"
	StateTimeout     State = "timeout"
	StateAuthError   State = "auth_error"
	StateRateLimited State = "rate_limited"
	StateError       State = "error"
)

// Status is the classified result of a connectivity probe.
// Every probe outcome, including total failure, is expressed as a Status;
// CheckConnectivity never returns a Go error.
type Status struct {
	State   State
	Latency time.Duration
	Detail  string
}

// OK reports whether the probe reached the service.
func (s Status) OK() bool {
	return s.State == StateConnected
}

// CheckConnectivity issues one minimal probe request and classifies the
// outcome. The probe bypasses the retry loop: a health check should report
// the current state, not mask it behind retries.
func (c *Client) CheckConnectivity(ctx context.Context) Status {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: probeMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: probePrompt},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(probeCtx, req)
	latency := time.Since(start)

	if err != nil {
		return classifyProbeFailure(classifyError(err), latency)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
	}

	return Status{
		State:   StateConnected,
		Latency: latency,
		Detail:  fmt.Sprintf("service responding in %s (%q)", latency.Round(time.Millisecond), content),
	}
}

// classifyProbeFailure maps a classified error to a probe Status.
func classifyProbeFailure(err error, latency time.Duration) Status {
	s := Status{Latency: latency, Detail: err.Error()}

	switch {
	case errors.Is(err, apierr.ErrTimeout):
		s.State = StateTimeout
		s.Detail = "connection timed out; the service may be experiencing high load"
	case errors.Is(err, apierr.ErrAuthFailed):
		s.State = StateAuthError
		s.Detail = "API key authentication failed; check your API key"
	case errors.Is(err, apierr.ErrRateLimit), errors.Is(err, apierr.ErrQuotaExceeded):
		s.State = StateRateLimited
		s.Detail = "rate limit exceeded; try again later"
	default:
		s.State = StateError
		s.Detail = fmt.Sprintf("connection error: %v", err)
	}

	return s
}
