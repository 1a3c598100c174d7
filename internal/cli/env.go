package cli

import (
	"context"
	"io"
	"os"

	"readapt/internal/adapt"
	"readapt/internal/llm"
	"readapt/internal/profile"
)

// EnvAPIKey is the environment variable holding the generation-service key.
const EnvAPIKey = "OPENAI_API_KEY"

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Domain state shared across commands in one process
	Profiles *profile.Registry
	Cache    *adapt.Cache

	// Factory for generation-service clients
	ClientFactory ClientFactory
}

// ConnectivityChecker probes the generation service.
type ConnectivityChecker interface {
	CheckConnectivity(ctx context.Context) llm.Status
}

// ClientFactory creates generation-service clients. Both methods may share
// one underlying client; they are split so tests can stub generation and
// probing independently.
type ClientFactory interface {
	NewGenerator(apiKey string) (adapt.Generator, error)
	NewChecker(apiKey string) (ConnectivityChecker, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithProfiles sets the profile registry.
func WithProfiles(r *profile.Registry) EnvOption {
	return func(e *Env) {
		e.Profiles = r
	}
}

// WithCache sets the shared adaptation cache.
func WithCache(c *adapt.Cache) EnvOption {
	return func(e *Env) {
		e.Cache = c
	}
}

// WithClientFactory sets the generation-service client factory.
func WithClientFactory(f ClientFactory) EnvOption {
	return func(e *Env) {
		e.ClientFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Getenv:        os.Getenv,
		Profiles:      profile.NewRegistry(),
		Cache:         adapt.NewCache(adapt.DefaultCacheCapacity),
		ClientFactory: &defaultClientFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultClientFactory implements ClientFactory using the llm package.
type defaultClientFactory struct{}

func (defaultClientFactory) NewGenerator(apiKey string) (adapt.Generator, error) {
	return llm.NewClient(apiKey)
}

func (defaultClientFactory) NewChecker(apiKey string) (ConnectivityChecker, error) {
	return llm.NewClient(apiKey)
}

// Compile-time interface verification.
var _ ClientFactory = (*defaultClientFactory)(nil)
