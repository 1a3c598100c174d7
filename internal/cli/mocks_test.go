package cli_test

import (
	"context"
	"sync"

	"readapt/internal/adapt"
	"readapt/internal/cli"
	"readapt/internal/llm"
)

// mockGenerator answers every prompt with a fixed response and records how
// often it was called.
type mockGenerator struct {
	mu       sync.Mutex
	response string
	calls    int
}

func (g *mockGenerator) Generate(_ context.Context, _ string, _ int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.response, nil
}

func (g *mockGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// mockChecker returns a scripted connectivity status.
type mockChecker struct {
	status llm.Status
}

func (c *mockChecker) CheckConnectivity(context.Context) llm.Status {
	return c.status
}

// mockFactory hands out the configured generator and checker and records
// the API key it was given.
type mockFactory struct {
	mu      sync.Mutex
	gen     adapt.Generator
	checker cli.ConnectivityChecker
	apiKey  string
}

func (f *mockFactory) NewGenerator(apiKey string) (adapt.Generator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiKey = apiKey
	return f.gen, nil
}

func (f *mockFactory) NewChecker(apiKey string) (cli.ConnectivityChecker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiKey = apiKey
	return f.checker, nil
}

// Compile-time interface verification.
var (
	_ adapt.Generator         = (*mockGenerator)(nil)
	_ cli.ConnectivityChecker = (*mockChecker)(nil)
	_ cli.ClientFactory       = (*mockFactory)(nil)
)
