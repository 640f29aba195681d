// Package testutil provides shared test helpers and mocks for docscrub tests.
package testutil

import (
	"context"
	"sync"

	"github.com/leedsrising/pdf-to-text/internal/llm"
)

// MockProvider implements llm.Provider for tests without live API calls.
// When Content is empty, Generate returns "mock response from " + ProviderName.
// Set Echo to return the last user message as the response content, which
// lets chunked-generation tests verify ordering. Set Err (optionally with
// ErrOnCall) to simulate generation failures.
type MockProvider struct {
	ProviderName string // provider identifier, e.g. "openai"
	Content      string // canned response; empty = "mock response from " + ProviderName
	Echo         bool   // echo the last user message instead of Content
	Err          error  // if set, Generate returns this error
	ErrOnCall    int    // 1-based call that fails; 0 = every call when Err is set

	mu    sync.Mutex
	calls int
}

// Name returns the provider identifier (implements llm.Provider).
func (m *MockProvider) Name() string { return m.ProviderName }

// Calls returns how many times Generate has been invoked.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate returns a canned response or the configured error.
func (m *MockProvider) Generate(_ context.Context, req *llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.mu.Unlock()

	if m.Err != nil && (m.ErrOnCall == 0 || call == m.ErrOnCall) {
		return nil, m.Err
	}

	content := m.Content
	if m.Echo {
		for i := len(req.Messages) - 1; i >= 0; i-- {
			if req.Messages[i].Role == "user" {
				content = req.Messages[i].Content
				break
			}
		}
	}
	if content == "" {
		content = "mock response from " + m.ProviderName
	}
	return &llm.Response{
		Content:      content,
		FinishReason: "stop",
		InputTokens:  10,
		OutputTokens: 20,
		Model:        req.Model,
	}, nil
}

// EstimateCost returns a fixed cost for tests.
func (m *MockProvider) EstimateCost(_ string, _, _ int) float64 { return 0.001 }
