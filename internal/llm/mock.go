package llm

import (
	"context"
	"sync"
)

// MockClient is a test double for the LLM Client interface.
// It can also be used for dry-run mode.
type MockClient struct {
	Response *Response
	Err      error

	mu           sync.Mutex
	Calls        []string // records prompts sent
	Temperatures []float64
}

// Complete records the call and returns the mock response.
func (m *MockClient) Complete(ctx context.Context, prompt string, temperature float64) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, prompt)
	m.Temperatures = append(m.Temperatures, temperature)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Response == nil {
		return &Response{Provider: "mock", Model: "mock"}, nil
	}
	return m.Response, nil
}

// CallCount returns how many prompts were sent.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
