package llm

import (
	"context"
	"sync"
)

// MockProvider is a test double for Provider. Tests set a canned
// response, an error, or a ChatFunc override.
type MockProvider struct {
	mu       sync.Mutex
	response string
	queue    []string
	err      error
	requests []ChatRequest

	// ChatFunc, when set, replaces the default canned behavior.
	ChatFunc func(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// NewMockProvider creates a new MockProvider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// SetResponse sets the content returned by subsequent Chat calls.
func (m *MockProvider) SetResponse(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = content
	m.err = nil
}

// SetResponses queues contents returned by successive Chat calls.
// After the queue drains, the last entry repeats.
func (m *MockProvider) SetResponses(contents ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append([]string(nil), contents...)
	m.err = nil
}

// SetError makes subsequent Chat calls fail with err.
func (m *MockProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Chat implements Provider.
func (m *MockProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.ChatFunc
	resp := m.response
	if len(m.queue) > 0 {
		resp = m.queue[0]
		if len(m.queue) > 1 {
			m.queue = m.queue[1:]
		}
	}
	err := m.err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	return &ChatResponse{
		Content:    resp,
		StopReason: "stop",
		Model:      "mock",
	}, nil
}

// LastRequest returns the most recent request, or nil if none.
func (m *MockProvider) LastRequest() *ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return &m.requests[len(m.requests)-1]
}

// CallCount returns how many Chat calls have been made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
