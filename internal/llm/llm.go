// Package llm provides a provider-agnostic chat interface over the
// fantasy model abstraction.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatRequest is a request for a chat completion.
type ChatRequest struct {
	Messages  []Message
	MaxTokens int
}

// ChatResponse is the result of a chat completion.
type ChatResponse struct {
	Content      string
	Thinking     string
	StopReason   string
	InputTokens  int
	OutputTokens int
	Model        string
}

// Provider is the interface all chat backends implement.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// RetryConfig controls retry behavior for transient provider errors.
type RetryConfig struct {
	MaxRetries  int
	InitBackoff time.Duration
	MaxBackoff  time.Duration
}

// FantasyConfig configures a fantasy-backed provider.
type FantasyConfig struct {
	Provider  string // "anthropic", "openai", "google", ...; inferred from Model when empty
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	Retry     RetryConfig
}

// Validate checks required fields.
func (c FantasyConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api key is required for provider %s", c.Provider)
	}
	return nil
}

// ApplyDefaults fills in zero values.
func (c *FantasyConfig) ApplyDefaults() {
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4096
	}
}
