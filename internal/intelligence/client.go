package intelligence

import (
	"context"

	"github.com/openclaw/reconloop/internal/llm"
	"github.com/openclaw/reconloop/internal/logging"
)

const (
	decisionRetries   = 3
	proposalMaxTokens = 1024
	analysisMaxTokens = 800
)

// Client wraps a chat provider with the propose/analyze protocol.
type Client struct {
	provider     llm.Provider
	systemPrompt string
	logger       *logging.Logger
}

// NewClient creates a Client. The wordlist limits are baked into the
// system prompt once at construction.
func NewClient(provider llm.Provider, maxWordlistSize int, forbiddenWordlists []string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.New()
	}
	return &Client{
		provider:     provider,
		systemPrompt: SystemPrompt(maxWordlistSize, forbiddenWordlists),
		logger:       logger.WithComponent("intelligence"),
	}
}

// ProposeCommand asks the model for the next Decision. It retries the
// whole request up to decisionRetries times on transport or parse
// failure, then returns a canonical error Decision. It never returns
// an error: every failure collapses into a stop Decision.
func (c *Client) ProposeCommand(ctx context.Context, pctx PromptContext) *Decision {
	req := llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: proposalPrompt(pctx)},
		},
		MaxTokens: proposalMaxTokens,
	}

	for attempt := 1; attempt <= decisionRetries; attempt++ {
		if ctx.Err() != nil {
			return ErrorDecision(ctx.Err().Error())
		}

		resp, err := c.provider.Chat(ctx, req)
		if err != nil {
			c.logger.ParseRetry(attempt, decisionRetries, "provider: "+err.Error())
			continue
		}

		decision, err := ParseDecision(resp.Content)
		if err == nil {
			return decision
		}
		c.logger.ParseRetry(attempt, decisionRetries, err.Error())
		if attempt == decisionRetries {
			return ErrorDecision("Invalid JSON format")
		}
	}

	return ErrorDecision("Max retries exceeded")
}

// AnalyzeOutput asks the model to interpret one command's output.
// One attempt, no retry: any failure yields the degraded Analysis so
// the loop keeps moving.
func (c *Client) AnalyzeOutput(ctx context.Context, command, output, phase string) *Analysis {
	req := llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: analystSystemPrompt},
			{Role: "user", Content: analysisPrompt(command, output, phase)},
		},
		MaxTokens: analysisMaxTokens,
	}

	resp, err := c.provider.Chat(ctx, req)
	if err != nil {
		c.logger.Warn("analysis_failed", map[string]interface{}{
			"error": err.Error(),
		})
		return DegradedAnalysis()
	}

	return ParseAnalysis(resp.Content)
}
