package ai

import (
	"context"
	"fmt"
	"strings"
)

// DefaultAssistTokens bounds assistant replies when the caller gives no limit
const DefaultAssistTokens = 150

// AssistResult is a writing-assistant reply
type AssistResult struct {
	Response   string `json:"response"`
	TokensUsed int64  `json:"tokens_used"`
}

// Assist answers a free-form writing prompt
func (c *Client) Assist(ctx context.Context, prompt string, maxTokens int) (*AssistResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	if maxTokens <= 0 {
		maxTokens = DefaultAssistTokens
	}

	resp, err := c.CompleteRequest(ctx, CompletionRequest{
		System:    AssistantSystemPrompt,
		Prompt:    prompt,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, err
	}

	return &AssistResult{
		Response:   strings.TrimSpace(resp.Text),
		TokensUsed: resp.TotalTokens(),
	}, nil
}
