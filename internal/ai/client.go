package ai

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/pkg/logger"
	"github.com/trendfarm/pkg/ratelimit"
)

// Client wraps the Anthropic SDK client
type Client struct {
	client      anthropic.Client
	configured  bool
	model       string
	maxTokens   int
	temperature float64
	rateLimiter *ratelimit.MultiLimiter
	log         *logger.Logger
}

// CompletionRequest is a single-turn completion. Zero fields fall back to
// the client defaults.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature *float64
}

// Completion is the text of a response plus its token usage
type Completion struct {
	Text         string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// TotalTokens is input plus output tokens
func (c *Completion) TotalTokens() int64 {
	return c.InputTokens + c.OutputTokens
}

// NewClient creates a new Anthropic client
func NewClient(cfg config.AnthropicConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client:      anthropic.NewClient(opts...),
		configured:  cfg.APIKey != "",
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		rateLimiter: limiter,
		log:         log.WithComponent("ai"),
	}
}

// Configured reports whether an API key is present
func (c *Client) Configured() bool {
	return c.configured
}

// Complete sends a message to Claude and returns the response text
func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	resp, err := c.CompleteRequest(ctx, CompletionRequest{System: systemPrompt, Prompt: userMessage})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// CompleteRequest sends a single-turn request and returns text and usage
func (c *Client) CompleteRequest(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if !c.configured {
		return nil, &config.MissingError{Key: "anthropic.api_key", Env: "ANTHROPIC_API_KEY"}
	}

	if err := c.rateLimiter.Wait(ctx, ratelimit.LimiterAnthropic); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	temperature := c.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	c.log.Debug().
		Str("model", model).
		Int("max_tokens", maxTokens).
		Float64("temperature", temperature).
		Msg("Sending request to Claude")

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		c.log.Error().Err(err).Msg("Claude API error")
		return nil, fmt.Errorf("claude API error: %w", err)
	}

	var response string
	for _, block := range message.Content {
		if text := block.AsText().Text; text != "" {
			response += text
		}
	}

	c.log.Debug().
		Int64("input_tokens", message.Usage.InputTokens).
		Int64("output_tokens", message.Usage.OutputTokens).
		Msg("Received Claude response")

	return &Completion{
		Text:         response,
		Model:        string(message.Model),
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}, nil
}
