package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/trendfarm/internal/content"
	"github.com/trendfarm/internal/models"
)

var codeFence = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// stripMarkdownCodeBlock returns the inside of the first fenced block, or
// the trimmed response when there is none
func stripMarkdownCodeBlock(response string) string {
	response = strings.TrimSpace(response)
	if m := codeFence.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	return response
}

// DraftPost asks the model for an article about topic. An empty model
// uses the configured default. Unparseable output becomes the fallback
// document; only transport and API errors are returned.
func (c *Client) DraftPost(ctx context.Context, topic, model string) (*models.Draft, error) {
	now := time.Now()
	prompt := fmt.Sprintf(DraftUserPrompt, topic, now.Year())

	temperature := 0.7
	resp, err := c.CompleteRequest(ctx, CompletionRequest{
		Model:       model,
		System:      DraftSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   3000,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to draft post: %w", err)
	}

	draft := ParseDraft(resp.Text, topic, now)
	if draft.Fallback {
		c.log.Warn().
			Str("topic", topic).
			Int("response_len", len(resp.Text)).
			Msg("Model output was not valid JSON, using fallback document")
	}
	return draft, nil
}

// ParseDraft parses the model output. When it is not a JSON object the
// raw text becomes the body of a templated fallback document.
func ParseDraft(raw, topic string, now time.Time) *models.Draft {
	body := stripMarkdownCodeBlock(raw)

	var draft models.Draft
	if err := json.Unmarshal([]byte(body), &draft); err != nil || strings.TrimSpace(draft.Content) == "" {
		return FallbackDraft(topic, body, now)
	}

	fallback := FallbackDraft(topic, body, now)
	if strings.TrimSpace(draft.Title) == "" {
		draft.Title = fallback.Title
	}
	if strings.TrimSpace(draft.Description) == "" {
		draft.Description = fallback.Description
	}
	if len(draft.Tags) == 0 {
		draft.Tags = fallback.Tags
	}
	return &draft
}

// FallbackDraft is the templated document used when the model output
// cannot be parsed
func FallbackDraft(topic, body string, now time.Time) *models.Draft {
	return &models.Draft{
		Title:       fmt.Sprintf("Complete Guide to %s in %d", topic, now.Year()),
		Description: fmt.Sprintf("Discover everything about %s. Our comprehensive guide covers features, pros/cons, and where to buy.", topic),
		Tags:        []string{content.Slugify(topic), "guide"},
		Content:     body,
		Products:    []models.Product{},
		Fallback:    true,
	}
}
