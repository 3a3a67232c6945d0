package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/trendfarm/internal/models"
	"github.com/trendfarm/pkg/logger"
)

// TopicSelector picks the next topic, optionally restricted to the niche
type TopicSelector interface {
	SelectBest(ctx context.Context, filterNiche bool) (string, error)
}

// Publisher drafts and saves a post for a topic
type Publisher interface {
	Publish(ctx context.Context, topic, model string) (*models.GeneratedPost, error)
}

// SelectTopic tries a niche-filtered pick, then an unfiltered one, then
// falls back to the fixed topic
func SelectTopic(ctx context.Context, sel TopicSelector, fallback string, log *logger.Logger) string {
	for _, filter := range []bool{true, false} {
		topic, err := sel.SelectBest(ctx, filter)
		if err == nil && topic != "" {
			return topic
		}
		log.Warn().Err(err).Bool("niche_filter", filter).Msg("Topic selection failed")
	}
	log.Warn().Str("topic", fallback).Msg("Using fallback topic")
	return fallback
}

// TrendPostResult is the outcome of one trend-post run
type TrendPostResult struct {
	Topic string
	Post  *models.GeneratedPost
}

// TrendPost selects a topic and publishes a post for it
func TrendPost(ctx context.Context, sel TopicSelector, pub Publisher, fallback, model string, log *logger.Logger) (*TrendPostResult, error) {
	topic := SelectTopic(ctx, sel, fallback, log)

	post, err := pub.Publish(ctx, topic, model)
	if err != nil {
		return nil, fmt.Errorf("failed to publish %q: %w", topic, err)
	}
	return &TrendPostResult{Topic: topic, Post: post}, nil
}

// BatchResult lists what a batch run published and what failed
type BatchResult struct {
	Published []*models.GeneratedPost
	Failed    map[string]error
}

// Batch publishes each topic in turn. A failing topic is logged and
// skipped.
func Batch(ctx context.Context, pub Publisher, topics []string, model string, log *logger.Logger) *BatchResult {
	res := &BatchResult{Failed: make(map[string]error)}
	for _, topic := range topics {
		if err := ctx.Err(); err != nil {
			res.Failed[topic] = err
			continue
		}
		post, err := pub.Publish(ctx, topic, model)
		if err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Batch topic failed")
			res.Failed[topic] = err
			continue
		}
		res.Published = append(res.Published, post)
	}
	return res
}

// Output is one name=value pair for a CI step
type Output struct {
	Name  string
	Value string
}

// WriteOutputs prints outputs in the legacy ::set-output form to w and
// appends name=value lines to the file named by GITHUB_OUTPUT when set
func WriteOutputs(w io.Writer, outputs []Output) error {
	for _, o := range outputs {
		fmt.Fprintf(w, "::set-output name=%s::%s\n", o.Name, o.Value)
	}

	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open GITHUB_OUTPUT: %w", err)
	}
	defer f.Close()
	for _, o := range outputs {
		if _, err := fmt.Fprintf(f, "%s=%s\n", o.Name, o.Value); err != nil {
			return err
		}
	}
	return nil
}
