package googletrends

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/internal/models"
	"github.com/trendfarm/internal/source"
	"github.com/trendfarm/pkg/logger"
	"github.com/trendfarm/pkg/ratelimit"
)

// Source implements TopicSource for the "trending now" feed
type Source struct {
	feedURL string
	geo     string
	parser  *gofeed.Parser
	limiter *ratelimit.MultiLimiter
	log     *logger.Logger
}

// New creates a trending-now source for the configured region
func New(cfg config.TrendsConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Source {
	return &Source{
		feedURL: cfg.FeedURL,
		geo:     cfg.Geo,
		parser:  gofeed.NewParser(),
		limiter: limiter,
		log:     log.WithSource("googletrends", cfg.Geo),
	}
}

// Name returns the source name
func (s *Source) Name() string {
	return "google-trends-" + strings.ToLower(s.geo)
}

// Type returns "googletrends"
func (s *Source) Type() string {
	return "googletrends"
}

// URL returns the feed URL including the region parameter
func (s *Source) URL() string {
	if s.geo == "" {
		return s.feedURL
	}
	sep := "?"
	if strings.Contains(s.feedURL, "?") {
		sep = "&"
	}
	return s.feedURL + sep + "geo=" + url.QueryEscape(s.geo)
}

// Fetch retrieves the trending list, ranked by feed position starting at 1
func (s *Source) Fetch(ctx context.Context) ([]*models.TopicRecord, error) {
	if err := s.limiter.Wait(ctx, ratelimit.LimiterTrends); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	s.log.Debug().Str("url", s.URL()).Msg("Fetching trending feed")

	feed, err := s.parser.ParseURLWithContext(s.URL(), ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trending feed: %w", err)
	}

	topics := make([]*models.TopicRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := cleanText(item.Title)
		if title == "" {
			continue
		}
		topics = append(topics, &models.TopicRecord{
			Topic:  title,
			Source: models.SourceTrendingNow,
			Rank:   len(topics) + 1,
		})
	}

	s.log.Info().
		Int("count", len(topics)).
		Msg("Fetched trending topics")

	return topics, nil
}

// Titles returns just the trending topic strings
func (s *Source) Titles(ctx context.Context) ([]string, error) {
	records, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(records))
	for _, r := range records {
		titles = append(titles, r.Topic)
	}
	return titles, nil
}

// HealthCheck verifies the feed is accessible
func (s *Source) HealthCheck(ctx context.Context) error {
	_, err := s.parser.ParseURLWithContext(s.URL(), ctx)
	return err
}

// cleanText removes HTML tags and extra whitespace
func cleanText(text string) string {
	var result strings.Builder
	inTag := false
	for _, r := range text {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(result.String()), " ")
}

// Ensure Source implements source.TopicSource
var _ source.TopicSource = (*Source)(nil)
