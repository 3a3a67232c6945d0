package research

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/trendfarm/internal/source"
	"github.com/trendfarm/pkg/logger"
	"github.com/trendfarm/pkg/ratelimit"
)

const (
	trendingKey      = "trending"
	DefaultTimeframe = "today 3-m"
)

// TrendingLister lists what is trending right now
type TrendingLister interface {
	Titles(ctx context.Context) ([]string, error)
}

// Service answers research queries against the trend sources and the web
type Service struct {
	trending    TrendingLister
	related     source.RelatedSource
	cache       *cache.Cache
	httpClient  *http.Client
	rateLimiter *ratelimit.MultiLimiter
	now         func() time.Time
	log         *logger.Logger
}

// NewService creates a research service. Trend lookups are cached for ttl.
func NewService(trending TrendingLister, related source.RelatedSource, ttl time.Duration, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Service{
		trending: trending,
		related:  related,
		cache:    cache.New(ttl, 2*ttl),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: limiter,
		now:         time.Now,
		log:         log.WithComponent("research"),
	}
}

// TrendingNow returns the current trending titles, cached
func (s *Service) TrendingNow(ctx context.Context) ([]string, error) {
	if x, found := s.cache.Get(trendingKey); found {
		return x.([]string), nil
	}

	titles, err := s.trending.Titles(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(trendingKey, titles, cache.DefaultExpiration)
	return titles, nil
}

// Related returns related queries for keyword, cached
func (s *Service) Related(ctx context.Context, keyword string) ([]string, error) {
	key := "related:" + strings.ToLower(keyword)
	if x, found := s.cache.Get(key); found {
		return x.([]string), nil
	}

	queries, err := s.related.Related(ctx, keyword)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, queries, cache.DefaultExpiration)
	return queries, nil
}

// TrendsReport is the per-keyword trend lookup result
type TrendsReport struct {
	Keywords       []string            `json:"keywords"`
	Timeframe      string              `json:"timeframe"`
	Geo            string              `json:"geo"`
	RelatedQueries map[string][]string `json:"related_queries"`
	TrendingNow    map[string]bool     `json:"trending_now"`
	GeneratedAt    time.Time           `json:"generated_at"`
}

// Trends looks up related queries for each keyword and whether it appears
// in the trending list. A failing lookup leaves that keyword empty; the
// call only fails when every lookup failed.
func (s *Service) Trends(ctx context.Context, keywords []string, timeframe, geo string) (*TrendsReport, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("keywords are required")
	}
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}

	report := &TrendsReport{
		Keywords:       keywords,
		Timeframe:      timeframe,
		Geo:            geo,
		RelatedQueries: make(map[string][]string, len(keywords)),
		TrendingNow:    make(map[string]bool, len(keywords)),
		GeneratedAt:    s.now(),
	}

	trending, trendErr := s.TrendingNow(ctx)
	if trendErr != nil {
		s.log.Warn().Err(trendErr).Msg("Trending list unavailable")
	}

	failures := 0
	var lastErr error
	for _, kw := range keywords {
		queries, err := s.Related(ctx, kw)
		if err != nil {
			failures++
			lastErr = err
			s.log.Warn().Err(err).Str("keyword", kw).Msg("Related lookup failed")
			queries = []string{}
		}
		report.RelatedQueries[kw] = queries
		report.TrendingNow[kw] = matchesAny(kw, trending)
	}

	if trendErr != nil && failures == len(keywords) {
		return nil, fmt.Errorf("trend lookups failed: %w", lastErr)
	}
	return report, nil
}

// matchesAny reports whether keyword and some title contain one another
func matchesAny(keyword string, titles []string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return false
	}
	for _, t := range titles {
		title := strings.ToLower(t)
		if strings.Contains(title, kw) || strings.Contains(kw, title) {
			return true
		}
	}
	return false
}
