package suggest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/internal/source"
	"github.com/trendfarm/pkg/logger"
	"github.com/trendfarm/pkg/ratelimit"
)

// Source looks up related queries for a keyword via the search suggestion
// endpoint, which answers with ["<query>", ["<suggestion>", ...], ...]
type Source struct {
	endpoint   string
	geo        string
	limit      int
	httpClient *http.Client
	limiter    *ratelimit.MultiLimiter
	log        *logger.Logger
}

// New creates a related-query source
func New(cfg config.TrendsConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Source {
	limit := cfg.RelatedPerSeed
	if limit <= 0 {
		limit = 3
	}
	return &Source{
		endpoint: cfg.SuggestURL,
		geo:      cfg.Geo,
		limit:    limit,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: limiter,
		log:     log.WithSource("suggest", cfg.Geo),
	}
}

// Name returns the source name
func (s *Source) Name() string {
	return "related-queries"
}

// Related returns up to the configured number of queries related to keyword,
// excluding the keyword itself
func (s *Source) Related(ctx context.Context, keyword string) ([]string, error) {
	if err := s.limiter.Wait(ctx, ratelimit.LimiterTrends); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	params := url.Values{}
	params.Set("client", "firefox")
	params.Set("hl", "en")
	if s.geo != "" {
		params.Set("gl", s.geo)
	}
	params.Set("q", keyword)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("suggest error (status %d): %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read suggestions: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("failed to decode suggestions for %q", keyword)
	}
	list := gjson.GetBytes(body, "1")
	if !list.IsArray() {
		return nil, fmt.Errorf("unexpected suggestion payload for %q", keyword)
	}

	related := make([]string, 0, s.limit)
	for _, item := range list.Array() {
		q := strings.TrimSpace(item.String())
		if q == "" || strings.EqualFold(q, keyword) {
			continue
		}
		related = append(related, q)
		if len(related) == s.limit {
			break
		}
	}

	s.log.Debug().
		Str("keyword", keyword).
		Int("count", len(related)).
		Msg("Fetched related queries")

	return related, nil
}

// Ensure Source implements source.RelatedSource
var _ source.RelatedSource = (*Source)(nil)
