package research

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/trendfarm/pkg/ratelimit"
)

const (
	maxPageSize = 4 << 20
	maxH2Tags   = 5
	userAgent   = "Mozilla/5.0"
)

// ErrInvalidURL is returned by AnalyzePage for anything but an http(s) URL
var ErrInvalidURL = errors.New("url must be http or https")

// PageMeta is the SEO metadata of a page
type PageMeta struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    string   `json:"keywords"`
	H1Tags      []string `json:"h1_tags"`
	H2Tags      []string `json:"h2_tags"`
}

// PageAnalysis is the result of AnalyzePage
type PageAnalysis struct {
	URL        string    `json:"url"`
	MetaData   *PageMeta `json:"meta_data,omitempty"`
	WordCount  int       `json:"word_count"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// AnalyzePage fetches pageURL and extracts its metadata and word count
func (s *Service) AnalyzePage(ctx context.Context, pageURL string, extractMeta bool) (*PageAnalysis, error) {
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		return nil, ErrInvalidURL
	}

	if err := s.rateLimiter.Wait(ctx, ratelimit.LimiterWeb); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		s.log.Warn().Int("status", resp.StatusCode).Str("url", pageURL).Msg("Analyzing error page")
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("read page %s: %w", pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}

	analysis := &PageAnalysis{
		URL:        pageURL,
		WordCount:  len(strings.Fields(doc.Text())),
		AnalyzedAt: s.now(),
	}
	if extractMeta {
		analysis.MetaData = extractPageMeta(doc)
	}
	return analysis, nil
}

func extractPageMeta(doc *goquery.Document) *PageMeta {
	meta := &PageMeta{
		Title:  doc.Find("title").First().Text(),
		H1Tags: []string{},
		H2Tags: []string{},
	}
	meta.Description, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	meta.Keywords, _ = doc.Find(`meta[name="keywords"]`).First().Attr("content")

	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		meta.H1Tags = append(meta.H1Tags, s.Text())
	})
	doc.Find("h2").EachWithBreak(func(i int, s *goquery.Selection) bool {
		meta.H2Tags = append(meta.H2Tags, s.Text())
		return len(meta.H2Tags) < maxH2Tags
	})
	return meta
}
