package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/internal/models"
	"github.com/trendfarm/internal/source"
	"github.com/trendfarm/internal/source/seed"
	"github.com/trendfarm/internal/storage/history"
	"github.com/trendfarm/pkg/logger"
)

// Agent picks the next trending topic to write about. Remote failures are
// logged and treated as empty results; the seed list is the final backstop.
type Agent struct {
	sourceManager *source.Manager
	related       source.RelatedSource
	seeds         *seed.Source
	history       *history.Store
	cfg           config.TrendsConfig
	niche         []string
	log           *logger.Logger
}

// NewAgent creates a new discovery agent. related may be nil.
func NewAgent(
	sourceManager *source.Manager,
	related source.RelatedSource,
	seeds *seed.Source,
	historyStore *history.Store,
	cfg config.TrendsConfig,
	log *logger.Logger,
) *Agent {
	niche := make([]string, 0, len(cfg.NicheKeywords))
	for _, kw := range cfg.NicheKeywords {
		niche = append(niche, strings.ToLower(kw))
	}

	return &Agent{
		sourceManager: sourceManager,
		related:       related,
		seeds:         seeds,
		history:       historyStore,
		cfg:           cfg,
		niche:         niche,
		log:           log.WithComponent("discovery"),
	}
}

// Fetch returns up to maxResults unused candidates, trending first, then
// related queries, then one seed topic if nothing else survived filtering.
func (a *Agent) Fetch(ctx context.Context, filterNiche bool, maxResults int) []*models.TopicRecord {
	startTime := time.Now()
	if maxResults <= 0 {
		maxResults = a.cfg.MaxResults
	}

	hist := a.loadHistory()
	sel := &selection{
		agent:       a,
		history:     hist,
		filterNiche: filterNiche,
		max:         maxResults,
		seen:        make(map[string]bool),
	}

	// Step 1: trending lists
	trending, fetchErrors := a.sourceManager.FetchAll(ctx)
	for _, err := range fetchErrors {
		a.log.Warn().Err(err).Msg("Trend source failed, continuing")
	}
	for _, rec := range trending {
		if sel.full() {
			break
		}
		sel.offer(rec)
	}

	// Step 2: related queries for the seed keywords
	if !sel.full() && a.related != nil {
		for _, kw := range a.cfg.RelatedKeywords {
			if sel.full() || ctx.Err() != nil {
				break
			}
			queries, err := a.related.Related(ctx, kw)
			if err != nil {
				a.log.Warn().Err(err).Str("keyword", kw).Msg("Related lookup failed, continuing")
				continue
			}
			perSeed := a.cfg.RelatedPerSeed
			if perSeed > 0 && len(queries) > perSeed {
				queries = queries[:perSeed]
			}
			for i, q := range queries {
				sel.offer(&models.TopicRecord{
					Topic:  q,
					Source: source.RisingSourceName(kw),
					Rank:   i + 1,
				})
			}
		}
	}

	// Step 3: seed fallback
	if len(sel.results) == 0 && a.seeds != nil {
		if rec := a.seeds.Pick(hist); rec != nil {
			sel.results = append(sel.results, rec)
		}
	}

	a.log.Info().
		Int("candidates", len(sel.results)).
		Int("trending", len(trending)).
		Bool("filter_niche", filterNiche).
		Dur("duration", time.Since(startTime)).
		Msg("Fetched topic candidates")

	return sel.results
}

// SelectBest returns the highest-ranked candidate and appends it to the
// history. An error is returned only when nothing could be selected or the
// history could not be written.
func (a *Agent) SelectBest(ctx context.Context, filterNiche bool) (string, error) {
	candidates := a.Fetch(ctx, filterNiche, a.cfg.MaxResults)
	if len(candidates) == 0 {
		return "", fmt.Errorf("no topic candidates available")
	}

	best := candidates[0]
	if _, err := a.history.Record(best.Topic); err != nil {
		return "", fmt.Errorf("failed to record topic history: %w", err)
	}

	a.log.Info().
		Str("topic", best.Topic).
		Str("source", best.Source).
		Int("rank", best.Rank).
		Msg("Selected topic")

	return best.Topic, nil
}

// MatchesNiche reports whether topic contains any niche keyword,
// case-insensitively
func (a *Agent) MatchesNiche(topic string) bool {
	lower := strings.ToLower(topic)
	for _, kw := range a.niche {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (a *Agent) loadHistory() *models.TopicHistory {
	h, err := a.history.Load()
	if err != nil {
		a.log.Warn().Err(err).Msg("Failed to load topic history, treating as empty")
		return &models.TopicHistory{Topics: []string{}}
	}
	return h
}

// selection accumulates filtered candidates for one Fetch call
type selection struct {
	agent       *Agent
	history     *models.TopicHistory
	filterNiche bool
	max         int
	seen        map[string]bool
	results     []*models.TopicRecord
}

func (s *selection) full() bool {
	return len(s.results) >= s.max
}

func (s *selection) offer(rec *models.TopicRecord) {
	if s.full() || rec == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(rec.Topic))
	if key == "" || s.seen[key] {
		return
	}
	if s.history.Contains(rec.Topic) {
		return
	}
	if s.filterNiche && !s.agent.MatchesNiche(rec.Topic) {
		return
	}
	s.seen[key] = true
	s.results = append(s.results, rec)
}
