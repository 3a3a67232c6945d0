package seed

import (
	"context"
	"math/rand/v2"

	"github.com/trendfarm/internal/models"
	"github.com/trendfarm/internal/source"
	"github.com/trendfarm/pkg/logger"
)

// Source serves the fixed seed-topic list, the last resort when no trend
// source yields a usable topic
type Source struct {
	topics []string
	intn   func(n int) int
	log    *logger.Logger
}

// New creates a seed source over topics
func New(topics []string, log *logger.Logger) *Source {
	return &Source{
		topics: append([]string(nil), topics...),
		intn:   rand.IntN,
		log:    log.WithSource("seed", "topics"),
	}
}

// Name returns the source name
func (s *Source) Name() string {
	return "seed-topics"
}

// Type returns "seed"
func (s *Source) Type() string {
	return "seed"
}

// Fetch returns every seed topic unranked
func (s *Source) Fetch(ctx context.Context) ([]*models.TopicRecord, error) {
	records := make([]*models.TopicRecord, 0, len(s.topics))
	for _, t := range s.topics {
		records = append(records, &models.TopicRecord{Topic: t, Source: models.SourceSeedTopic})
	}
	return records, nil
}

// Pick chooses a random seed topic, preferring ones absent from history.
// When every seed has been used it repeats one and says so in Source.
// It returns nil only when the list is empty.
func (s *Source) Pick(history *models.TopicHistory) *models.TopicRecord {
	if len(s.topics) == 0 {
		return nil
	}

	unused := make([]string, 0, len(s.topics))
	for _, t := range s.topics {
		if history == nil || !history.Contains(t) {
			unused = append(unused, t)
		}
	}

	if len(unused) > 0 {
		topic := unused[s.intn(len(unused))]
		s.log.Info().Str("topic", topic).Msg("Falling back to seed topic")
		return &models.TopicRecord{Topic: topic, Source: models.SourceSeedTopic}
	}

	topic := s.topics[s.intn(len(s.topics))]
	s.log.Warn().Str("topic", topic).Msg("All seed topics used, repeating one")
	return &models.TopicRecord{Topic: topic, Source: models.SourceSeedTopicRepeat}
}

// HealthCheck always succeeds for the seed source
func (s *Source) HealthCheck(ctx context.Context) error {
	return nil
}

// Ensure Source implements source.TopicSource
var _ source.TopicSource = (*Source)(nil)
