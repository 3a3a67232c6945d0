package source

import (
	"context"
	"strings"

	"github.com/trendfarm/internal/models"
)

// TopicSource defines the interface for trending-topic sources
type TopicSource interface {
	// Name returns the unique name of this source
	Name() string

	// Type returns the source type (googletrends, seed)
	Type() string

	// Fetch retrieves ranked topic candidates from the source
	Fetch(ctx context.Context) ([]*models.TopicRecord, error)

	// HealthCheck verifies the source is accessible
	HealthCheck(ctx context.Context) error
}

// RelatedSource looks up queries related to a seed keyword
type RelatedSource interface {
	Name() string
	Related(ctx context.Context, keyword string) ([]string, error)
}

// RisingSourceName is the TopicRecord source for related results of keyword
func RisingSourceName(keyword string) string {
	return models.SourceRisingPrefix + strings.ReplaceAll(strings.TrimSpace(keyword), " ", "_")
}

// Manager manages multiple topic sources
type Manager struct {
	sources []TopicSource
}

// NewManager creates a new source manager
func NewManager() *Manager {
	return &Manager{
		sources: make([]TopicSource, 0),
	}
}

// Register adds a source to the manager
func (m *Manager) Register(source TopicSource) {
	m.sources = append(m.sources, source)
}

// FetchAll fetches from every source one after another, keeping
// registration order so ranks stay meaningful. A failing source
// contributes an error and no topics.
func (m *Manager) FetchAll(ctx context.Context) ([]*models.TopicRecord, []error) {
	var all []*models.TopicRecord
	var errs []error

	for _, s := range m.sources {
		topics, err := s.Fetch(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		all = append(all, topics...)
	}

	return all, errs
}
