package seed

import (
	"testing"

	"github.com/trendfarm/internal/models"
	"github.com/trendfarm/pkg/logger"
)

func TestPickPrefersUnused(t *testing.T) {
	s := New([]string{"A", "B", "C"}, logger.Nop())
	s.intn = func(n int) int { return 0 }

	got := s.Pick(&models.TopicHistory{Topics: []string{"A"}})
	if got.Topic != "B" {
		t.Errorf("Pick() = %q, want B", got.Topic)
	}
	if got.Source != models.SourceSeedTopic {
		t.Errorf("Source = %q", got.Source)
	}
	if got.Rank != 0 {
		t.Errorf("Rank = %d, want 0", got.Rank)
	}
}

func TestPickRepeatsWhenExhausted(t *testing.T) {
	s := New([]string{"A", "B"}, logger.Nop())
	s.intn = func(n int) int { return n - 1 }

	got := s.Pick(&models.TopicHistory{Topics: []string{"A", "B"}})
	if got.Topic != "B" {
		t.Errorf("Pick() = %q, want B", got.Topic)
	}
	if got.Source != models.SourceSeedTopicRepeat {
		t.Errorf("Source = %q, want %q", got.Source, models.SourceSeedTopicRepeat)
	}
}

func TestPickEmpty(t *testing.T) {
	if got := New(nil, logger.Nop()).Pick(nil); got != nil {
		t.Errorf("Expected nil, got %+v", got)
	}
}
