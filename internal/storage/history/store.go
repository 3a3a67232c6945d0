package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/trendfarm/internal/models"
)

// Store persists the topic history as a single JSON file. Reads and writes
// are whole-file and unlocked; one process is expected to own the file.
type Store struct {
	path  string
	limit int
	now   func() time.Time
}

// NewStore creates a store at path keeping at most limit topics
func NewStore(path string, limit int) *Store {
	return &Store{path: path, limit: limit, now: time.Now}
}

// Load reads the history. A missing file is an empty history.
func (s *Store) Load() (*models.TopicHistory, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.TopicHistory{Topics: []string{}}, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var h models.TopicHistory
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to parse history %s: %w", s.path, err)
	}
	if h.Topics == nil {
		h.Topics = []string{}
	}
	return &h, nil
}

// Save writes the history, stamping last_updated
func (s *Store) Save(h *models.TopicHistory) error {
	h.LastUpdated = models.Timestamp{Time: s.now()}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// Record appends topic to the stored history, evicting beyond the limit.
// An unreadable history file is returned as an error and left untouched.
func (s *Store) Record(topic string) (*models.TopicHistory, error) {
	h, err := s.Load()
	if err != nil {
		return nil, err
	}
	h.Append(topic, s.limit)
	if err := s.Save(h); err != nil {
		return nil, err
	}
	return h, nil
}
