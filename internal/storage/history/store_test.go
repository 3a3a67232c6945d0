package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "topic_history.json"), 100)

	h, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(h.Topics) != 0 {
		t.Errorf("Expected empty history, got %v", h.Topics)
	}
}

func TestRecordWritesFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "topic_history.json")
	store := NewStore(path, 100)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	if _, err := store.Record("Wireless Earbuds"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("history is not JSON: %v", err)
	}
	if _, ok := raw["topics"]; !ok {
		t.Error("missing topics key")
	}
	if _, ok := raw["last_updated"]; !ok {
		t.Error("missing last_updated key")
	}

	h, _ := store.Load()
	if len(h.Topics) != 1 || h.Topics[0] != "Wireless Earbuds" {
		t.Errorf("Topics = %v", h.Topics)
	}
	if !h.LastUpdated.Equal(fixed) {
		t.Errorf("LastUpdated = %v, want %v", h.LastUpdated, fixed)
	}
}

func TestRecordCapsHistory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "h.json"), 100)

	for i := 0; i < 105; i++ {
		if _, err := store.Record(fmt.Sprintf("topic-%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	h, _ := store.Load()
	if len(h.Topics) != 100 {
		t.Fatalf("Expected 100 topics, got %d", len(h.Topics))
	}
	if h.Topics[0] != "topic-5" || h.Topics[99] != "topic-104" {
		t.Errorf("unexpected window: first %q last %q", h.Topics[0], h.Topics[99])
	}
	if h.Contains("topic-0") {
		t.Error("oldest topic should have been evicted")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.json")
	os.WriteFile(path, []byte("{not json"), 0644)

	if _, err := NewStore(path, 100).Load(); err == nil {
		t.Error("Expected error for corrupt history")
	}
}

func TestLoadNaiveISOTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topic_history.json")
	doc := `{"topics": ["Wireless Earbuds"], "last_updated": "2025-06-01T12:00:00.123456"}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(path, 100)

	h, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !h.Contains("Wireless Earbuds") {
		t.Errorf("Topics = %v", h.Topics)
	}
	want := time.Date(2025, 6, 1, 12, 0, 0, 123456000, time.Local)
	if !h.LastUpdated.Equal(want) {
		t.Errorf("LastUpdated = %v, want %v", h.LastUpdated, want)
	}

	h, err = store.Record("Next Topic")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(h.Topics) != 2 || h.Topics[0] != "Wireless Earbuds" || h.Topics[1] != "Next Topic" {
		t.Errorf("Topics = %v, want existing topic kept", h.Topics)
	}
}

func TestLoadTimestampVariants(t *testing.T) {
	tests := []struct {
		name string
		ts   string
		zero bool
	}{
		{"rfc3339", `"2025-06-01T12:00:00Z"`, false},
		{"offset", `"2025-06-01T12:00:00.5+02:00"`, false},
		{"no fraction", `"2025-06-01T12:00:00"`, false},
		{"null", `null`, true},
		{"empty", `""`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "h.json")
			os.WriteFile(path, []byte(`{"topics": [], "last_updated": `+tt.ts+`}`), 0644)

			h, err := NewStore(path, 100).Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if h.LastUpdated.IsZero() != tt.zero {
				t.Errorf("LastUpdated = %v, zero want %v", h.LastUpdated, tt.zero)
			}
		})
	}
}

func TestRecordKeepsUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.json")
	corrupt := []byte(`{"topics": ["Keep Me"], "last_updated": "yesterday"}`)
	os.WriteFile(path, corrupt, 0644)

	if _, err := NewStore(path, 100).Record("New"); err == nil {
		t.Fatal("Expected error for unreadable history")
	}
	data, _ := os.ReadFile(path)
	if string(data) != string(corrupt) {
		t.Errorf("history file was overwritten: %s", data)
	}
}
