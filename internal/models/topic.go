package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Topic sources reported on TopicRecord.Source
const (
	SourceTrendingNow     = "trending_now"
	SourceRisingPrefix    = "rising_"
	SourceSeedTopic       = "seed_topic"
	SourceSeedTopicRepeat = "seed_topic_repeat"
)

// StringSlice is a custom type for storing string arrays in JSON
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported StringSlice value %T", value)
	}
}

// TopicRecord is one candidate produced by a trend source. It lives only
// for the duration of a selection run.
type TopicRecord struct {
	Topic  string `json:"topic"`
	Source string `json:"source"`
	Rank   int    `json:"rank"`
}

// TopicHistory is the persisted list of already-used topics, most recent last
type TopicHistory struct {
	Topics      []string  `json:"topics"`
	LastUpdated Timestamp `json:"last_updated"`
}

// Timestamp is an ISO 8601 time that also reads values without a UTC
// offset, which are taken as local time. It is written as RFC 3339.
type Timestamp struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("timestamp must be a string: %s", data)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid ISO 8601 timestamp %q", s)
}

// Contains reports whether topic was already used
func (h *TopicHistory) Contains(topic string) bool {
	for _, t := range h.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// Append records topic and evicts the oldest entries beyond limit
func (h *TopicHistory) Append(topic string, limit int) {
	h.Topics = append(h.Topics, topic)
	if limit > 0 && len(h.Topics) > limit {
		h.Topics = append([]string(nil), h.Topics[len(h.Topics)-limit:]...)
	}
}
