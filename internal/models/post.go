package models

import (
	"time"
)

// Product is an item the drafted article recommends
type Product struct {
	Name string `json:"name"`
	ASIN string `json:"asin,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Draft is the parsed LLM output, or the templated fallback when the
// output could not be parsed
type Draft struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Content     string    `json:"content"`
	Products    []Product `json:"products"`
	Fallback    bool      `json:"-"`
}

// AffiliateLink is a front-matter link entry. URL holds either the real
// target or its cloaked path.
type AffiliateLink struct {
	Text string `json:"text" yaml:"text"`
	URL  string `json:"url" yaml:"url"`
}

// RedirectMap maps a cloaked path to its real URL
type RedirectMap map[string]string

// Merge copies entries from other, overwriting existing keys
func (m RedirectMap) Merge(other RedirectMap) {
	for k, v := range other {
		m[k] = v
	}
}

// GeneratedPost is the result of drafting one topic
type GeneratedPost struct {
	Topic     string
	Slug      string
	Document  string
	Draft     *Draft
	Links     []AffiliateLink
	Redirects RedirectMap
	Model     string
	Path      string
}

// PostRecord is the ledger row written for every generated post
type PostRecord struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Slug      string      `gorm:"index;not null" json:"slug"`
	Title     string      `gorm:"not null" json:"title"`
	Topic     string      `gorm:"index" json:"topic"`
	Path      string      `json:"path"`
	Model     string      `json:"model"`
	Fallback  bool        `json:"fallback"`
	Tags      StringSlice `gorm:"type:json" json:"tags"`
	LinkCount int         `json:"link_count"`
	CreatedAt time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName pins the ledger table name
func (PostRecord) TableName() string {
	return "generated_posts"
}
