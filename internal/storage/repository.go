package storage

import (
	"context"
	"time"

	"github.com/trendfarm/internal/models"
)

// Repository records every generated post in a ledger
type Repository interface {
	CreatePost(ctx context.Context, post *models.PostRecord) error
	ListPosts(ctx context.Context, filter PostFilter) ([]*models.PostRecord, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.PostRecord, error)
	Stats(ctx context.Context) (*LedgerStats, error)

	// Maintenance
	Close() error
	Migrate() error
}

// PostFilter defines filtering options for ledger rows
type PostFilter struct {
	Topic        string
	FallbackOnly bool
	Since        *time.Time
	Limit        int
	Offset       int
	OrderDesc    bool
}

// LedgerStats summarizes the ledger
type LedgerStats struct {
	GeneratedTotal  int64      `json:"generated_total"`
	FallbackTotal   int64      `json:"fallback_total"`
	LastGeneratedAt *time.Time `json:"last_generated_at"`
}

// DefaultPostFilter returns a filter with sensible defaults
func DefaultPostFilter() PostFilter {
	return PostFilter{
		Limit:     20,
		OrderDesc: true,
	}
}
