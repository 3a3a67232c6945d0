package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trendfarm/internal/models"
	"github.com/trendfarm/internal/storage"
)

// Repository implements storage.Repository using SQLite
type Repository struct {
	db *gorm.DB
}

// New creates a new SQLite repository
func New(dsn string) (*Repository, error) {
	// Ensure directory exists
	if dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Repository{db: db}, nil
}

// Migrate runs database migrations
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&models.PostRecord{})
}

// Close closes the database connection
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Repository) CreatePost(ctx context.Context, post *models.PostRecord) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*models.PostRecord, error) {
	var post models.PostRecord
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		Order("created_at DESC").
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (r *Repository) ListPosts(ctx context.Context, filter storage.PostFilter) ([]*models.PostRecord, error) {
	var posts []*models.PostRecord
	query := r.db.WithContext(ctx).Model(&models.PostRecord{})

	if filter.Topic != "" {
		query = query.Where("topic = ?", filter.Topic)
	}
	if filter.FallbackOnly {
		query = query.Where("fallback = ?", true)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}

	// Ordering
	if filter.OrderDesc {
		query = query.Order("created_at DESC").Order("id DESC")
	} else {
		query = query.Order("created_at ASC").Order("id ASC")
	}

	// Pagination
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *Repository) Stats(ctx context.Context) (*storage.LedgerStats, error) {
	stats := &storage.LedgerStats{}
	db := r.db.WithContext(ctx).Model(&models.PostRecord{})

	if err := db.Count(&stats.GeneratedTotal).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.PostRecord{}).
		Where("fallback = ?", true).
		Count(&stats.FallbackTotal).Error; err != nil {
		return nil, err
	}

	if stats.GeneratedTotal > 0 {
		var latest models.PostRecord
		if err := r.db.WithContext(ctx).Order("created_at DESC").First(&latest).Error; err != nil {
			return nil, err
		}
		stats.LastGeneratedAt = &latest.CreatedAt
	}

	return stats, nil
}

// Ensure Repository implements storage.Repository
var _ storage.Repository = (*Repository)(nil)
