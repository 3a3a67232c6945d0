package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store writes generated posts into a content directory
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the content directory
func (s *Store) Dir() string {
	return s.dir
}

// Save writes document to <slug>.md, or <slug>-YYYYMMDDHHMMSS.md when the
// plain name is taken. It returns the written path.
func (s *Store) Save(slug, document string) (string, error) {
	if slug == "" {
		slug = "post"
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create content directory: %w", err)
	}

	path := filepath.Join(s.dir, slug+".md")
	if _, err := os.Stat(path); err == nil {
		stamp := s.now().Format("20060102150405")
		path = filepath.Join(s.dir, fmt.Sprintf("%s-%s.md", slug, stamp))
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(document), 0644); err != nil {
		return "", fmt.Errorf("failed to write post: %w", err)
	}
	return path, nil
}

// Summary aggregates the posts found in the content directory
type Summary struct {
	TotalPosts int            `json:"total_posts"`
	Categories map[string]int `json:"categories"`
	Links      int            `json:"affiliate_links"`
	Skipped    int            `json:"skipped"`
}

// Scan reads every Markdown post and counts posts per tag. Files whose
// front-matter cannot be parsed are counted as skipped.
func (s *Store) Scan() (*Summary, error) {
	summary := &Summary{Categories: make(map[string]int)}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return summary, nil
		}
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			summary.Skipped++
			continue
		}
		fm, _, err := ParseDocument(data)
		if err != nil {
			summary.Skipped++
			continue
		}
		summary.TotalPosts++
		summary.Links += len(fm.AffiliateLinks)
		for _, tag := range fm.Tags {
			summary.Categories[tag]++
		}
	}

	return summary, nil
}

// TopCategories returns up to n tags ordered by post count, then name
func (s *Summary) TopCategories(n int) []string {
	tags := make([]string, 0, len(s.Categories))
	for tag := range s.Categories {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		ci, cj := s.Categories[tags[i]], s.Categories[tags[j]]
		if ci != cj {
			return ci > cj
		}
		return tags[i] < tags[j]
	})
	if n > 0 && len(tags) > n {
		tags = tags[:n]
	}
	return tags
}
