package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/trendfarm/internal/models"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World! 2025", "hello-world-2025"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Cloud GPUs for AI Training: RunPod vs Lambda vs Vast.ai", "cloud-gpus-for-ai-training-runpod-vs-lambda-vs-vastai"},
		{"already-a-slug", "already-a-slug"},
		{"multiple---hyphens -- and   spaces", "multiple-hyphens-and-spaces"},
		{"snake_case stays", "snake_case-stays"},
		{"!!!", ""},
		{"Café Racer Guide", "café-racer-guide"},
		{"Über Eats Review", "über-eats-review"},
		{"日本 Gadgets", "日本-gadgets"},
		{"Smart\u00a0Home", "smart-home"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if twice := Slugify(Slugify(tt.in)); twice != Slugify(tt.in) {
			t.Errorf("Slugify not idempotent for %q: %q", tt.in, twice)
		}
	}
}

func TestRenderAndParseDocument(t *testing.T) {
	draft := &models.Draft{
		Title:       `The "Best" Earbuds`,
		Description: "Short description",
		Tags:        []string{"audio", "review"},
		Content:     "## Introduction\n\nBody text.",
	}
	links := []models.AffiliateLink{
		{Text: "Shop on Amazon", URL: "/go/shop-on-amazon-abc123"},
	}
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	doc := RenderDocument(draft, links, now)

	for _, want := range []string{
		"---\ntitle: \"The \\\"Best\\\" Earbuds\"\n",
		"pubDate: 2025-03-14\n",
		"updatedDate: 2025-03-14\n",
		"heroImage: /images/placeholder.jpg\n",
		"tags:\n  - \"audio\"\n  - \"review\"\n",
		"affiliateLinks:\n  - text: \"Shop on Amazon\"\n    url: \"/go/shop-on-amazon-abc123\"\n",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}

	fm, body, err := ParseDocument([]byte(doc))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if fm.Title != draft.Title {
		t.Errorf("Title = %q, want %q", fm.Title, draft.Title)
	}
	if fm.PubDate != "2025-03-14" {
		t.Errorf("PubDate = %q", fm.PubDate)
	}
	if len(fm.Tags) != 2 || fm.Tags[1] != "review" {
		t.Errorf("Tags = %v", fm.Tags)
	}
	if len(fm.AffiliateLinks) != 1 || fm.AffiliateLinks[0].URL != links[0].URL {
		t.Errorf("AffiliateLinks = %v", fm.AffiliateLinks)
	}
	if strings.TrimSpace(body) != draft.Content {
		t.Errorf("body = %q, want %q", body, draft.Content)
	}
}

func TestParseDocumentRejectsPlainMarkdown(t *testing.T) {
	if _, _, err := ParseDocument([]byte("# Just a heading\n")); err == nil {
		t.Error("Expected error for document without front-matter")
	}
}

func TestStoreSaveCollision(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "posts")
	store := NewStore(dir)
	store.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	first, err := store.Save("wireless-earbuds", "one")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if filepath.Base(first) != "wireless-earbuds.md" {
		t.Errorf("first path = %q", first)
	}

	second, err := store.Save("wireless-earbuds", "two")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if filepath.Base(second) != "wireless-earbuds-20250102030405.md" {
		t.Errorf("second path = %q", second)
	}

	data, _ := os.ReadFile(first)
	if string(data) != "one" {
		t.Errorf("first file overwritten: %q", data)
	}
}

func TestStoreScan(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	now := time.Now()

	docs := map[string]*models.Draft{
		"a": {Title: "A", Tags: []string{"ai-ml", "guide"}, Content: "x"},
		"b": {Title: "B", Tags: []string{"ai-ml"}, Content: "y"},
	}
	for slug, d := range docs {
		if _, err := store.Save(slug, RenderDocument(d, nil, now)); err != nil {
			t.Fatal(err)
		}
	}
	os.WriteFile(filepath.Join(dir, "broken.md"), []byte("no front matter"), 0644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644)

	summary, err := store.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if summary.TotalPosts != 2 {
		t.Errorf("TotalPosts = %d, want 2", summary.TotalPosts)
	}
	if summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", summary.Skipped)
	}
	if summary.Categories["ai-ml"] != 2 || summary.Categories["guide"] != 1 {
		t.Errorf("Categories = %v", summary.Categories)
	}
	if top := summary.TopCategories(1); len(top) != 1 || top[0] != "ai-ml" {
		t.Errorf("TopCategories(1) = %v", top)
	}
}

func TestStoreScanMissingDir(t *testing.T) {
	summary, err := NewStore(filepath.Join(t.TempDir(), "missing")).Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if summary.TotalPosts != 0 {
		t.Errorf("TotalPosts = %d", summary.TotalPosts)
	}
}
