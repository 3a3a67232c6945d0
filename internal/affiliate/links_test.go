package affiliate

import (
	"regexp"
	"strings"
	"testing"

	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/internal/models"
)

func newTestLinker(cloak bool) *Linker {
	return NewLinker(config.AffiliateConfig{
		AmazonTag:   "test-20",
		ClickBankID: "vendor",
		CloakLinks:  cloak,
	})
}

func TestTagAmazonURLs(t *testing.T) {
	l := newTestLinker(false)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no query",
			in:   "See https://www.amazon.com/dp/B000123 today",
			want: "See https://www.amazon.com/dp/B000123?tag=test-20 today",
		},
		{
			name: "existing query",
			in:   "https://amazon.com/s?k=earbuds",
			want: "https://amazon.com/s?k=earbuds&tag=test-20",
		},
		{
			name: "already tagged",
			in:   "https://www.amazon.com/dp/B1?tag=other-20",
			want: "https://www.amazon.com/dp/B1?tag=other-20",
		},
		{
			name: "markdown link",
			in:   "[buy](https://www.amazon.com/dp/B2)",
			want: "[buy](https://www.amazon.com/dp/B2?tag=test-20)",
		},
		{
			name: "other domains untouched",
			in:   "https://example.com/amazon.com/x",
			want: "https://example.com/amazon.com/x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.TagAmazonURLs(tt.in); got != tt.want {
				t.Errorf("TagAmazonURLs(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTagAmazonURLsIdempotent(t *testing.T) {
	l := newTestLinker(false)
	in := "a https://www.amazon.com/dp/B1 b https://amazon.com/s?k=x c " + AmazonPlaceholder

	once := l.Inject(in, "Wireless Earbuds")
	twice := l.Inject(once, "Wireless Earbuds")
	if once != twice {
		t.Errorf("second pass changed text:\nonce:  %q\ntwice: %q", once, twice)
	}
	if strings.Count(once, "tag=") != 3 {
		t.Errorf("expected 3 tag parameters, got %d in %q", strings.Count(once, "tag="), once)
	}
}

func TestReplacePlaceholders(t *testing.T) {
	l := newTestLinker(false)
	got := l.ReplacePlaceholders("Buy: [Amazon Link] or [ClickBank Link]", "Wireless Earbuds")
	want := "Buy: https://www.amazon.com/s?k=Wireless+Earbuds&tag=test-20 or https://vendor.clickbank.net"
	if got != want {
		t.Errorf("ReplacePlaceholders() = %q, want %q", got, want)
	}
}

func TestCloak(t *testing.T) {
	a := Cloak("https://www.amazon.com/dp/B1?tag=x", "Buy Widget")
	b := Cloak("https://www.amazon.com/dp/B1?tag=x", "Buy Widget")
	c := Cloak("https://www.amazon.com/dp/B2?tag=x", "Buy Widget")

	if a != b {
		t.Errorf("Cloak not deterministic: %q vs %q", a, b)
	}
	if a == c {
		t.Errorf("different URLs share a cloaked path: %q", a)
	}
	if !regexp.MustCompile(`^/go/buy-widget-[0-9a-f]{6}$`).MatchString(a) {
		t.Errorf("Cloak() = %q, unexpected shape", a)
	}
}

func TestBuildLinks(t *testing.T) {
	products := []models.Product{
		{Name: "Widget", ASIN: "B0001"},
		{Name: "No ASIN"},
	}

	t.Run("cloaking off", func(t *testing.T) {
		links, redirects := newTestLinker(false).BuildLinks("Earbuds", products)
		if len(links) != 2 {
			t.Fatalf("Expected 2 links, got %d", len(links))
		}
		if links[0].Text != "Shop on Amazon" || links[0].URL != "https://www.amazon.com/s?k=Earbuds&tag=test-20" {
			t.Errorf("unexpected shop link %+v", links[0])
		}
		if links[1].Text != "Buy Widget" || links[1].URL != "https://www.amazon.com/dp/B0001?tag=test-20" {
			t.Errorf("unexpected product link %+v", links[1])
		}
		if len(redirects) != 0 {
			t.Errorf("Expected no redirects, got %v", redirects)
		}
	})

	t.Run("cloaking on", func(t *testing.T) {
		links, redirects := newTestLinker(true).BuildLinks("Earbuds", products)
		if len(redirects) != len(links) {
			t.Fatalf("Expected %d redirects, got %d", len(links), len(redirects))
		}
		for _, link := range links {
			if !strings.HasPrefix(link.URL, "/go/") {
				t.Errorf("link %q not cloaked: %q", link.Text, link.URL)
			}
			if redirects[link.URL] == "" {
				t.Errorf("no redirect entry for %q", link.URL)
			}
		}
		if redirects[links[1].URL] != "https://www.amazon.com/dp/B0001?tag=test-20" {
			t.Errorf("redirect target = %q", redirects[links[1].URL])
		}
	})
}
