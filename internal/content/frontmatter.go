package content

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/trendfarm/internal/models"
)

const (
	dateLayout       = "2006-01-02"
	defaultHeroImage = "/images/placeholder.jpg"
	fence            = "---"
)

// FrontMatter is the metadata block at the top of a generated post
type FrontMatter struct {
	Title          string                 `yaml:"title"`
	Description    string                 `yaml:"description"`
	PubDate        string                 `yaml:"pubDate"`
	UpdatedDate    string                 `yaml:"updatedDate"`
	HeroImage      string                 `yaml:"heroImage"`
	Tags           []string               `yaml:"tags"`
	AffiliateLinks []models.AffiliateLink `yaml:"affiliateLinks"`
}

// RenderDocument writes the front-matter as literal text followed by the
// body. Both dates are set to the given day.
func RenderDocument(draft *models.Draft, links []models.AffiliateLink, now time.Time) string {
	date := now.Format(dateLayout)

	var b strings.Builder
	b.WriteString(fence + "\n")
	fmt.Fprintf(&b, "title: %s\n", quote(draft.Title))
	fmt.Fprintf(&b, "description: %s\n", quote(draft.Description))
	fmt.Fprintf(&b, "pubDate: %s\n", date)
	fmt.Fprintf(&b, "updatedDate: %s\n", date)
	fmt.Fprintf(&b, "heroImage: %s\n", defaultHeroImage)

	if len(draft.Tags) == 0 {
		b.WriteString("tags: []\n")
	} else {
		b.WriteString("tags:\n")
		for _, tag := range draft.Tags {
			fmt.Fprintf(&b, "  - %s\n", quote(tag))
		}
	}

	if len(links) == 0 {
		b.WriteString("affiliateLinks: []\n")
	} else {
		b.WriteString("affiliateLinks:\n")
		for _, link := range links {
			fmt.Fprintf(&b, "  - text: %s\n", quote(link.Text))
			fmt.Fprintf(&b, "    url: %s\n", quote(link.URL))
		}
	}

	b.WriteString(fence + "\n\n")
	b.WriteString(draft.Content)
	if !strings.HasSuffix(draft.Content, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// quote renders s as a double-quoted YAML scalar
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "", "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

// ParseDocument splits a post into its front-matter and body
func ParseDocument(doc []byte) (*FrontMatter, string, error) {
	doc = bytes.TrimPrefix(doc, []byte("\ufeff"))
	if !bytes.HasPrefix(doc, []byte(fence)) {
		return nil, "", fmt.Errorf("document has no front-matter")
	}

	rest := doc[len(fence):]
	end := bytes.Index(rest, []byte("\n"+fence))
	if end < 0 {
		return nil, "", fmt.Errorf("front-matter is not terminated")
	}

	var fm FrontMatter
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return nil, "", fmt.Errorf("failed to parse front-matter: %w", err)
	}

	body := rest[end+len("\n"+fence):]
	body = bytes.TrimLeft(body, "\r\n")
	return &fm, string(body), nil
}
