package affiliate

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/internal/content"
	"github.com/trendfarm/internal/models"
)

// Placeholder tokens the drafting prompt allows the model to emit
const (
	AmazonPlaceholder    = "[Amazon Link]"
	ClickBankPlaceholder = "[ClickBank Link]"
)

const (
	cloakPrefix  = "/go/"
	shopLinkText = "Shop on Amazon"
)

var amazonURL = regexp.MustCompile(`https?://(?:www\.)?amazon\.com/[^\s\)]+`)

// Linker rewrites drafted Markdown and builds front-matter links
type Linker struct {
	amazonTag   string
	clickBankID string
	cloak       bool
}

// NewLinker creates a linker from the affiliate configuration
func NewLinker(cfg config.AffiliateConfig) *Linker {
	return &Linker{
		amazonTag:   cfg.AmazonTag,
		clickBankID: cfg.ClickBankID,
		cloak:       cfg.CloakLinks,
	}
}

// TagAmazonURLs appends the affiliate tag to every literal Amazon URL that
// does not carry one yet
func (l *Linker) TagAmazonURLs(text string) string {
	return amazonURL.ReplaceAllStringFunc(text, func(u string) string {
		if strings.Contains(u, "tag=") {
			return u
		}
		if strings.Contains(u, "?") {
			return u + "&tag=" + l.amazonTag
		}
		return u + "?tag=" + l.amazonTag
	})
}

// ReplacePlaceholders substitutes the placeholder tokens with constructed URLs
func (l *Linker) ReplacePlaceholders(text, topic string) string {
	text = strings.ReplaceAll(text, AmazonPlaceholder, l.SearchURL(topic))
	text = strings.ReplaceAll(text, ClickBankPlaceholder, l.ClickBankURL())
	return text
}

// Inject applies tag injection and placeholder substitution to a body
func (l *Linker) Inject(text, topic string) string {
	return l.ReplacePlaceholders(l.TagAmazonURLs(text), topic)
}

// SearchURL is the tagged Amazon search URL for a topic
func (l *Linker) SearchURL(topic string) string {
	return fmt.Sprintf("https://www.amazon.com/s?k=%s&tag=%s", url.QueryEscape(topic), l.amazonTag)
}

// ProductURL is the tagged Amazon product URL for an ASIN
func (l *Linker) ProductURL(asin string) string {
	return fmt.Sprintf("https://www.amazon.com/dp/%s?tag=%s", asin, l.amazonTag)
}

// ClickBankURL is the vendor hop URL for the configured ClickBank id
func (l *Linker) ClickBankURL() string {
	return fmt.Sprintf("https://%s.clickbank.net", l.clickBankID)
}

// BuildLinks returns the shop link plus one link per product with an ASIN.
// With cloaking on, each URL is replaced by its cloaked path and the
// returned map holds path -> real URL; with cloaking off the map is empty.
func (l *Linker) BuildLinks(topic string, products []models.Product) ([]models.AffiliateLink, models.RedirectMap) {
	links := []models.AffiliateLink{{Text: shopLinkText, URL: l.SearchURL(topic)}}
	for _, p := range products {
		if p.ASIN == "" {
			continue
		}
		links = append(links, models.AffiliateLink{
			Text: "Buy " + p.Name,
			URL:  l.ProductURL(p.ASIN),
		})
	}

	redirects := make(models.RedirectMap)
	if !l.cloak {
		return links, redirects
	}

	for i, link := range links {
		path := Cloak(link.URL, link.Text)
		redirects[path] = link.URL
		links[i].URL = path
	}
	return links, redirects
}

// Cloak returns /go/<slug-of-text>-<first 6 hex chars of md5(url)>
func Cloak(targetURL, text string) string {
	sum := md5.Sum([]byte(targetURL))
	slug := content.Slugify(text)
	if slug == "" {
		slug = "link"
	}
	return cloakPrefix + slug + "-" + hex.EncodeToString(sum[:])[:6]
}
