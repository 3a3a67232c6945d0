package content

import (
	"regexp"
	"strings"
)

var (
	nonSlugChars = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}-]`)
	slugRuns     = regexp.MustCompile(`[-\s\p{Z}]+`)
)

// Slugify derives a filesystem-safe slug: lowercase, drop everything but
// Unicode letters and digits, underscores, whitespace and hyphens, collapse
// runs of whitespace and hyphens into one hyphen, trim hyphens from both ends.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = slugRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
