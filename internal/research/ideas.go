package research

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultCategory supplies the templates for unknown categories
const DefaultCategory = "it-tech"

const trendIdeaCount = 5

var placeholder = regexp.MustCompile(`\{[^}]+\}`)

var ideaTemplates = map[string][]string{
	"ai-ml": {
		"Building Your First {tool} Model",
		"Understanding {concept} in Machine Learning",
		"{framework} vs {alternative}: A Comparison",
		"How to Implement {algorithm} from Scratch",
		"Real-world Applications of {technology}",
	},
	"indie-dev": {
		"From Idea to Launch: Building {project}",
		"Marketing Your Indie {product} in {year}",
		"Tools Every Indie Developer Needs for {task}",
		"Monetizing Your {creation}: A Guide",
		"Building a Community Around Your {product}",
	},
	"it-tech": {
		"Getting Started with {technology}",
		"Best Practices for {process}",
		"Optimizing {system} Performance",
		"Security Considerations for {platform}",
		"The Future of {field}: Trends to Watch",
	},
}

var ideaTopics = map[string][]string{
	"ai-ml":     {"TensorFlow", "PyTorch", "Neural Networks", "GPT", "Computer Vision"},
	"indie-dev": {"SaaS", "Mobile App", "Game", "Newsletter", "Course"},
	"it-tech":   {"Kubernetes", "DevOps", "Serverless", "Microservices", "Edge Computing"},
}

// Idea is a suggested blog post
type Idea struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Category    string   `json:"category"`
}

// IdeasReport is the response of Ideas
type IdeasReport struct {
	Ideas       []Idea    `json:"ideas"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Ideas suggests posts for category: one per template of the category,
// then a deep dive on each of the top current trends.
func (s *Service) Ideas(ctx context.Context, category string) (*IdeasReport, error) {
	if category == "" {
		category = "tech"
	}

	ideas := TemplateIdeas(category, s.now())

	trending, err := s.TrendingNow(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Trending list unavailable, using templates only")
	}
	for i, trend := range trending {
		if i == trendIdeaCount {
			break
		}
		ideas = append(ideas, Idea{
			Title:       fmt.Sprintf("Understanding %s: A Deep Dive", trend),
			Description: fmt.Sprintf("Explore the latest developments and insights about %s", trend),
			Keywords:    []string{trend, category},
			Category:    category,
		})
	}

	return &IdeasReport{Ideas: ideas, GeneratedAt: s.now()}, nil
}

// TemplateIdeas fills each template of category with one of its topics.
// Unknown categories use the it-tech lists but keep their own label.
func TemplateIdeas(category string, now time.Time) []Idea {
	templates, ok := ideaTemplates[category]
	if !ok {
		templates = ideaTemplates[DefaultCategory]
	}
	topics, ok := ideaTopics[category]
	if !ok {
		topics = ideaTopics[DefaultCategory]
	}
	year := fmt.Sprint(now.Year())

	ideas := make([]Idea, 0, len(templates))
	for i, tmpl := range templates {
		topic := topics[i%len(topics)]
		title := strings.ReplaceAll(tmpl, "{year}", year)
		title = placeholder.ReplaceAllLiteralString(title, topic)
		ideas = append(ideas, Idea{
			Title:       title,
			Description: fmt.Sprintf("Explore the latest insights and best practices related to %s", topic),
			Keywords:    []string{strings.ToLower(topic), category},
			Category:    category,
		})
	}
	return ideas
}
