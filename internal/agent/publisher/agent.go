package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/trendfarm/internal/affiliate"
	"github.com/trendfarm/internal/content"
	"github.com/trendfarm/internal/models"
	"github.com/trendfarm/internal/storage"
	"github.com/trendfarm/internal/storage/redirects"
	"github.com/trendfarm/pkg/logger"
)

// Drafter produces an article draft for a topic
type Drafter interface {
	DraftPost(ctx context.Context, topic, model string) (*models.Draft, error)
}

// Tracker records generated posts somewhere outside the repo
type Tracker interface {
	TrackGenerated(ctx context.Context, post *models.PostRecord) error
}

// Agent turns a topic into a Markdown post with affiliate links
type Agent struct {
	drafter    Drafter
	linker     *affiliate.Linker
	posts      *content.Store
	redirects  *redirects.Store
	repository storage.Repository
	tracker    Tracker
	now        func() time.Time
	log        *logger.Logger
}

// NewAgent creates a new publisher agent
func NewAgent(
	drafter Drafter,
	linker *affiliate.Linker,
	posts *content.Store,
	redirectStore *redirects.Store,
	log *logger.Logger,
) *Agent {
	return &Agent{
		drafter:   drafter,
		linker:    linker,
		posts:     posts,
		redirects: redirectStore,
		now:       time.Now,
		log:       log.WithComponent("publisher"),
	}
}

// WithRepository records every published post in the ledger
func (a *Agent) WithRepository(repo storage.Repository) *Agent {
	a.repository = repo
	return a
}

// WithPosts writes posts to store instead of the configured content
// directory
func (a *Agent) WithPosts(store *content.Store) *Agent {
	a.posts = store
	return a
}

// WithTracker reports every published post to t
func (a *Agent) WithTracker(t Tracker) *Agent {
	a.tracker = t
	return a
}

// Generate drafts topic and renders the finished document. Nothing is
// written to disk.
func (a *Agent) Generate(ctx context.Context, topic, model string) (*models.GeneratedPost, error) {
	a.log.Info().Str("topic", topic).Str("model", model).Msg("Generating post")

	draft, err := a.drafter.DraftPost(ctx, topic, model)
	if err != nil {
		return nil, err
	}

	draft.Content = a.linker.Inject(draft.Content, topic)
	links, redirectMap := a.linker.BuildLinks(topic, draft.Products)

	slug := content.Slugify(draft.Title)
	if slug == "" {
		slug = content.Slugify(topic)
	}

	return &models.GeneratedPost{
		Topic:     topic,
		Slug:      slug,
		Document:  content.RenderDocument(draft, links, a.now()),
		Draft:     draft,
		Links:     links,
		Redirects: redirectMap,
		Model:     model,
	}, nil
}

// Save writes the post file, merges its redirects and records it in the
// ledger and tracker. Ledger and tracker failures are logged, not returned.
func (a *Agent) Save(ctx context.Context, post *models.GeneratedPost) error {
	path, err := a.posts.Save(post.Slug, post.Document)
	if err != nil {
		return err
	}
	post.Path = path

	if len(post.Redirects) > 0 {
		if _, err := a.redirects.Save(post.Redirects); err != nil {
			return fmt.Errorf("failed to save redirects: %w", err)
		}
	}

	log := a.log.WithSlug(post.Slug)
	log.Info().
		Str("path", path).
		Int("links", len(post.Links)).
		Bool("fallback", post.Draft.Fallback).
		Msg("Post saved")

	record := &models.PostRecord{
		Slug:      post.Slug,
		Title:     post.Draft.Title,
		Topic:     post.Topic,
		Path:      path,
		Model:     post.Model,
		Fallback:  post.Draft.Fallback,
		Tags:      models.StringSlice(post.Draft.Tags),
		LinkCount: len(post.Links),
	}

	if a.repository != nil {
		if err := a.repository.CreatePost(ctx, record); err != nil {
			log.Warn().Err(err).Msg("Failed to record post in ledger")
		}
	}

	if a.tracker != nil {
		if err := a.tracker.TrackGenerated(ctx, record); err != nil {
			log.Warn().Err(err).Msg("Failed to track post")
		}
	}

	return nil
}

// Publish generates and saves a post for topic
func (a *Agent) Publish(ctx context.Context, topic, model string) (*models.GeneratedPost, error) {
	post, err := a.Generate(ctx, topic, model)
	if err != nil {
		return nil, err
	}
	if err := a.Save(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}
