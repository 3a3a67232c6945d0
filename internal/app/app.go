package app

import (
	"context"
	"fmt"
	"time"

	"github.com/trendfarm/internal/affiliate"
	"github.com/trendfarm/internal/agent/discovery"
	"github.com/trendfarm/internal/agent/publisher"
	"github.com/trendfarm/internal/ai"
	"github.com/trendfarm/internal/api"
	"github.com/trendfarm/internal/avatar"
	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/internal/content"
	"github.com/trendfarm/internal/generation"
	"github.com/trendfarm/internal/media/imgbb"
	"github.com/trendfarm/internal/research"
	"github.com/trendfarm/internal/source"
	"github.com/trendfarm/internal/source/googletrends"
	"github.com/trendfarm/internal/source/seed"
	"github.com/trendfarm/internal/source/suggest"
	"github.com/trendfarm/internal/storage"
	"github.com/trendfarm/internal/storage/history"
	"github.com/trendfarm/internal/storage/redirects"
	"github.com/trendfarm/internal/storage/sqlite"
	"github.com/trendfarm/internal/tracker"
	"github.com/trendfarm/pkg/logger"
	"github.com/trendfarm/pkg/ratelimit"
)

// App holds every wired component for the binaries
type App struct {
	Config    *config.Config
	Log       *logger.Logger
	Limiter   *ratelimit.MultiLimiter
	Repo      storage.Repository
	AI        *ai.Client
	Discovery *discovery.Agent
	Publisher *publisher.Agent
	Posts     *content.Store
	Redirects *redirects.Store
	Research  *research.Service
	Generator *generation.Generator
	Local     *generation.LocalTripoSR
	Avatars   *avatar.Client
	Images    *imgbb.Client
}

// New wires the components described by cfg. The ledger is opened and
// migrated; the Sheets tracker is attached only when enabled.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	limiter := ratelimit.New(ratelimit.Limits{
		AnthropicPerMinute:   cfg.RateLimit.AnthropicRequestsPerMinute,
		TrendsPerMinute:      cfg.RateLimit.TrendsRequestsPerMinute,
		HuggingFacePerMinute: cfg.RateLimit.HuggingFaceRequestsPerMinute,
		ImagesPerMinute:      cfg.RateLimit.ImageRequestsPerMinute,
		AvatarPerMinute:      cfg.RateLimit.AvatarRequestsPerMinute,
	})

	repo, err := sqlite.New(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	if err := repo.Migrate(); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	aiClient := ai.NewClient(cfg.Anthropic, limiter, log)

	trending := googletrends.New(cfg.Trends, limiter, log)
	related := suggest.New(cfg.Trends, limiter, log)
	sourceManager := source.NewManager()
	sourceManager.Register(trending)

	historyStore := history.NewStore(cfg.Paths.HistoryFile, cfg.Trends.HistoryLimit)
	discoveryAgent := discovery.NewAgent(
		sourceManager,
		related,
		seed.New(cfg.Trends.SeedTopics, log),
		historyStore,
		cfg.Trends,
		log,
	)

	posts := content.NewStore(cfg.Paths.ContentDir)
	redirectStore := redirects.NewStore(cfg.Paths.RedirectsFile, cfg.Paths.RulesFile)
	publisherAgent := publisher.NewAgent(
		aiClient,
		affiliate.NewLinker(cfg.Affiliate),
		posts,
		redirectStore,
		log,
	).WithRepository(repo)

	sheetsTracker, err := tracker.NewSheetsTracker(cfg.Tracker, log)
	if err != nil {
		log.Warn().Err(err).Msg("Sheets tracker unavailable")
	} else if sheetsTracker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), trackerInitTimeout)
		attachTracker(ctx, publisherAgent, sheetsTracker, log)
		cancel()
	}

	return &App{
		Config:    cfg,
		Log:       log,
		Limiter:   limiter,
		Repo:      repo,
		AI:        aiClient,
		Discovery: discoveryAgent,
		Publisher: publisherAgent,
		Posts:     posts,
		Redirects: redirectStore,
		Research:  research.NewService(trending, related, cfg.Trends.CacheTTL, limiter, log),
		Generator: generation.NewGenerator(cfg.Generation, limiter, log),
		Local:     generation.NewLocalTripoSR(cfg.Generation),
		Avatars:   avatar.NewClient(cfg.Avatar, limiter, log),
		Images:    imgbb.NewClient(cfg.Avatar, limiter, log),
	}, nil
}

const trackerInitTimeout = 30 * time.Second

// sheetTracker is a post tracker that can create its destination sheet
type sheetTracker interface {
	publisher.Tracker
	InitializeSheet(ctx context.Context) error
}

// attachTracker creates the tracker's sheet and header row, then reports
// every published post to it. A failed bootstrap is logged and the tracker
// is still attached.
func attachTracker(ctx context.Context, pub *publisher.Agent, t sheetTracker, log *logger.Logger) {
	if err := t.InitializeSheet(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracker sheet")
	}
	pub.WithTracker(t)
}

// Server builds the HTTP API over the app's components
func (a *App) Server() *api.Server {
	h := api.NewHandler(api.Services{
		Research:  a.Research,
		Assistant: a.AI,
		Generator: a.Generator,
		Local:     a.Local,
		Avatars:   a.Avatars,
		Images:    a.Images,
		Posts:     a.Posts,
		Ledger:    a.Repo,
	}, a.Log)
	return api.NewServer(a.Config.Server, h, a.Log)
}

// Close releases the ledger
func (a *App) Close() error {
	return a.Repo.Close()
}
