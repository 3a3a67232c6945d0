package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trendfarm/internal/ai"
	"github.com/trendfarm/internal/avatar"
	"github.com/trendfarm/internal/content"
	"github.com/trendfarm/internal/generation"
	"github.com/trendfarm/internal/research"
	"github.com/trendfarm/internal/storage"
	"github.com/trendfarm/pkg/logger"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Researcher answers the trend and content research endpoints
type Researcher interface {
	Trends(ctx context.Context, keywords []string, timeframe, geo string) (*research.TrendsReport, error)
	Ideas(ctx context.Context, category string) (*research.IdeasReport, error)
	AnalyzePage(ctx context.Context, url string, extractMeta bool) (*research.PageAnalysis, error)
}

// Assistant answers short writing prompts
type Assistant interface {
	Configured() bool
	Assist(ctx context.Context, prompt string, maxTokens int) (*ai.AssistResult, error)
}

// Generator runs the image and 3D provider chains
type Generator interface {
	GenerateImage(ctx context.Context, prompt string, enhance, tPose bool) (*generation.ImageResult, error)
	ConvertTo3D(ctx context.Context, image []byte) (*generation.ModelResult, error)
	ImageTo3D(ctx context.Context, imageURL string) (*generation.ModelResult, error)
	CharacterPipeline(ctx context.Context, prompt string) (*generation.Character, error)
}

// LocalConverter forwards an image to a self-hosted 3D endpoint
type LocalConverter interface {
	Generate(ctx context.Context, image []byte, filename string) ([]byte, error)
}

// AvatarResolver turns a public image URL into a downloaded avatar
type AvatarResolver interface {
	Configured() bool
	FromImageURL(ctx context.Context, imageURL string) (*avatar.Asset, error)
}

// ImageHost publishes an uploaded image under a public URL
type ImageHost interface {
	Configured() bool
	Upload(ctx context.Context, image []byte, filename string) (string, error)
}

// PostScanner summarizes the posts in the content directory
type PostScanner interface {
	Scan() (*content.Summary, error)
}

// Services are the components behind the endpoints. Ledger may be nil.
type Services struct {
	Research  Researcher
	Assistant Assistant
	Generator Generator
	Local     LocalConverter
	Avatars   AvatarResolver
	Images    ImageHost
	Posts     PostScanner
	Ledger    storage.Repository
}

// Handler serves every endpoint
type Handler struct {
	svc Services
	now func() time.Time
	log *logger.Logger
}

// NewHandler creates a new handler
func NewHandler(svc Services, log *logger.Logger) *Handler {
	return &Handler{
		svc: svc,
		now: time.Now,
		log: log.WithComponent("handler"),
	}
}

// RegisterRoutes mounts every endpoint on e
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.handleRoot)
	e.GET("/health", h.handleHealth)

	api := e.Group("/api")
	api.POST("/trends", h.handleTrends)
	api.POST("/generate-ideas", h.handleGenerateIdeas)
	api.POST("/analyze-content", h.handleAnalyzeContent)
	api.POST("/ai-assistant", h.handleAIAssistant)
	api.GET("/stats", h.handleStats)

	api.POST("/generate-image", h.handleGenerateImage)
	api.POST("/convert-to-3d", h.handleConvertTo3D)
	api.POST("/rig-model", h.handleRigModel)
	api.POST("/character-pipeline", h.handleCharacterPipeline)
	api.POST("/image-to-3d", h.handleImageTo3D)
	api.POST("/pipeline/image-to-3d", h.handleImageTo3D)

	e.POST("/generate-3d-from-image", h.handleLocal3D)

	e.POST("/rpm-from-image-url", h.handleRPMFromImageURL)
	e.POST("/rpm-from-upload", h.handleRPMFromUpload)
	e.GET("/rpm-health", h.handleRPMHealth)
}

func (h *Handler) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "TrendFarm API is running",
		"version": Version,
		"docs":    "/docs",
	})
}

func (h *Handler) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "healthy",
		"timestamp": h.now(),
	})
}

type trendsRequest struct {
	Keywords  []string `json:"keywords"`
	Timeframe string   `json:"timeframe"`
	Geo       string   `json:"geo"`
}

func (h *Handler) handleTrends(c echo.Context) error {
	var req trendsRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if len(req.Keywords) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "keywords are required")
	}

	report, err := h.svc.Research.Trends(c.Request().Context(), req.Keywords, req.Timeframe, req.Geo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) handleGenerateIdeas(c echo.Context) error {
	report, err := h.svc.Research.Ideas(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

type analyzeRequest struct {
	URL         string `json:"url"`
	ExtractMeta *bool  `json:"extract_meta"`
}

func (h *Handler) handleAnalyzeContent(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}
	extract := req.ExtractMeta == nil || *req.ExtractMeta

	analysis, err := h.svc.Research.AnalyzePage(c.Request().Context(), req.URL, extract)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analysis)
}

type assistantRequest struct {
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

// handleAIAssistant accepts prompt and max_tokens as query parameters or
// as a JSON body
func (h *Handler) handleAIAssistant(c echo.Context) error {
	if !h.svc.Assistant.Configured() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Anthropic API key not configured")
	}

	var req assistantRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if q := c.QueryParam("prompt"); q != "" {
		req.Prompt = q
	}
	if q := c.QueryParam("max_tokens"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "max_tokens must be an integer")
		}
		req.MaxTokens = n
	}
	if req.Prompt == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}

	res, err := h.svc.Assistant.Assist(c.Request().Context(), req.Prompt, req.MaxTokens)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"response":    res.Response,
		"tokens_used": res.TokensUsed,
	})
}

func (h *Handler) handleStats(c echo.Context) error {
	summary, err := h.svc.Posts.Scan()
	if err != nil {
		return err
	}

	resp := echo.Map{
		"total_posts":     summary.TotalPosts,
		"categories":      summary.Categories,
		"affiliate_links": summary.Links,
		"last_updated":    h.now(),
	}

	if h.svc.Ledger != nil {
		stats, err := h.svc.Ledger.Stats(c.Request().Context())
		if err != nil {
			h.log.Warn().Err(err).Msg("Ledger stats unavailable")
		} else {
			resp["generated_total"] = stats.GeneratedTotal
			resp["fallback_total"] = stats.FallbackTotal
			resp["last_generated_at"] = stats.LastGeneratedAt
		}
	}

	return c.JSON(http.StatusOK, resp)
}
