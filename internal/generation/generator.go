package generation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/internal/gradio"
	"github.com/trendfarm/pkg/logger"
	"github.com/trendfarm/pkg/ratelimit"
)

// Generator produces character images and 3D models through ordered
// provider chains
type Generator struct {
	cfg            config.GenerationConfig
	httpClient     *http.Client
	transferClient *http.Client
	rateLimiter    *ratelimit.MultiLimiter
	spaceURL       func(space string) string
	shortURL       string
	log            *logger.Logger
}

// NewGenerator creates a new generator
func NewGenerator(cfg config.GenerationConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Generator {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.TransferTimeout <= 0 {
		cfg.TransferTimeout = 120 * time.Second
	}
	if cfg.ImageWidth <= 0 {
		cfg.ImageWidth = 512
	}
	if cfg.ImageHeight <= 0 {
		cfg.ImageHeight = 512
	}
	host := cfg.SpaceHost
	if host == "" {
		host = "hf.space"
	}

	return &Generator{
		cfg:            cfg,
		httpClient:     &http.Client{Timeout: cfg.RequestTimeout},
		transferClient: &http.Client{Timeout: cfg.TransferTimeout},
		rateLimiter:    limiter,
		spaceURL: func(space string) string {
			return gradio.SpaceURL(space, host)
		},
		shortURL: pollinationsShortURL,
		log:      log.WithComponent("generation"),
	}
}

// space returns a client for a Hugging Face Space
func (g *Generator) space(name string) *gradio.Client {
	return gradio.NewClient(g.spaceURL(name), g.cfg.HFToken, g.cfg.TransferTimeout, g.rateLimiter, g.log)
}

// fetch downloads url with the transfer timeout
func (g *Generator) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.transferClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	return data, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
