package generation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/trendfarm/pkg/ratelimit"
)

// Image provider names, in preference order
const (
	ProviderProdia       = "prodia_sdxl"
	ProviderSDXL         = "stable_diffusion_xl"
	ProviderPollinations = "pollinations"
	ProviderPlayground   = "playground_v2"
)

const (
	spaceProdia     = "prodia/sdxl-stable-diffusion-xl"
	spaceSDXL       = "hysts/SDXL"
	spacePlayground = "playgroundai/playground-v2.5-1024px-aesthetic"

	pollinationsShortURL = "https://pollinations.ai/p/"
)

// ImageResult is a generated character image
type ImageResult struct {
	Image          []byte
	Prompt         string
	OriginalPrompt string
	Provider       string
}

// GenerateImage renders prompt with the first image provider that
// succeeds. enhance applies EnhancePrompt first.
func (g *Generator) GenerateImage(ctx context.Context, prompt string, enhance, tPose bool) (*ImageResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	final := prompt
	if enhance {
		final = EnhancePrompt(prompt, tPose)
	}

	g.log.Info().Str("prompt", final).Msg("Generating image")

	img, provider, err := FirstSuccess(ctx, g.log, g.imageProviders(final))
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	return &ImageResult{
		Image:          img,
		Prompt:         final,
		OriginalPrompt: prompt,
		Provider:       provider,
	}, nil
}

func (g *Generator) imageProviders(prompt string) []Provider[[]byte] {
	w, h := g.cfg.ImageWidth, g.cfg.ImageHeight
	return []Provider[[]byte]{
		{Name: ProviderProdia, Run: func(ctx context.Context) ([]byte, error) {
			return g.spaceImage(ctx, spaceProdia, "/predict", prompt, "blurry, low quality, distorted", 20, 7, w, h, -1)
		}},
		{Name: ProviderSDXL, Run: func(ctx context.Context) ([]byte, error) {
			return g.spaceImage(ctx, spaceSDXL, "/run", prompt, "blurry, low quality", 7.5, 25)
		}},
		{Name: ProviderPollinations, Run: func(ctx context.Context) ([]byte, error) {
			return g.pollinations(ctx, prompt)
		}},
		{Name: ProviderPlayground, Run: func(ctx context.Context) ([]byte, error) {
			return g.spaceImage(ctx, spacePlayground, "/predict", prompt, "ugly, blurry, low quality", true, w, h, 3)
		}},
	}
}

// spaceImage calls a text-to-image Space and downloads its first file
func (g *Generator) spaceImage(ctx context.Context, space, api string, args ...interface{}) ([]byte, error) {
	client := g.space(space)
	out, err := client.Predict(ctx, api, args...)
	if err != nil {
		return nil, err
	}
	urls := client.FileURLs(out)
	if len(urls) == 0 {
		return nil, fmt.Errorf("%s returned no image", space)
	}
	return client.Download(ctx, urls[0])
}

// pollinationsURLs lists the request variants tried in order
func (g *Generator) pollinationsURLs(prompt string) []string {
	base := strings.TrimRight(g.cfg.PollinationsURL, "/")
	if base == "" {
		base = "https://image.pollinations.ai"
	}
	enc := url.PathEscape(prompt)
	size := fmt.Sprintf("width=%d&height=%d", g.cfg.ImageWidth, g.cfg.ImageHeight)

	return []string{
		fmt.Sprintf("%s/prompt/%s?%s&model=flux&nologo=true", base, enc, size),
		fmt.Sprintf("%s/prompt/%s?%s&nologo=true", base, enc, size),
		fmt.Sprintf("%s%s?%s", g.shortURL, enc, size),
	}
}

func (g *Generator) pollinations(ctx context.Context, prompt string) ([]byte, error) {
	for _, u := range g.pollinationsURLs(prompt) {
		if err := g.rateLimiter.Wait(ctx, ratelimit.LimiterPollinations); err != nil {
			return nil, fmt.Errorf("rate limit error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			continue
		}
		resp, err := g.httpClient.Do(req)
		if err != nil {
			g.log.Debug().Err(err).Str("url", u).Msg("Pollinations variant failed")
			continue
		}
		data, err := readBody(resp)
		if err != nil || resp.StatusCode != http.StatusOK || len(data) == 0 {
			continue
		}
		return data, nil
	}
	return nil, fmt.Errorf("pollinations generation failed")
}
