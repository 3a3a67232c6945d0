package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/trendfarm/internal/media/imaging"
)

// 3D provider names, in preference order
const (
	ProviderHunyuan3D = "hunyuan3d"
	ProviderTripoSR   = "triposr"
)

const (
	spaceHunyuan = "Tencent/Hunyuan3D-1"
	spaceTripoSR = "stabilityai/TripoSR"
)

// ErrImageFetch is returned when a source image URL cannot be downloaded
var ErrImageFetch = errors.New("failed to fetch image")

// ModelResult is a generated GLB model
type ModelResult struct {
	GLB      []byte
	Provider string
}

// ConvertTo3D normalizes image and converts it with the first 3D provider
// that succeeds
func (g *Generator) ConvertTo3D(ctx context.Context, image []byte) (*ModelResult, error) {
	return g.convert(ctx, image, g.modelProviders)
}

// ImageTo3D downloads imageURL and converts it with TripoSR
func (g *Generator) ImageTo3D(ctx context.Context, imageURL string) (*ModelResult, error) {
	image, err := g.fetch(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}

	return g.convert(ctx, image, func(png []byte) []Provider[[]byte] {
		return g.modelProviders(png)[1:]
	})
}

func (g *Generator) convert(ctx context.Context, image []byte, providers func(png []byte) []Provider[[]byte]) (*ModelResult, error) {
	png, info, err := imaging.Normalize(image, g.cfg.MaxImageSide)
	if err != nil {
		return nil, err
	}

	g.log.Info().
		Str("format", info.Format).
		Int("width", info.Width).
		Int("height", info.Height).
		Bool("resized", info.Resized).
		Msg("Converting image to 3D")

	glb, provider, err := FirstSuccess(ctx, g.log, providers(png))
	if err != nil {
		return nil, fmt.Errorf("3D conversion failed: %w", err)
	}
	return &ModelResult{GLB: glb, Provider: provider}, nil
}

func (g *Generator) modelProviders(png []byte) []Provider[[]byte] {
	return []Provider[[]byte]{
		{Name: ProviderHunyuan3D, Run: func(ctx context.Context) ([]byte, error) {
			return g.spaceModel(ctx, spaceHunyuan, "/image_to_3d", png, -1, 30, 3, "std")
		}},
		{Name: ProviderTripoSR, Run: func(ctx context.Context) ([]byte, error) {
			return g.spaceModel(ctx, spaceTripoSR, "/run", png, 1, true, 0.5)
		}},
	}
}

// spaceModel uploads png, calls an image-to-3D Space and downloads the
// first .glb file, or the file at index fallback when none is named .glb
func (g *Generator) spaceModel(ctx context.Context, space, api string, png []byte, fallback int, args ...interface{}) ([]byte, error) {
	client := g.space(space)

	file, err := client.Upload(ctx, png, "input.png")
	if err != nil {
		return nil, err
	}

	out, err := client.Predict(ctx, api, append([]interface{}{file}, args...)...)
	if err != nil {
		return nil, err
	}

	urls := client.FileURLs(out)
	glbURL := ""
	for _, u := range urls {
		if strings.HasSuffix(strings.ToLower(u), ".glb") {
			glbURL = u
			break
		}
	}
	if glbURL == "" && fallback >= 0 && fallback < len(urls) {
		glbURL = urls[fallback]
	}
	if glbURL == "" {
		return nil, fmt.Errorf("%s returned no GLB file", space)
	}
	return client.Download(ctx, glbURL)
}
